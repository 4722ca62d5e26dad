package safety

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer asks a human a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer reads a yes/no answer from In after writing the prompt
// to Out. Anything other than y or yes declines, as does end of input.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer.
func (p PromptConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(p.Out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// agentEnvVars mark a session driven by an automated agent.
var agentEnvVars = []string{"GW_AGENT_MODE", "CLAUDECODE"}

// Detector decides whether a human is attached to the session.
type Detector struct {
	// AgentMode forces unattended behaviour regardless of the terminal.
	AgentMode bool
	// Getenv and IsTerminal default to the process environment and
	// golang.org/x/term.
	Getenv     func(string) string
	IsTerminal func(fd int) bool
}

// AgentSession reports whether the session is driven by an agent.
func (d Detector) AgentSession() bool {
	if d.AgentMode {
		return true
	}
	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range agentEnvVars {
		switch strings.ToLower(getenv(name)) {
		case "", "0", "false":
		default:
			return true
		}
	}
	return false
}

// Interactive reports whether a human terminal is attached: stdin and
// stdout are terminals and the session is not an agent session.
func (d Detector) Interactive() bool {
	if d.AgentSession() {
		return false
	}
	isTerm := d.IsTerminal
	if isTerm == nil {
		isTerm = term.IsTerminal
	}
	return isTerm(int(os.Stdin.Fd())) && isTerm(int(os.Stdout.Fd()))
}
