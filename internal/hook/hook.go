// Package hook reads agent tool-invocation events and writes permission
// decisions in the PreToolUse hook format.
//
// A refusal is communicated only through the structured document on
// stdout; the process always exits successfully so that the calling agent
// parses the message instead of treating the hook as crashed.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AutumnsGrove/gw/internal/policy"
	"github.com/mitchellh/mapstructure"
)

// EventName is the hook event this package handles.
const EventName = "PreToolUse"

// shellTool is the tool whose invocations carry a command line.
const shellTool = "Bash"

// Event is a pending tool invocation.
type Event struct {
	SessionID     string                 `json:"session_id"`
	HookEventName string                 `json:"hook_event_name"`
	ToolName      string                 `json:"tool_name"`
	ToolInput     map[string]interface{} `json:"tool_input"`
	Cwd           string                 `json:"cwd"`
}

// BashInput is the tool_input payload of a shell invocation.
type BashInput struct {
	Command     string `mapstructure:"command"`
	Description string `mapstructure:"description"`
	Timeout     int    `mapstructure:"timeout"`
}

// Output is the document written when a command is refused.
type Output struct {
	HookSpecificOutput SpecificOutput `json:"hookSpecificOutput"`
}

// SpecificOutput carries the permission decision.
type SpecificOutput struct {
	HookEventName      string `json:"hookEventName"`
	PermissionDecision string `json:"permissionDecision"`
	Message            string `json:"message"`
}

// Evaluator decides a command line.
type Evaluator interface {
	Evaluate(line string) policy.Decision
}

// ReadEvent decodes one event from r.
func ReadEvent(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decoding hook event: %w", err)
	}
	return &ev, nil
}

// Command returns the shell command line of a Bash invocation.
func (e *Event) Command() (string, error) {
	var in BashInput
	if err := mapstructure.WeakDecode(e.ToolInput, &in); err != nil {
		return "", fmt.Errorf("decoding tool_input: %w", err)
	}
	return in.Command, nil
}

// Handle reads one event from r, evaluates it and writes a block document
// to w when the command is refused. Unreadable events, other tools and
// empty commands are allowed. The only error returned is a failure to
// write the refusal.
func Handle(r io.Reader, w io.Writer, ev Evaluator) error {
	event, err := ReadEvent(r)
	if err != nil {
		slog.Warn("ignoring unreadable hook event", "error", err)
		return nil
	}
	if event.ToolName != shellTool {
		return nil
	}

	line, err := event.Command()
	if err != nil {
		slog.Warn("ignoring malformed tool input", "error", err)
		return nil
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}

	d := ev.Evaluate(line)
	if !d.Verdict.Blocks() {
		return nil
	}

	slog.Info("blocked agent command",
		"session", event.SessionID,
		"command", d.Command,
		"verdict", d.Verdict.String(),
		"rule", d.Rule,
	)
	return WriteBlock(w, d)
}

// WriteBlock writes the refusal document for d.
func WriteBlock(w io.Writer, d policy.Decision) error {
	out := Output{
		HookSpecificOutput: SpecificOutput{
			HookEventName:      EventName,
			PermissionDecision: "block",
			Message:            d.Message,
		},
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("writing hook output: %w", err)
	}
	return nil
}
