// Package output renders gw results either as one JSON record per result
// or as styled text for humans.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Printer writes results to Out and diagnostics to Err.
type Printer struct {
	JSON bool
	Out  io.Writer
	Err  io.Writer
}

// New returns a printer on stdout and stderr.
func New(jsonMode bool) *Printer {
	return &Printer{JSON: jsonMode, Out: os.Stdout, Err: os.Stderr}
}

// Record writes v as a single JSON line in JSON mode and human otherwise.
// human may be nil when there is nothing to say outside JSON mode.
func (p *Printer) Record(v interface{}, human func(w io.Writer) error) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(v)
	}
	if human == nil {
		return nil
	}
	return human(p.Out)
}

// Text writes raw tool output unchanged. It is suppressed in JSON mode,
// where the record carries the output instead.
func (p *Printer) Text(s string) {
	if p.JSON || s == "" {
		return
	}
	fmt.Fprint(p.Out, s)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...interface{}) {
	if p.JSON {
		return
	}
	fmt.Fprintln(p.Out, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warn prints a warning to Err. Warnings are shown in both modes so JSON
// on stdout stays parseable.
func (p *Printer) Warn(format string, args ...interface{}) {
	fmt.Fprintln(p.Err, warnStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

// Error prints an error to Err.
func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintln(p.Err, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

// Header prints a section heading.
func (p *Printer) Header(s string) {
	if p.JSON {
		return
	}
	fmt.Fprintln(p.Out, headerStyle.Render(s))
}

// Dim renders s in the muted style.
func Dim(s string) string {
	return dimStyle.Render(s)
}

// Status renders a check status word with its colour.
func Status(status string) string {
	switch status {
	case "pass", "ok", "allow":
		return successStyle.Render(status)
	case "warn", "block-redirect":
		return warnStyle.Render(status)
	default:
		return errorStyle.Render(status)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
