package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWrap = 80

// Markdown renders block messages and help text for the terminal.
type Markdown struct {
	term *glamour.TermRenderer
}

// NewMarkdown creates a renderer. With tty set the style follows the
// terminal background and wraps at its width; otherwise the plain
// no-colour style is used.
func NewMarkdown(tty bool) (*Markdown, error) {
	width := defaultWrap
	opts := []glamour.TermRendererOption{}
	if tty {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w - 4
		}
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	opts = append(opts, glamour.WithWordWrap(width))

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Markdown{term: r}, nil
}

// Render renders md. Rendering failures fall back to the source text.
func (m *Markdown) Render(md string) string {
	if m == nil || m.term == nil {
		return md
	}
	out, err := m.term.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// Markdown prints md rendered for Out. In JSON mode nothing is printed.
func (p *Printer) Markdown(md string) {
	if p.JSON {
		return
	}
	r, err := NewMarkdown(isTerminal(p.Out))
	if err != nil {
		fmt.Fprintln(p.Out, md)
		return
	}
	fmt.Fprint(p.Out, r.Render(md))
}
