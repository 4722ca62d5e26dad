package policy

import (
	"log/slog"

	"github.com/AutumnsGrove/gw/internal/chain"
)

// Gate aggregates per-command verdicts into one decision for a command line.
type Gate struct {
	classifier *Classifier
}

// NewGate creates a gate that classifies with c.
func NewGate(c *Classifier) *Gate {
	return &Gate{classifier: c}
}

// Evaluate splits line into atomic commands and classifies them in order.
// The first blocking verdict is returned for the whole line and later
// commands are not evaluated. Commands already directed at the wrapper are
// skipped without classification. A line with no blocking command, or no
// commands at all, is allowed.
func (g *Gate) Evaluate(line string) Decision {
	wrapper := g.classifier.Wrapper()

	for _, segment := range chain.Split(line) {
		if wrapper != "" && ParseAtomic(segment).Program == wrapper {
			continue
		}
		d := g.classifier.Classify(segment)
		if d.Verdict.Blocks() {
			slog.Debug("command blocked",
				"command", d.Command,
				"verdict", d.Verdict.String(),
				"rule", d.Rule,
			)
			return d
		}
	}
	return Decision{Verdict: Allow}
}
