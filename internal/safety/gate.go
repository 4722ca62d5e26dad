package safety

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// WriteFlag is the command-line flag that supplies the write-confirmation marker.
const WriteFlag = "--write"

// ErrAborted is returned when a human declines a destructive operation.
// It is not a failure: callers report it and exit successfully.
var ErrAborted = errors.New("aborted")

// Error is returned when an operation is attempted without the
// confirmation its tier requires. It is recoverable: the caller adds the
// named flag and resubmits.
type Error struct {
	Operation  string
	Tier       Tier
	Message    string
	Suggestion string
}

func (e *Error) Error() string {
	if e.Suggestion == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Suggestion
}

// Gate checks operations against their tier before anything is executed.
type Gate struct {
	tiers       Tiers
	interactive func() bool
	confirm     Confirmer
}

// NewGate creates a tier gate. interactive reports whether a human is
// attached; it is consulted only for destructive operations that already
// carry the write marker. confirm may be nil when interactive never
// reports true.
func NewGate(tiers Tiers, interactive func() bool, confirm Confirmer) *Gate {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	if interactive == nil {
		interactive = func() bool { return false }
	}
	return &Gate{tiers: tiers, interactive: interactive, confirm: confirm}
}

// Tier returns the tier of op.
func (g *Gate) Tier(op string) Tier {
	return g.tiers.Lookup(op)
}

// Check returns nil when op may proceed. write is the caller's
// write-confirmation marker. In unattended sessions the marker is the
// final answer and Check never waits for input.
func (g *Gate) Check(op string, write bool) error {
	tier := g.tiers.Lookup(op)

	switch tier {
	case ReadOnly:
		return nil
	case GuardedWrite, Destructive:
		if !write {
			slog.Debug("safety check failed", "operation", op, "tier", tier.String())
			return &Error{
				Operation:  op,
				Tier:       tier,
				Message:    fmt.Sprintf("%s is a %s operation and requires %s", displayOp(op), tier, WriteFlag),
				Suggestion: fmt.Sprintf("Add %s to confirm this operation.", WriteFlag),
			}
		}
	}

	if tier != Destructive || !g.interactive() {
		return nil
	}
	if g.confirm == nil {
		return fmt.Errorf("confirming %s: no confirmation prompt available", displayOp(op))
	}

	ok, err := g.confirm.Confirm(fmt.Sprintf("Proceed with destructive operation %s?", displayOp(op)))
	if err != nil {
		return fmt.Errorf("confirming %s: %w", displayOp(op), err)
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func displayOp(op string) string {
	return strings.ReplaceAll(op, "_", " ")
}
