package cmd

import (
	"errors"
	"fmt"

	"github.com/AutumnsGrove/gw/internal/wrap"
)

// errReported is returned after a failure has already been shown to the
// user, so main exits non-zero without printing it again.
var errReported = errors.New("reported")

// exitError sets the process exit status without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps an error returned by Execute to a process exit status. A
// wrapped tool's own exit status is passed through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var te *wrap.ToolError
	if errors.As(err, &te) && te.ExitCode > 0 {
		return te.ExitCode
	}
	return 1
}

// Reported reports whether err has already been shown to the user.
func Reported(err error) bool {
	var te *wrap.ToolError
	var ee *exitError
	return errors.Is(err, errReported) || errors.As(err, &te) || errors.As(err, &ee)
}
