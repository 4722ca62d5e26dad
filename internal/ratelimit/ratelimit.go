// Package ratelimit warns when the GitHub API quota is running low.
//
// The check is advisory. It never blocks an operation and never fails
// one: a slow or failing lookup is treated as "no warning".
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AutumnsGrove/gw/internal/exec"
)

const (
	DefaultThreshold = 100
	DefaultTimeout   = 3 * time.Second
)

// Snapshot is the core API quota at one point in time.
type Snapshot struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	Reset     time.Time `json:"reset"`
}

// Fetcher retrieves the current quota.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Monitor decides whether a mutation should carry a low-quota warning.
type Monitor struct {
	fetcher   Fetcher
	threshold int
	timeout   time.Duration
	loc       *time.Location
}

// NewMonitor creates a monitor. Non-positive threshold or timeout fall
// back to the defaults.
func NewMonitor(f Fetcher, threshold int, timeout time.Duration) *Monitor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{fetcher: f, threshold: threshold, timeout: timeout, loc: time.Local}
}

type fetchResult struct {
	snap Snapshot
	err  error
}

// Check returns a warning when the remaining quota is below the threshold
// and "" otherwise. It returns within the monitor's timeout regardless of
// how long the fetch takes; an abandoned fetch is cancelled.
func (m *Monitor) Check(ctx context.Context) string {
	if m == nil || m.fetcher == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ch := make(chan fetchResult, 1)
	go func() {
		snap, err := m.fetcher.Fetch(ctx)
		ch <- fetchResult{snap: snap, err: err}
	}()

	select {
	case <-ctx.Done():
		slog.Debug("rate limit check timed out", "timeout", m.timeout)
		return ""
	case res := <-ch:
		if res.err != nil {
			slog.Debug("rate limit check failed", "error", res.err)
			return ""
		}
		return m.warning(res.snap)
	}
}

func (m *Monitor) warning(s Snapshot) string {
	if s.Limit <= 0 || s.Remaining >= m.threshold {
		return ""
	}
	msg := fmt.Sprintf("Rate limit warning: %d/%d requests remaining", s.Remaining, s.Limit)
	if !s.Reset.IsZero() {
		msg += fmt.Sprintf(" (resets %s)", s.Reset.In(m.loc).Format("15:04"))
	}
	return msg
}

// GHFetcher reads the quota with `gh api rate_limit`.
type GHFetcher struct {
	Runner exec.Runner
}

// Fetch implements Fetcher.
func (f GHFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	res, err := f.Runner.Run(ctx, exec.Cmd{Name: "gh", Args: []string{"api", "rate_limit"}})
	if err != nil {
		return Snapshot{}, err
	}
	if !res.OK() {
		return Snapshot{}, fmt.Errorf("gh api rate_limit exited %d", res.ExitCode)
	}
	return ParseSnapshot(res.Stdout)
}

// ParseSnapshot extracts the core quota from a rate_limit response body.
func ParseSnapshot(body string) (Snapshot, error) {
	if !gjson.Valid(body) {
		return Snapshot{}, fmt.Errorf("rate limit response is not valid JSON")
	}
	core := gjson.Get(body, "resources.core")
	if !core.Exists() {
		return Snapshot{}, fmt.Errorf("rate limit response has no resources.core")
	}

	snap := Snapshot{
		Remaining: int(core.Get("remaining").Int()),
		Limit:     int(core.Get("limit").Int()),
	}
	if reset := core.Get("reset").Int(); reset > 0 {
		snap.Reset = time.Unix(reset, 0)
	}
	return snap, nil
}
