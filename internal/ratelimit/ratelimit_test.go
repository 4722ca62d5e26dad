package ratelimit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutumnsGrove/gw/internal/exec"
)

type staticFetcher struct {
	snap Snapshot
	err  error
}

func (f staticFetcher) Fetch(context.Context) (Snapshot, error) { return f.snap, f.err }

// blockingFetcher never answers until its context is cancelled.
type blockingFetcher struct{ cancelled chan struct{} }

func (f blockingFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	<-ctx.Done()
	close(f.cancelled)
	return Snapshot{}, ctx.Err()
}

func TestCheckWarnsBelowThreshold(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMonitor(staticFetcher{snap: Snapshot{Remaining: 42, Limit: 5000, Reset: now.Add(30 * time.Minute)}}, 100, time.Second)
	m.loc = time.UTC

	got := m.Check(context.Background())
	assert.Equal(t, "Rate limit warning: 42/5000 requests remaining (resets 12:30)", got)
}

func TestCheckQuietAtOrAboveThreshold(t *testing.T) {
	for _, remaining := range []int{100, 4999} {
		m := NewMonitor(staticFetcher{snap: Snapshot{Remaining: remaining, Limit: 5000}}, 100, time.Second)
		assert.Empty(t, m.Check(context.Background()), "remaining=%d", remaining)
	}
}

func TestCheckSwallowsErrors(t *testing.T) {
	m := NewMonitor(staticFetcher{err: errors.New("gh: not logged in")}, 100, time.Second)
	assert.Empty(t, m.Check(context.Background()))
}

func TestCheckTimesOut(t *testing.T) {
	f := blockingFetcher{cancelled: make(chan struct{})}
	m := NewMonitor(f, 100, 50*time.Millisecond)

	start := time.Now()
	assert.Empty(t, m.Check(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-f.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned fetch was not cancelled")
	}
}

func TestNilMonitor(t *testing.T) {
	var m *Monitor
	assert.Empty(t, m.Check(context.Background()))
	assert.Empty(t, NewMonitor(nil, 0, 0).Check(context.Background()))
}

func TestNewMonitorDefaults(t *testing.T) {
	m := NewMonitor(staticFetcher{}, 0, 0)
	assert.Equal(t, DefaultThreshold, m.threshold)
	assert.Equal(t, DefaultTimeout, m.timeout)
}

const rateLimitBody = `{
  "resources": {
    "core": {"limit": 5000, "used": 4990, "remaining": 10, "reset": 1767268800},
    "search": {"limit": 30, "remaining": 30, "reset": 1767268800}
  },
  "rate": {"limit": 5000, "remaining": 10, "reset": 1767268800}
}`

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseSnapshot(rateLimitBody)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Remaining)
	assert.Equal(t, 5000, snap.Limit)
	assert.Equal(t, int64(1767268800), snap.Reset.Unix())

	_, err = ParseSnapshot("not json")
	assert.Error(t, err)
	_, err = ParseSnapshot(`{"rate": {}}`)
	assert.Error(t, err)
}

type fakeRunner struct {
	res  *exec.Result
	err  error
	seen []exec.Cmd
}

func (f *fakeRunner) Run(_ context.Context, c exec.Cmd) (*exec.Result, error) {
	f.seen = append(f.seen, c)
	return f.res, f.err
}

func TestGHFetcher(t *testing.T) {
	r := &fakeRunner{res: &exec.Result{Stdout: rateLimitBody}}
	snap, err := GHFetcher{Runner: r}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Remaining)
	require.Len(t, r.seen, 1)
	assert.Equal(t, "gh api rate_limit", r.seen[0].String())

	r = &fakeRunner{res: &exec.Result{ExitCode: 1, Stderr: "HTTP 401"}}
	_, err = GHFetcher{Runner: r}.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exited 1"))
}
