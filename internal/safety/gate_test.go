package safety

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type fakeConfirmer struct {
	answer bool
	err    error
	asked  []string
}

func (f *fakeConfirmer) Confirm(prompt string) (bool, error) {
	f.asked = append(f.asked, prompt)
	return f.answer, f.err
}

func always(v bool) func() bool { return func() bool { return v } }

func TestTierString(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{ReadOnly, "read-only"},
		{GuardedWrite, "guarded-write"},
		{Destructive, "destructive"},
		{Tier(9), "tier(9)"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", int(tt.tier), got, tt.want)
		}
	}
}

func TestTiersLookupDefaultsToGuardedWrite(t *testing.T) {
	tiers := DefaultTiers()
	if got := tiers.Lookup("git_status"); got != ReadOnly {
		t.Errorf("git_status = %s, want read-only", got)
	}
	if got := tiers.Lookup("git_push_force"); got != Destructive {
		t.Errorf("git_push_force = %s, want destructive", got)
	}
	if got := tiers.Lookup("never_registered"); got != GuardedWrite {
		t.Errorf("unknown op = %s, want guarded-write", got)
	}
}

func TestCheckReadOnlyAlwaysProceeds(t *testing.T) {
	confirm := &fakeConfirmer{}
	g := NewGate(nil, always(true), confirm)

	for _, write := range []bool{false, true} {
		if err := g.Check("git_status", write); err != nil {
			t.Errorf("Check(git_status, %v) = %v, want nil", write, err)
		}
	}
	if len(confirm.asked) != 0 {
		t.Errorf("read-only op prompted %d times", len(confirm.asked))
	}
}

func TestCheckGuardedWriteRequiresMarker(t *testing.T) {
	g := NewGate(nil, always(false), nil)

	err := g.Check("git_commit", false)
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("Check(git_commit, false) = %v, want *Error", err)
	}
	if se.Operation != "git_commit" || se.Tier != GuardedWrite {
		t.Errorf("error = %+v", se)
	}
	if !strings.Contains(se.Message, "git commit") || !strings.Contains(se.Message, WriteFlag) {
		t.Errorf("message = %q", se.Message)
	}
	if !strings.Contains(se.Suggestion, WriteFlag) {
		t.Errorf("suggestion = %q", se.Suggestion)
	}

	if err := g.Check("git_commit", true); err != nil {
		t.Errorf("Check(git_commit, true) = %v, want nil", err)
	}
}

func TestCheckUnknownOperationNeedsMarker(t *testing.T) {
	g := NewGate(nil, nil, nil)
	var se *Error
	if err := g.Check("something_new", false); !errors.As(err, &se) {
		t.Fatalf("Check(unknown, false) = %v, want *Error", err)
	}
	if se.Tier != GuardedWrite {
		t.Errorf("tier = %s, want guarded-write", se.Tier)
	}
}

func TestCheckDestructiveWithoutMarkerNeverPrompts(t *testing.T) {
	confirm := &fakeConfirmer{answer: true}
	g := NewGate(nil, always(true), confirm)

	var se *Error
	if err := g.Check("git_push_force", false); !errors.As(err, &se) {
		t.Fatalf("Check = %v, want *Error", err)
	}
	if se.Tier != Destructive {
		t.Errorf("tier = %s, want destructive", se.Tier)
	}
	if len(confirm.asked) != 0 {
		t.Error("prompted before the write marker was supplied")
	}
}

func TestCheckDestructiveUnattendedProceedsOnMarker(t *testing.T) {
	confirm := &fakeConfirmer{answer: false}
	g := NewGate(nil, always(false), confirm)

	if err := g.Check("git_reset_hard", true); err != nil {
		t.Fatalf("Check = %v, want nil", err)
	}
	if len(confirm.asked) != 0 {
		t.Error("unattended session was prompted")
	}
}

func TestCheckDestructiveInteractive(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		confirm := &fakeConfirmer{answer: true}
		g := NewGate(nil, always(true), confirm)
		if err := g.Check("gh_pr_merge", true); err != nil {
			t.Fatalf("Check = %v, want nil", err)
		}
		if len(confirm.asked) != 1 || !strings.Contains(confirm.asked[0], "gh pr merge") {
			t.Errorf("prompts = %v", confirm.asked)
		}
	})

	t.Run("declined", func(t *testing.T) {
		g := NewGate(nil, always(true), &fakeConfirmer{answer: false})
		if err := g.Check("gh_pr_merge", true); !errors.Is(err, ErrAborted) {
			t.Fatalf("Check = %v, want ErrAborted", err)
		}
	})

	t.Run("prompt error", func(t *testing.T) {
		boom := errors.New("tty gone")
		g := NewGate(nil, always(true), &fakeConfirmer{err: boom})
		err := g.Check("gh_pr_merge", true)
		if !errors.Is(err, boom) {
			t.Fatalf("Check = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("no confirmer", func(t *testing.T) {
		g := NewGate(nil, always(true), nil)
		if err := g.Check("gh_pr_merge", true); err == nil {
			t.Fatal("Check = nil, want error")
		}
	})
}

func TestCheckCustomTiers(t *testing.T) {
	g := NewGate(Tiers{"custom_read": ReadOnly}, nil, nil)
	if err := g.Check("custom_read", false); err != nil {
		t.Errorf("Check(custom_read) = %v", err)
	}
	if g.Tier("git_status") != GuardedWrite {
		t.Error("custom table should not include defaults")
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := PromptConfirmer{In: strings.NewReader(tt.input), Out: &out}
		got, err := p.Confirm("Continue?")
		if err != nil {
			t.Fatalf("Confirm(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.HasPrefix(out.String(), "Continue? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestDetector(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}
	tty := func(int) bool { return true }
	notty := func(int) bool { return false }

	tests := []struct {
		name        string
		d           Detector
		agent       bool
		interactive bool
	}{
		{"human terminal", Detector{Getenv: env(nil), IsTerminal: tty}, false, true},
		{"no terminal", Detector{Getenv: env(nil), IsTerminal: notty}, false, false},
		{"config agent mode", Detector{AgentMode: true, Getenv: env(nil), IsTerminal: tty}, true, false},
		{"GW_AGENT_MODE", Detector{Getenv: env(map[string]string{"GW_AGENT_MODE": "1"}), IsTerminal: tty}, true, false},
		{"CLAUDECODE", Detector{Getenv: env(map[string]string{"CLAUDECODE": "1"}), IsTerminal: tty}, true, false},
		{"explicit false", Detector{Getenv: env(map[string]string{"GW_AGENT_MODE": "false"}), IsTerminal: tty}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.AgentSession(); got != tt.agent {
				t.Errorf("AgentSession() = %v, want %v", got, tt.agent)
			}
			if got := tt.d.Interactive(); got != tt.interactive {
				t.Errorf("Interactive() = %v, want %v", got, tt.interactive)
			}
		})
	}
}
