package command

import (
	"context"
	"testing"
	"time"

	"github.com/moothz/ravena-go/internal/domain"
)

func cooldownCommand(seconds int) *domain.Command {
	return &domain.Command{
		Name:            "probe",
		CooldownSeconds: seconds,
		Handler: func(_ context.Context, _ *domain.CommandContext) (domain.Result, error) {
			return domain.NoReply(), nil
		},
	}
}

func TestCheckCooldownDisabled(t *testing.T) {
	cmd := cooldownCommand(0)
	now := time.Now()

	for i := 0; i < 5; i++ {
		if status := CheckCooldown(cmd, "user", now); status.OnCooldown {
			t.Fatalf("disabled cooldown rejected call %d", i)
		}
	}
	if !cmd.LastUsedBy("user").IsZero() {
		t.Error("disabled cooldown must not write records")
	}
}

func TestCheckCooldownWindow(t *testing.T) {
	cmd := cooldownCommand(30)
	base := time.Now()

	if status := CheckCooldown(cmd, "user", base); status.OnCooldown {
		t.Fatal("first call must pass")
	}

	status := CheckCooldown(cmd, "user", base.Add(12*time.Second))
	if !status.OnCooldown {
		t.Fatal("call inside the window must be rejected")
	}
	if status.RemainingSeconds != 18 {
		t.Errorf("expected 18 seconds remaining, got %d", status.RemainingSeconds)
	}

	if status := CheckCooldown(cmd, "user", base.Add(30*time.Second)); status.OnCooldown {
		t.Error("call at the window boundary must pass")
	}
}

func TestCheckCooldownRemainingRoundsUp(t *testing.T) {
	cmd := cooldownCommand(10)
	base := time.Now()

	CheckCooldown(cmd, "user", base)

	status := CheckCooldown(cmd, "user", base.Add(9500*time.Millisecond))
	if !status.OnCooldown || status.RemainingSeconds != 1 {
		t.Errorf("expected remaining to round up to 1, got %+v", status)
	}
}

func TestCheckCooldownPerUserIsolation(t *testing.T) {
	cmd := cooldownCommand(60)
	now := time.Now()

	CheckCooldown(cmd, "alice", now)

	if status := CheckCooldown(cmd, "bob", now); status.OnCooldown {
		t.Error("one user's window must not block another")
	}
	if status := CheckCooldown(cmd, "alice", now.Add(time.Second)); !status.OnCooldown {
		t.Error("alice should still be inside her window")
	}
}

func TestCheckCooldownPerCommandIsolation(t *testing.T) {
	first := cooldownCommand(60)
	second := cooldownCommand(60)
	now := time.Now()

	CheckCooldown(first, "user", now)

	if status := CheckCooldown(second, "user", now); status.OnCooldown {
		t.Error("windows are per command, not global per user")
	}
}
