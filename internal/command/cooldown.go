package command

import (
	"math"
	"time"

	"github.com/moothz/ravena-go/internal/domain"
)

// CooldownStatus is the result of one pass through the cooldown gate.
type CooldownStatus struct {
	OnCooldown       bool
	RemainingSeconds int
}

// CheckCooldown decides whether enough time has elapsed since the user's last
// successful pass through the gate for this command.
//
// A command with CooldownSeconds <= 0 has cooldowns disabled outright: no
// record is consulted and none is written. On a passing check the timestamp
// is recorded immediately, before the handler runs, so a handler that later
// fails still consumes the user's window.
func CheckCooldown(cmd *domain.Command, userID string, now time.Time) CooldownStatus {
	if cmd.CooldownSeconds <= 0 {
		return CooldownStatus{}
	}

	window := time.Duration(cmd.CooldownSeconds) * time.Second
	last := cmd.LastUsedBy(userID)

	if !last.IsZero() {
		elapsed := now.Sub(last)
		if elapsed < window {
			remaining := int(math.Ceil((window - elapsed).Seconds()))
			return CooldownStatus{
				OnCooldown:       true,
				RemainingSeconds: remaining,
			}
		}
	}

	cmd.MarkUsedBy(userID, now)
	return CooldownStatus{}
}
