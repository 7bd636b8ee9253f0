package domain

import (
	"context"
	"sync"
	"time"
)

// HandlerFunc implements the body of a command. It may return no delivery
// (the handler sent everything itself), a single message, or an ordered
// sequence of messages.
type HandlerFunc func(ctx context.Context, cmdCtx *CommandContext) (Result, error)

// Command declaratively describes one invocable capability: its names, the
// preconditions the dispatcher enforces, cooldown, reaction emojis and the
// handler. Name is immutable after registration.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Category    string

	NeedsMedia        bool
	NeedsQuotedMsg    bool
	NeedsArgs         bool
	MinArgs           int
	AdminOnly         bool
	ExclusiveToGroups []string

	CooldownSeconds int
	Reactions       Reactions
	Hidden          bool

	Handler HandlerFunc

	// Usage stats live for the process lifetime only. Restart resets them,
	// cooldowns included.
	mu              sync.Mutex
	invocationCount int64
	lastUsedAt      time.Time
	userLastUsed    map[string]time.Time
}

func (c *Command) IsValid() bool {
	return c != nil && c.Name != "" && c.Handler != nil
}

// AllowedIn reports whether the command may run in the given conversation.
// Commands without an exclusivity list run everywhere.
func (c *Command) AllowedIn(chatID string) bool {
	if len(c.ExclusiveToGroups) == 0 {
		return true
	}
	for _, id := range c.ExclusiveToGroups {
		if id == chatID {
			return true
		}
	}
	return false
}

// TrackUsage bumps the invocation counter. Called once per dispatch that
// reaches the handler, even when the handler itself later fails.
func (c *Command) TrackUsage(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invocationCount++
	c.lastUsedAt = now
}

func (c *Command) Stats() (count int64, lastUsed time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invocationCount, c.lastUsedAt
}

// LastUsedBy returns the zero time when the user has never passed the
// cooldown gate for this command.
func (c *Command) LastUsedBy(userID string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userLastUsed[userID]
}

func (c *Command) MarkUsedBy(userID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userLastUsed == nil {
		c.userLastUsed = make(map[string]time.Time)
	}
	c.userLastUsed[userID] = now
}

// CommandContext bundles everything a handler needs for one invocation.
type CommandContext struct {
	Message   *Message
	Args      []string
	Group     *Group
	Admins    map[string]struct{}
	Timestamp time.Time
}

func NewCommandContext(msg *Message, args []string, group *Group) *CommandContext {
	return &CommandContext{
		Message:   msg,
		Args:      args,
		Group:     group,
		Admins:    group.AdminSet(),
		Timestamp: time.Now(),
	}
}

// ChatID is the conversation the invocation originated from, and the default
// destination for replies.
func (cc *CommandContext) ChatID() string {
	if cc == nil || cc.Message == nil {
		return ""
	}
	return cc.Message.ChatID
}

func (cc *CommandContext) IsAdmin(userID string) bool {
	if cc == nil {
		return false
	}
	_, ok := cc.Admins[userID]
	return ok
}
