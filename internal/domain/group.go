package domain

import "context"

// Group holds the per-conversation configuration supplied by the group store.
// The dispatcher treats it as read-only.
type Group struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Prefix           string   `json:"prefix"`
	Admins           []string `json:"admins"`
	AdditionalAdmins []string `json:"additionalAdmins"`
}

// AdminSet returns the resolved admin ids for the group: the admins reported
// by the transport plus any extra ids configured for the group.
func (g *Group) AdminSet() map[string]struct{} {
	if g == nil {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(g.Admins)+len(g.AdditionalAdmins))
	for _, id := range g.Admins {
		set[id] = struct{}{}
	}
	for _, id := range g.AdditionalAdmins {
		set[id] = struct{}{}
	}
	return set
}

// GroupProvider resolves group configuration for a conversation id. A nil
// group with a nil error means the conversation has no stored configuration.
type GroupProvider interface {
	Get(ctx context.Context, chatID string) (*Group, error)
}
