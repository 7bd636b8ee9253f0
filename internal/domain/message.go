package domain

import "time"

// QuotedMessage carries the subset of a replied-to message that commands need.
type QuotedMessage struct {
	ID       string
	AuthorID string
	Text     string
	HasMedia bool
	MediaURL string
	Mimetype string
}

// Message is one inbound chat message, already normalized by the adapter.
type Message struct {
	ID         string
	ChatID     string
	AuthorID   string
	AuthorName string
	IsGroup    bool
	Text       string
	Type       string
	HasMedia   bool
	MediaURL   string
	Mimetype   string
	Quoted     *QuotedMessage
	Timestamp  time.Time
}

// HasAnyMedia reports whether the message itself or its quoted message carries
// a media attachment.
func (m *Message) HasAnyMedia() bool {
	if m == nil {
		return false
	}
	if m.HasMedia {
		return true
	}
	return m.Quoted != nil && m.Quoted.HasMedia
}

func (m *Message) IsReply() bool {
	return m != nil && m.Quoted != nil
}
