package adapter

import (
	"regexp"
	"strings"
	"time"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// MessageAdapter converts gateway events into domain messages and extracts
// command invocations from their text.
type MessageAdapter struct {
	defaultPrefix string
}

// NewMessageAdapter creates a new MessageAdapter. prefix is the fallback for
// conversations without a group-specific one.
func NewMessageAdapter(prefix string) *MessageAdapter {
	return &MessageAdapter{defaultPrefix: prefix}
}

// Invocation is a command token plus its arguments, stripped of the prefix.
type Invocation struct {
	Command string
	Args    []string
	RawText string
}

// ToDomain normalizes a gateway event into a domain message. Media captions
// double as the message text so captioned media can still invoke commands.
func (ma *MessageAdapter) ToDomain(event *evolution.MessageEvent) *domain.Message {
	if event == nil {
		return nil
	}

	text := event.Text
	if text == "" {
		text = event.Caption
	}

	msg := &domain.Message{
		ID:         event.Key.ID,
		ChatID:     event.Key.RemoteJID,
		AuthorID:   event.Key.Participant,
		AuthorName: event.PushName,
		IsGroup:    strings.HasSuffix(event.Key.RemoteJID, "@g.us"),
		Text:       text,
		Type:       event.MessageType,
		HasMedia:   event.MediaURL != "",
		MediaURL:   event.MediaURL,
		Mimetype:   event.Mimetype,
		Timestamp:  time.Unix(event.MessageTimestamp, 0),
	}

	// Private chats carry no participant; the sender is the conversation.
	if msg.AuthorID == "" {
		msg.AuthorID = event.Key.RemoteJID
	}

	if event.Quoted != nil {
		msg.Quoted = &domain.QuotedMessage{
			ID:       event.Quoted.StanzaID,
			AuthorID: event.Quoted.Participant,
			Text:     event.Quoted.Text,
			HasMedia: event.Quoted.HasMedia,
			MediaURL: event.Quoted.MediaURL,
			Mimetype: event.Quoted.Mimetype,
		}
	}

	return msg
}

// ParseInvocation extracts the command token and arguments from a message.
// A group with its own prefix overrides the default. Returns nil when the
// message is not an invocation.
func (ma *MessageAdapter) ParseInvocation(msg *domain.Message, group *domain.Group) *Invocation {
	if msg == nil || msg.Text == "" {
		return nil
	}

	prefix := ma.defaultPrefix
	if group != nil && group.Prefix != "" {
		prefix = group.Prefix
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, prefix) {
		return nil
	}

	body := sanitize(text[len(prefix):])
	parts := strings.Fields(body)
	if len(parts) == 0 {
		return nil
	}

	return &Invocation{
		Command: strings.ToLower(parts[0]),
		Args:    parts[1:],
		RawText: text,
	}
}

func sanitize(input string) string {
	return strings.TrimSpace(controlCharsPattern.ReplaceAllString(input, " "))
}
