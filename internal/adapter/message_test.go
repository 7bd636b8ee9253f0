package adapter

import (
	"testing"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
)

func TestToDomainGroupMessage(t *testing.T) {
	ma := NewMessageAdapter("!")
	event := &evolution.MessageEvent{
		Key: evolution.MessageKey{
			RemoteJID:   "5511999999999@g.us",
			ID:          "ABC123",
			Participant: "5511888888888@c.us",
		},
		PushName:         "Maria",
		MessageType:      "conversation",
		Text:             "!ping",
		MessageTimestamp: 1735689600,
	}

	msg := ma.ToDomain(event)
	if msg == nil {
		t.Fatal("expected a message")
	}
	if !msg.IsGroup {
		t.Error("@g.us conversation should be a group")
	}
	if msg.AuthorID != "5511888888888@c.us" {
		t.Errorf("unexpected author %q", msg.AuthorID)
	}
	if msg.Timestamp.Unix() != 1735689600 {
		t.Errorf("unexpected timestamp %v", msg.Timestamp)
	}
}

func TestToDomainPrivateChatAuthorFallback(t *testing.T) {
	ma := NewMessageAdapter("!")
	event := &evolution.MessageEvent{
		Key:  evolution.MessageKey{RemoteJID: "5511888888888@c.us", ID: "X"},
		Text: "oi",
	}

	msg := ma.ToDomain(event)
	if msg.IsGroup {
		t.Error("@c.us conversation is not a group")
	}
	if msg.AuthorID != "5511888888888@c.us" {
		t.Errorf("author should fall back to the chat, got %q", msg.AuthorID)
	}
}

func TestToDomainCaptionBecomesText(t *testing.T) {
	ma := NewMessageAdapter("!")
	event := &evolution.MessageEvent{
		Key:         evolution.MessageKey{RemoteJID: "x@g.us", ID: "X", Participant: "y@c.us"},
		MessageType: "imageMessage",
		Caption:     "!sticker",
		MediaURL:    "https://cdn/x.jpg",
		Mimetype:    "image/jpeg",
	}

	msg := ma.ToDomain(event)
	if msg.Text != "!sticker" {
		t.Errorf("caption should become text, got %q", msg.Text)
	}
	if !msg.HasMedia {
		t.Error("media url should mark the message as media")
	}
}

func TestToDomainQuoted(t *testing.T) {
	ma := NewMessageAdapter("!")
	event := &evolution.MessageEvent{
		Key:  evolution.MessageKey{RemoteJID: "x@g.us", ID: "X", Participant: "y@c.us"},
		Text: "!apagar",
		Quoted: &evolution.QuotedEvent{
			StanzaID:    "Q1",
			Participant: "z@c.us",
			HasMedia:    true,
			MediaURL:    "https://cdn/q.mp4",
		},
	}

	msg := ma.ToDomain(event)
	if !msg.IsReply() {
		t.Fatal("expected a reply")
	}
	if msg.Quoted.ID != "Q1" || msg.Quoted.AuthorID != "z@c.us" {
		t.Errorf("quoted fields lost: %+v", msg.Quoted)
	}
	if !msg.HasAnyMedia() {
		t.Error("quoted media should count as media")
	}
}

func TestParseInvocation(t *testing.T) {
	ma := NewMessageAdapter("!")

	inv := ma.ParseInvocation(&domain.Message{Text: "!dl https://example.com/v extra"}, nil)
	if inv == nil {
		t.Fatal("expected an invocation")
	}
	if inv.Command != "dl" {
		t.Errorf("unexpected command %q", inv.Command)
	}
	if len(inv.Args) != 2 || inv.Args[0] != "https://example.com/v" {
		t.Errorf("unexpected args %v", inv.Args)
	}
}

func TestParseInvocationLowercasesCommandOnly(t *testing.T) {
	ma := NewMessageAdapter("!")

	inv := ma.ParseInvocation(&domain.Message{Text: "!CLIMA São Paulo"}, nil)
	if inv == nil || inv.Command != "clima" {
		t.Fatalf("expected lowercased command, got %+v", inv)
	}
	if inv.Args[0] != "São" {
		t.Errorf("args must keep their casing, got %v", inv.Args)
	}
}

func TestParseInvocationNoPrefix(t *testing.T) {
	ma := NewMessageAdapter("!")

	if inv := ma.ParseInvocation(&domain.Message{Text: "bom dia"}, nil); inv != nil {
		t.Errorf("plain text is not an invocation: %+v", inv)
	}
	if inv := ma.ParseInvocation(&domain.Message{Text: "!   "}, nil); inv != nil {
		t.Errorf("bare prefix is not an invocation: %+v", inv)
	}
	if inv := ma.ParseInvocation(&domain.Message{}, nil); inv != nil {
		t.Errorf("empty text is not an invocation: %+v", inv)
	}
}

func TestParseInvocationGroupPrefixOverride(t *testing.T) {
	ma := NewMessageAdapter("!")
	group := &domain.Group{ID: "x@g.us", Prefix: "#"}

	if inv := ma.ParseInvocation(&domain.Message{Text: "!ping"}, group); inv != nil {
		t.Errorf("default prefix must not fire when the group overrides it: %+v", inv)
	}
	inv := ma.ParseInvocation(&domain.Message{Text: "#ping"}, group)
	if inv == nil || inv.Command != "ping" {
		t.Fatalf("group prefix should fire, got %+v", inv)
	}
}

func TestParseInvocationStripsControlChars(t *testing.T) {
	ma := NewMessageAdapter("!")

	inv := ma.ParseInvocation(&domain.Message{Text: "!ai\x00 olá\x1f mundo"}, nil)
	if inv == nil || inv.Command != "ai" {
		t.Fatalf("control characters should not break parsing, got %+v", inv)
	}
	if len(inv.Args) != 2 {
		t.Errorf("unexpected args %v", inv.Args)
	}
}
