package domain

// Media references a file or remote resource attached to an outbound message.
type Media struct {
	Path     string
	URL      string
	Mimetype string
	Filename string
}

// DeliveryOptions are the transport flags recognized by the delivery path.
type DeliveryOptions struct {
	LinkPreview         bool
	SendAudioAsVoice    bool
	SendVideoAsGif      bool
	SendMediaAsSticker  bool
	SendMediaAsDocument bool
	IsViewOnce          bool
	Caption             string
	QuotedMessageID     string
	Mentions            []string
	StickerAuthor       string
	StickerName         string
}

// Reactions holds the emoji feedback applied to the originating message at
// each phase of command execution.
type Reactions struct {
	Trigger string
	Before  string
	After   string
	Error   string
}

// ReturnMessage is the uniform outbound unit produced by command handlers.
// It is consumed exactly once by the delivery path and then discarded.
type ReturnMessage struct {
	ChatID    string
	Text      string
	Media     *Media
	Options   DeliveryOptions
	Reactions *Reactions
	DelayMs   int
	Metadata  map[string]any
}

// Valid reports whether the message carries both a destination and a payload.
// A message with neither is a programming error, not a silent no-op.
func (rm *ReturnMessage) Valid() bool {
	if rm == nil || rm.ChatID == "" {
		return false
	}
	return rm.Text != "" || rm.Media != nil
}

func NewTextMessage(chatID, text string) *ReturnMessage {
	return &ReturnMessage{ChatID: chatID, Text: text}
}

func NewMediaMessage(chatID string, media *Media) *ReturnMessage {
	return &ReturnMessage{ChatID: chatID, Media: media}
}
