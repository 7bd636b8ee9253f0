package evolution

// MessageKey identifies a message inside a conversation, used for replies and
// reactions.
type MessageKey struct {
	RemoteJID   string `json:"remoteJid"`
	FromMe      bool   `json:"fromMe"`
	ID          string `json:"id"`
	Participant string `json:"participant,omitempty"`
}

// QuotedEvent is the digest of a replied-to message as delivered by the
// gateway event stream.
type QuotedEvent struct {
	StanzaID    string `json:"stanzaId"`
	Participant string `json:"participant,omitempty"`
	Text        string `json:"text,omitempty"`
	HasMedia    bool   `json:"hasMedia"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	Mimetype    string `json:"mimetype,omitempty"`
}

// MessageEvent is one inbound message event from the gateway websocket.
type MessageEvent struct {
	Key              MessageKey   `json:"key"`
	PushName         string       `json:"pushName,omitempty"`
	MessageType      string       `json:"messageType"`
	Text             string       `json:"text,omitempty"`
	Caption          string       `json:"caption,omitempty"`
	MediaURL         string       `json:"mediaUrl,omitempty"`
	Mimetype         string       `json:"mimetype,omitempty"`
	Quoted           *QuotedEvent `json:"quoted,omitempty"`
	MessageTimestamp int64        `json:"messageTimestamp"`
}

type TextRequest struct {
	Number      string   `json:"number"`
	Text        string   `json:"text"`
	Delay       int      `json:"delay,omitempty"`
	LinkPreview bool     `json:"linkPreview"`
	Quoted      *Quoted  `json:"quoted,omitempty"`
	Mentioned   []string `json:"mentioned,omitempty"`
}

type Quoted struct {
	Key MessageKey `json:"key"`
}

type MediaRequest struct {
	Number    string   `json:"number"`
	MediaType string   `json:"mediatype"`
	Mimetype  string   `json:"mimetype,omitempty"`
	Media     string   `json:"media"`
	Caption   string   `json:"caption,omitempty"`
	FileName  string   `json:"fileName,omitempty"`
	ViewOnce  bool     `json:"viewOnce,omitempty"`
	Quoted    *Quoted  `json:"quoted,omitempty"`
	Mentioned []string `json:"mentioned,omitempty"`
}

type AudioRequest struct {
	Number string `json:"number"`
	Audio  string `json:"audio"`
}

type StickerRequest struct {
	Number  string `json:"number"`
	Sticker string `json:"sticker"`
}

type ReactionRequest struct {
	Key      MessageKey `json:"key"`
	Reaction string     `json:"reaction"`
}

type DeleteRequest struct {
	Key MessageKey `json:"key"`
}

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

func (s WebSocketState) String() string {
	return string(s)
}
