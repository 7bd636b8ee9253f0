package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moothz/ravena-go/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the Evolution API gateway over HTTP. One client serves one
// gateway instance.
type Client struct {
	baseURL    string
	apiKey     string
	instance   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, instance string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		instance: instance,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) SendText(ctx context.Context, req *TextRequest) error {
	if err := c.doRequest(ctx, "POST", "/message/sendText", req, nil); err != nil {
		c.logger.Error("Failed to send text",
			zap.Error(err),
			zap.String("chat", req.Number),
		)
		return err
	}
	return nil
}

func (c *Client) SendMedia(ctx context.Context, req *MediaRequest) error {
	if err := c.doRequest(ctx, "POST", "/message/sendMedia", req, nil); err != nil {
		c.logger.Error("Failed to send media",
			zap.Error(err),
			zap.String("chat", req.Number),
			zap.String("mediatype", req.MediaType),
		)
		return err
	}
	return nil
}

func (c *Client) SendAudio(ctx context.Context, req *AudioRequest) error {
	if err := c.doRequest(ctx, "POST", "/message/sendWhatsAppAudio", req, nil); err != nil {
		c.logger.Error("Failed to send audio",
			zap.Error(err),
			zap.String("chat", req.Number),
		)
		return err
	}
	return nil
}

func (c *Client) SendSticker(ctx context.Context, req *StickerRequest) error {
	if err := c.doRequest(ctx, "POST", "/message/sendSticker", req, nil); err != nil {
		c.logger.Error("Failed to send sticker",
			zap.Error(err),
			zap.String("chat", req.Number),
		)
		return err
	}
	return nil
}

// React applies an emoji reaction to an existing message. An empty emoji
// removes the reaction.
func (c *Client) React(ctx context.Context, key MessageKey, emoji string) error {
	req := ReactionRequest{Key: key, Reaction: emoji}
	if err := c.doRequest(ctx, "POST", "/message/sendReaction", req, nil); err != nil {
		c.logger.Warn("Failed to react to message",
			zap.Error(err),
			zap.String("chat", key.RemoteJID),
			zap.String("emoji", emoji),
		)
		return err
	}
	return nil
}

// DeleteMessage removes a message for every participant.
func (c *Client) DeleteMessage(ctx context.Context, key MessageKey) error {
	req := DeleteRequest{Key: key}
	if err := c.doRequest(ctx, "DELETE", "/chat/deleteMessageForEveryone", req, nil); err != nil {
		c.logger.Error("Failed to delete message",
			zap.Error(err),
			zap.String("chat", key.RemoteJID),
			zap.String("id", key.ID),
		)
		return err
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) bool {
	return c.doRequest(ctx, "GET", "/instance/connectionState", nil, nil) == nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, reqBody, respBody any) error {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, endpoint, c.instance)

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return errors.NewTransportError("failed to marshal request", endpoint, 400, err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.NewTransportError("failed to create request", endpoint, 500, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError("request failed", endpoint, 500, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return errors.NewTransportError(
			fmt.Sprintf("Evolution API error: %s: %s", resp.Status, string(bodyBytes)),
			endpoint,
			resp.StatusCode,
			nil,
		)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return errors.NewTransportError("failed to decode response", endpoint, 500, err)
		}
	}

	return nil
}
