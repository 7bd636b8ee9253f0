package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moothz/ravena-go/internal/adapter"
	"github.com/moothz/ravena-go/internal/command"
	"github.com/moothz/ravena-go/internal/config"
	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
	"github.com/moothz/ravena-go/internal/service/downloads"
)

// Dependencies holds everything the bot needs to run. Built by the app
// container, consumed once by NewBot.
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	Client        *evolution.Client
	WebSocket     *evolution.WebSocket
	Adapter       *adapter.MessageAdapter
	Groups        domain.GroupProvider
	Registry      *command.Registry
	Dispatcher    *command.Dispatcher
	DownloadCache *downloads.Cache
}

// Bot wires the gateway event stream to the command dispatcher and ships the
// resulting envelopes back through the transport.
type Bot struct {
	cfg           *config.Config
	logger        *zap.Logger
	client        *evolution.Client
	ws            *evolution.WebSocket
	adapter       *adapter.MessageAdapter
	groups        domain.GroupProvider
	registry      *command.Registry
	dispatcher    *command.Dispatcher
	downloadCache *downloads.Cache

	unsubscribe func()
	wg          sync.WaitGroup
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("dependencies must not be nil")
	}
	if deps.Config == nil || deps.Logger == nil {
		return nil, fmt.Errorf("config and logger are required")
	}
	if deps.Client == nil || deps.WebSocket == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if deps.Registry == nil || deps.Dispatcher == nil || deps.Adapter == nil {
		return nil, fmt.Errorf("dispatch pipeline is required")
	}

	return &Bot{
		cfg:           deps.Config,
		logger:        deps.Logger,
		client:        deps.Client,
		ws:            deps.WebSocket,
		adapter:       deps.Adapter,
		groups:        deps.Groups,
		registry:      deps.Registry,
		dispatcher:    deps.Dispatcher,
		downloadCache: deps.DownloadCache,
		stopCh:        make(chan struct{}),
	}, nil
}

// Start connects the event stream and blocks until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.unsubscribe = b.ws.OnEvent(func(event *evolution.MessageEvent) {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleEvent(ctx, event)
		}()
	})

	if err := b.ws.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect event stream: %w", err)
	}

	b.logger.Info("Bot online",
		zap.String("instance", b.cfg.Evolution.Instance),
		zap.String("prefix", b.cfg.Bot.Prefix),
		zap.Int("commands", b.registry.Count()),
	)

	if b.downloadCache != nil && b.cfg.Downloads.SweepInterval > 0 {
		b.wg.Add(1)
		go b.sweepLoop(ctx)
	}

	<-ctx.Done()
	return nil
}

// Shutdown disconnects the transport and waits for in-flight handlers.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})

	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	if err := b.ws.Disconnect(); err != nil {
		b.logger.Warn("Failed to disconnect event stream", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Shutdown timed out waiting for handlers")
		return ctx.Err()
	}
	return nil
}

func (b *Bot) handleEvent(ctx context.Context, event *evolution.MessageEvent) {
	if event == nil || event.Key.FromMe {
		return
	}

	msg := b.adapter.ToDomain(event)
	if msg == nil {
		return
	}

	var group *domain.Group
	if msg.IsGroup && b.groups != nil {
		g, err := b.groups.Get(ctx, msg.ChatID)
		if err != nil {
			b.logger.Warn("Failed to load group",
				zap.String("chat", msg.ChatID),
				zap.Error(err),
			)
		} else {
			group = g
		}
	}

	inv := b.adapter.ParseInvocation(msg, group)
	if inv == nil {
		return
	}

	cmd := b.registry.Resolve(inv.Command)
	if cmd == nil {
		b.logger.Debug("Unknown command token",
			zap.String("token", inv.Command),
			zap.String("chat", msg.ChatID),
		)
		return
	}

	b.logger.Info("Dispatching command",
		zap.String("command", cmd.Name),
		zap.String("chat", msg.ChatID),
		zap.String("user", msg.AuthorID),
		zap.Int("args", len(inv.Args)),
	)

	envelopes := b.dispatcher.Dispatch(ctx, msg, inv.Args, cmd, group)
	b.deliverAll(ctx, msg, envelopes)
}

// deliverAll ships envelopes strictly in order. A failed delivery is logged
// and does not block the remaining envelopes.
func (b *Bot) deliverAll(ctx context.Context, msg *domain.Message, envelopes []*domain.ReturnMessage) {
	for _, rm := range envelopes {
		if rm.DelayMs > 0 {
			select {
			case <-time.After(time.Duration(rm.DelayMs) * time.Millisecond):
			case <-ctx.Done():
				return
			case <-b.stopCh:
				return
			}
		}
		if err := b.deliver(ctx, msg, rm); err != nil {
			b.logger.Error("Failed to deliver message",
				zap.String("chat", rm.ChatID),
				zap.Error(err),
			)
			continue
		}
		if rm.Reactions != nil && rm.Reactions.After != "" {
			key := evolution.MessageKey{
				RemoteJID:   msg.ChatID,
				ID:          msg.ID,
				Participant: msg.AuthorID,
			}
			if err := b.client.React(ctx, key, rm.Reactions.After); err != nil {
				b.logger.Warn("Failed to apply envelope reaction", zap.Error(err))
			}
		}
	}
}

func (b *Bot) deliver(ctx context.Context, msg *domain.Message, rm *domain.ReturnMessage) error {
	var quoted *evolution.Quoted
	if rm.Options.QuotedMessageID != "" {
		quoted = &evolution.Quoted{
			Key: evolution.MessageKey{
				RemoteJID:   rm.ChatID,
				ID:          rm.Options.QuotedMessageID,
				Participant: msg.AuthorID,
			},
		}
	}

	// DelayMs is consumed by deliverAll's in-process wait; forwarding it as
	// the gateway's typing delay too would make the envelope wait twice.
	if rm.Media == nil {
		return b.client.SendText(ctx, &evolution.TextRequest{
			Number:      rm.ChatID,
			Text:        rm.Text,
			LinkPreview: rm.Options.LinkPreview,
			Quoted:      quoted,
			Mentioned:   rm.Options.Mentions,
		})
	}

	payload, err := mediaPayload(rm.Media)
	if err != nil {
		return err
	}

	if rm.Options.SendMediaAsSticker {
		return b.client.SendSticker(ctx, &evolution.StickerRequest{
			Number:  rm.ChatID,
			Sticker: payload,
		})
	}

	if rm.Options.SendAudioAsVoice || strings.HasPrefix(rm.Media.Mimetype, "audio/") {
		return b.client.SendAudio(ctx, &evolution.AudioRequest{
			Number: rm.ChatID,
			Audio:  payload,
		})
	}

	caption := rm.Options.Caption
	if caption == "" {
		caption = rm.Text
	}

	return b.client.SendMedia(ctx, &evolution.MediaRequest{
		Number:    rm.ChatID,
		MediaType: mediaType(rm.Media, rm.Options),
		Mimetype:  rm.Media.Mimetype,
		Media:     payload,
		Caption:   caption,
		FileName:  rm.Media.Filename,
		ViewOnce:  rm.Options.IsViewOnce,
		Quoted:    quoted,
		Mentioned: rm.Options.Mentions,
	})
}

// ClientReactor adapts the gateway client to the dispatcher's Reactor.
type ClientReactor struct {
	Client *evolution.Client
}

func (r *ClientReactor) React(ctx context.Context, msg *domain.Message, emoji string) error {
	key := evolution.MessageKey{
		RemoteJID:   msg.ChatID,
		ID:          msg.ID,
		Participant: msg.AuthorID,
	}
	return r.Client.React(ctx, key, emoji)
}

func (b *Bot) sweepLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.Downloads.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		case <-ticker.C:
			removed, err := b.downloadCache.SweepExpired(b.cfg.Downloads.MaxAge)
			if err != nil {
				b.logger.Warn("Download cache sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				b.logger.Info("Swept expired download entries", zap.Int("removed", removed))
			}
		}
	}
}

// mediaPayload resolves the transport payload for a media attachment: remote
// URLs pass through, local artifacts are inlined as base64.
func mediaPayload(media *domain.Media) (string, error) {
	if media.Path != "" {
		data, err := os.ReadFile(media.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read media file: %w", err)
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}
	if media.URL != "" {
		return media.URL, nil
	}
	return "", fmt.Errorf("media has neither path nor url")
}

func mediaType(media *domain.Media, opts domain.DeliveryOptions) string {
	if opts.SendMediaAsDocument {
		return "document"
	}
	switch {
	case strings.HasPrefix(media.Mimetype, "image/"):
		return "image"
	case strings.HasPrefix(media.Mimetype, "video/"):
		return "video"
	case strings.HasPrefix(media.Mimetype, "audio/"):
		return "audio"
	}
	// Artifacts downloaded by the media service are predominantly video.
	if media.Path != "" && (strings.HasSuffix(media.Path, ".mp4") || strings.HasSuffix(media.Path, ".webm")) {
		return "video"
	}
	if media.Path != "" && (strings.HasSuffix(media.Path, ".jpg") || strings.HasSuffix(media.Path, ".png")) {
		return "image"
	}
	return "document"
}
