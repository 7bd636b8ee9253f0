package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
)

type captureGateway struct {
	mu    sync.Mutex
	texts []evolution.TextRequest
}

func (g *captureGateway) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req evolution.TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			g.mu.Lock()
			g.texts = append(g.texts, req)
			g.mu.Unlock()
		}
		fmt.Fprint(w, "{}")
	})
}

func (g *captureGateway) sent() []evolution.TextRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]evolution.TextRequest, len(g.texts))
	copy(out, g.texts)
	return out
}

func newTestBot(serverURL string) *Bot {
	return &Bot{
		client: evolution.NewClient(serverURL, "test-key", "test", zap.NewNop()),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
}

func TestDeliverTextDoesNotForwardDelay(t *testing.T) {
	gateway := &captureGateway{}
	server := httptest.NewServer(gateway.handler())
	defer server.Close()

	b := newTestBot(server.URL)
	msg := &domain.Message{ID: "m1", ChatID: "chat@g.us", AuthorID: "u@c.us"}

	rm := domain.NewTextMessage("chat@g.us", "oi")
	rm.DelayMs = 1500

	if err := b.deliver(context.Background(), msg, rm); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	sent := gateway.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one request, got %d", len(sent))
	}
	if sent[0].Delay != 0 {
		t.Errorf("gateway delay must stay zero, got %d", sent[0].Delay)
	}
	if sent[0].Text != "oi" || sent[0].Number != "chat@g.us" {
		t.Errorf("unexpected request %+v", sent[0])
	}
}

func TestDeliverAllWaitsOnceBeforeDelayedEnvelope(t *testing.T) {
	gateway := &captureGateway{}
	server := httptest.NewServer(gateway.handler())
	defer server.Close()

	b := newTestBot(server.URL)
	msg := &domain.Message{ID: "m1", ChatID: "chat@g.us", AuthorID: "u@c.us"}

	delayed := domain.NewTextMessage("chat@g.us", "second")
	delayed.DelayMs = 60

	start := time.Now()
	b.deliverAll(context.Background(), msg, []*domain.ReturnMessage{
		domain.NewTextMessage("chat@g.us", "first"),
		delayed,
	})
	elapsed := time.Since(start)

	if elapsed < 60*time.Millisecond {
		t.Errorf("delayed envelope shipped after %v, want at least 60ms", elapsed)
	}

	sent := gateway.sent()
	if len(sent) != 2 || sent[0].Text != "first" || sent[1].Text != "second" {
		t.Fatalf("unexpected delivery sequence %+v", sent)
	}
}
