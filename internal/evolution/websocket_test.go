package evolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newEventServer(t *testing.T, events []MessageEvent) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, event := range events {
			data, err := json.Marshal(event)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsAddr(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketDeliversEvents(t *testing.T) {
	server := newEventServer(t, []MessageEvent{
		{Key: MessageKey{RemoteJID: "a@g.us", ID: "1"}, Text: "!ping"},
		{Key: MessageKey{RemoteJID: "a@g.us", ID: "2"}, Text: "!menu"},
	})
	defer server.Close()

	received := make(chan *MessageEvent, 2)
	ws := NewWebSocket(wsAddr(server), 1, 10*time.Millisecond, zap.NewNop())
	ws.OnEvent(func(event *MessageEvent) {
		received <- event
	})

	if err := ws.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer ws.Disconnect()

	for _, wantID := range []string{"1", "2"} {
		select {
		case event := <-received:
			if event.Key.ID != wantID {
				t.Errorf("event id = %q, want %q", event.Key.ID, wantID)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %s never arrived", wantID)
		}
	}

	if !ws.IsConnected() {
		t.Error("expected connected state while the stream is open")
	}
}

func TestWebSocketDisconnectDuringRead(t *testing.T) {
	server := newEventServer(t, nil)
	defer server.Close()

	ws := NewWebSocket(wsAddr(server), 1, 10*time.Millisecond, zap.NewNop())
	if err := ws.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// The listener is blocked in a read; Disconnect must close the
	// connection out from under it without racing and without a reconnect.
	if err := ws.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	if ws.GetState() != WSStateDisconnected {
		t.Errorf("state = %s, want %s", ws.GetState(), WSStateDisconnected)
	}
}

func TestWebSocketUnsubscribeStopsCallback(t *testing.T) {
	server := newEventServer(t, []MessageEvent{
		{Key: MessageKey{RemoteJID: "a@g.us", ID: "1"}},
	})
	defer server.Close()

	calls := make(chan struct{}, 1)
	ws := NewWebSocket(wsAddr(server), 1, 10*time.Millisecond, zap.NewNop())
	unsubscribe := ws.OnEvent(func(*MessageEvent) {
		calls <- struct{}{}
	})
	unsubscribe()

	if err := ws.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer ws.Disconnect()

	select {
	case <-calls:
		t.Fatal("unsubscribed callback still fired")
	case <-time.After(200 * time.Millisecond):
	}
}
