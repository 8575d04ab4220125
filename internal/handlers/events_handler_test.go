package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bordersense/surveillance/internal/events"
	"bordersense/surveillance/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestSubscribeReceivesBroadcasts(t *testing.T) {
	hub := events.NewHub()
	broadcaster := events.NewBroadcaster(hub, zap.NewNop())
	defer broadcaster.Close()

	handler := NewEventsHandler(hub)
	server := httptest.NewServer(http.HandlerFunc(handler.Subscribe))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// Registration happens inside the handler goroutine after the upgrade.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	broadcaster.Emit(models.EventNewAlert, map[string]string{"id": "a1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed reading broadcast: %v", err)
	}
	if ev.Name != models.EventNewAlert {
		t.Fatalf("expected new-alert, got %q", ev.Name)
	}
}

func TestSubscribeUnregistersOnClose(t *testing.T) {
	hub := events.NewHub()
	handler := NewEventsHandler(hub)
	server := httptest.NewServer(http.HandlerFunc(handler.Subscribe))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected client unregistered after close, count is %d", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
