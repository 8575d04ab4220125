package handlers

import (
	"log"
	"net/http"

	"bordersense/surveillance/internal/events"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type EventsHandler struct {
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Subscribe handles GET /ws: the connection is registered with the hub and
// receives every broadcast event until it closes. Inbound messages are
// discarded; the stream is one-way.
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	client := events.NewClient(conn)
	h.hub.Register(client)
	defer func() {
		h.hub.Unregister(client)
		client.CloseConn()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
