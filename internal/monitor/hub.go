// Package monitor broadcasts transfer.Event updates to connected
// websocket clients -- a minimal progress-monitoring surface, not a
// full upload/control API (the core has no persisted state or CLI
// surface of its own; this is purely an observer).
package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/hvatp/internal/transfer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope every websocket frame carries.
type Message struct {
	Type string `json:"type"`
	Payload interface{} `json:"payload"`
}

// ProgressPayload mirrors transfer.Event for the wire.
type ProgressPayload struct {
	Status string `json:"status"`
	Message string `json:"message"`
	Progress float64 `json:"progress"`
}

// Hub tracks connected websocket clients and broadcasts transfer events
// to all of them.
type Hub struct {
	clients map[*websocket.Conn]bool
	mu sync.RWMutex
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// HandleWebSocket upgrades an HTTP request to a websocket connection and
// registers it with the hub. The connection is removed on read error
// (clients don't send anything meaningful back; reading only detects
// disconnects).
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: upgrade failed: %v", err)
		return
	}
	h.addClient(conn)

	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("monitor: client connected (%d total)", len(h.clients))
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	log.Printf("monitor: client disconnected (%d remaining)", len(h.clients))
}

// Broadcast sends msg to every connected client, dropping and closing
// any connection that fails to write.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("monitor: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("monitor: write error: %v", err)
			h.removeClient(conn)
		}
	}
}

// BroadcastEvent forwards one transfer.Event to every connected client.
func (h *Hub) BroadcastEvent(ev transfer.Event) {
	errMsg := ""
	if ev.Error != nil {
		errMsg = ev.Error.Error()
	}
	h.Broadcast(Message{
		Type: "progress",
		Payload: ProgressPayload{
			Status: ev.Status.String(),
			Message: ev.Message,
			Progress: ev.Progress,
		},
	})
	if errMsg != "" {
		h.Broadcast(Message{Type: "error", Payload: map[string]string{"message": errMsg}})
	}
}

// Watch drains a session's event channel and broadcasts each event until
// the channel closes or stop is closed.
func (h *Hub) Watch(events <-chan transfer.Event, stop <-chan struct{}) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.BroadcastEvent(ev)
		case <-stop:
			return
		}
	}
}
