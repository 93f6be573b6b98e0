package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeongseonghan/hvatp/internal/transfer"
)

func TestHub_BroadcastEvent_ReachesClient(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(hub.clientHandlerForTest())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Give the server goroutine a moment to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.BroadcastEvent(transfer.Event{Status: transfer.StatusEncoding, Message: "frame 1/3 ready", Progress: 0.33})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !strings.Contains(string(data), "frame 1/3 ready") {
		t.Errorf("message = %s, want it to contain the event message", data)
	}
	if !strings.Contains(string(data), `"type":"progress"`) {
		t.Errorf("message = %s, want type=progress", data)
	}
}

func (h *Hub) clientHandlerForTest() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	return mux
}
