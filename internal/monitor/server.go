package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/jeongseonghan/hvatp/internal/transfer"
)

// Server exposes the progress hub over HTTP: a websocket upgrade
// endpoint and a one-shot status snapshot. Unlike the teacher's web
// server, there is no file-upload or receive-control API here -- this
// package only observes a Session that a caller (the CLI) drives
// directly.
type Server struct {
	mux *http.ServeMux
	hub *Hub
	addr string

	session *transfer.Session
}

// NewServer builds a Server around hub, optionally reporting session's
// SuccessRate from /api/status. session may be nil if no transfer is in
// progress yet.
func NewServer(addr string, hub *Hub, session *transfer.Session) *Server {
	s := &Server{mux: http.NewServeMux(), hub: hub, addr: addr, session: session}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	s.mux.HandleFunc("/api/status", s.handleStatus)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rate := 0.0
	if s.session != nil {
		rate = s.session.SuccessRate()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"success_rate": rate})
}

// Start blocks serving HTTP on Server's configured address.
func (s *Server) Start() error {
	log.Printf("monitor: listening on %s", s.addr)
	fmt.Printf("\n HVATP progress monitor at ws://%s/ws\n\n", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
