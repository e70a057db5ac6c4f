package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Server owns the single game session and its HTTP surface.
type Server struct {
	game *Game
	http *http.Server
}

// New creates a server around a fresh lobby.
func New(password string, tuning Tuning) *Server {
	return &Server{game: NewGame(password, tuning)}
}

// Game exposes the session, mainly for tests.
func (s *Server) Game() *Game {
	return s.game
}

// Handler returns the HTTP routes: the WebSocket endpoint plus health
// and diagnostics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.game.Snapshot()
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Phase      string `json:"phase"`
			Players    int    `json:"players"`
			Coins      int    `json:"coins"`
			Remaining  int    `json:"remaining"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Phase:      snapshot.Phase,
			Players:    len(snapshot.Players),
			Coins:      len(snapshot.Coins),
			Remaining:  snapshot.RemainingTime,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
	return mux
}

// HandleWebSocket upgrades a connection and starts its pumps.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	client := newClient(s.game, conn)
	go client.writePump()
	go client.readPump()
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Handler()}
	log.Printf("[SERVER] listening on %s", addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains connections and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.game.Shutdown()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
