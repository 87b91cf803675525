// Package server exposes tables over HTTP. Game state is pull-based: a
// GET of the state endpoint advances the table one step and returns the
// caller's view, so clients drive the game simply by polling. A WebSocket
// endpoint streams the same views for clients that prefer push.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/hackur/holdemd/internal/engine"
)

// Server is the HTTP front end over a table manager.
type Server struct {
	addr     string
	manager  *Manager
	upgrader websocket.Upgrader
	logger   *log.Logger
	httpSrv  *http.Server
}

// NewServer creates the HTTP server.
func NewServer(addr string, manager *Manager, logger *log.Logger) *Server {
	return &Server{
		addr:    addr,
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithPrefix("server"),
	}
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tables", s.handleTables)
	mux.HandleFunc("GET /tables/{table}/state", s.handleState)
	mux.HandleFunc("POST /tables/{table}/action", s.handleAction)
	mux.HandleFunc("GET /tables/{table}/ws", s.handleWebSocket)

	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("listening", "addr", s.addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tableSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phase   string `json:"phase"`
	HandNum int    `json:"hand_num"`
	Players int    `json:"players"`
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	tables := s.manager.Tables()
	out := make([]tableSummary, 0, len(tables))
	for _, t := range tables {
		g := t.Orch.Game()
		out = append(out, tableSummary{
			ID:      t.ID,
			Name:    t.Name,
			Phase:   g.Phase.String(),
			HandNum: g.HandNum,
			Players: len(g.Players),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	t, ok := s.manager.Table(r.PathValue("table"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	if err := t.Orch.Tick(); err != nil {
		s.logger.Error("tick failed", "table", t.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "table advance failed")
		return
	}
	writeJSON(w, http.StatusOK, t.Orch.ViewFor(r.URL.Query().Get("player")))
}

type actionRequest struct {
	Player string `json:"player"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type actionResponse struct {
	Accepted bool        `json:"accepted"`
	View     engine.View `json:"view"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.manager.Table(r.PathValue("table"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	actionType, err := engine.ParseActionType(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	accepted := t.Orch.SubmitAction(req.Player, engine.Action{Type: actionType, Amount: req.Amount})
	if !accepted {
		s.logger.Debug("action rejected", "table", t.ID, "player", req.Player, "action", req.Action)
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Accepted: accepted,
		View:     t.Orch.ViewFor(req.Player),
	})
}

// handleWebSocket streams the caller's view after every tick. Incoming
// messages are treated as actions in the same shape as the POST endpoint.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	t, ok := s.manager.Table(r.PathValue("table"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	player := r.URL.Query().Get("player")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	s.logger.Info("client connected", "table", t.ID, "player", player)

	stream := newViewStream(conn, t, player, s.logger)
	go stream.writePump()
	stream.readPump()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
