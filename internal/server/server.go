// Package server is the presentation layer: it reads orchestrator
// snapshots and streams tick logs to websocket clients. It only
// consumes the public simulation surface.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dewgong5/nwhacks2026/internal/domain"
	"github.com/dewgong5/nwhacks2026/internal/sim"
)

// Server exposes the running simulation over HTTP and websocket.
type Server struct {
	orch          *sim.Orchestrator
	ticks         *hub[domain.TickLog]
	upgrader      websocket.Upgrader
	corsOrigin    string
	initialPrices map[string]float64
}

type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type snapshotResponse struct {
	Tick   int64              `json:"tick"`
	Prices map[string]float64 `json:"prices"`
	Index  float64            `json:"index"`
}

// New creates a server over the orchestrator. The snapshot taken here
// anchors the market index at 100.
func New(orch *sim.Orchestrator, corsOrigin string) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{
		orch:          orch,
		ticks:         newHub[domain.TickLog](),
		upgrader:      websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		corsOrigin:    corsOrigin,
		initialPrices: orch.Snapshot(),
	}
}

// Publish broadcasts a completed tick to all stream subscribers.
func (s *Server) Publish(log domain.TickLog) {
	s.ticks.Broadcast(log)
}

// Routes returns the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/snapshot", s.withCORS(http.HandlerFunc(s.handleSnapshot)))
	mux.Handle("/portfolio", s.withCORS(http.HandlerFunc(s.handlePortfolio)))
	mux.Handle("/ws/ticks", s.withCORS(http.HandlerFunc(s.handleTickStream)))
	return mux
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	prices := s.orch.Snapshot()
	resp := snapshotResponse{
		Tick:   s.orch.Tick(),
		Prices: prices,
		Index:  marketIndex(s.initialPrices, prices),
	}
	writeJSON(w, resp)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("participant")
	portfolio, ok := s.orch.Portfolio(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, portfolio)
}

func (s *Server) handleTickStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sub := s.ticks.Subscribe(16)
	defer s.ticks.Unsubscribe(sub)

	// Drain client frames so closes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case log, ok := <-sub.ch:
			if !ok {
				return
			}
			msg := outboundMessage{Type: "tick", Data: log}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// marketIndex is a price-weighted index anchored at 100 when current
// equals initial.
func marketIndex(initial, current map[string]float64) float64 {
	var startTotal, currentTotal float64
	for id, price := range initial {
		startTotal += price
		currentTotal += current[id]
	}
	if startTotal == 0 {
		return 100.0
	}
	return 100.0 * (currentTotal / startTotal)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.Any("error", err))
	}
}
