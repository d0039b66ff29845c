package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/torcida/torcida/internal/game"
	"github.com/torcida/torcida/internal/relay"
)

// Router holds the HTTP routes and dependencies
type Router struct {
	mux  *http.ServeMux
	game *game.Game
	hub  *Hub
	log  *log.Logger
}

// NewRouter creates a new HTTP router
func NewRouter(g *game.Game, origin string, logger *log.Logger) *Router {
	r := &Router{
		mux:  http.NewServeMux(),
		game: g,
		hub:  NewHub(g, origin, logger),
		log:  logger,
	}

	// WebSocket endpoint; the token identifies the player
	r.mux.HandleFunc("GET /ws/{token...}", r.handleWebSocket)

	// Read-only API routes
	r.mux.HandleFunc("GET /api/state", r.handleGetState)
	r.mux.HandleFunc("GET /api/history", r.handleGetHistory)
	r.mux.HandleFunc("GET /api/stats", r.handleGetStats)
	r.mux.HandleFunc("GET /api/shop", r.handleGetShop)

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for API
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Start runs the hub loop and subscribes it to the relay so every
// worker sees every broadcast.
func (r *Router) Start(ctx context.Context, rl *relay.Relay) error {
	if err := rl.Subscribe(r.hub.Deliver); err != nil {
		return err
	}
	go r.hub.Run(ctx)
	return nil
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleGetState returns the shared snapshot without player context
func (r *Router) handleGetState(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.game.SharedSnapshot())
}

// handleGetHistory returns recent decided matches, newest first
func (r *Router) handleGetHistory(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.game.History().All())
}

// handleGetStats returns per-team win statistics
func (r *Router) handleGetStats(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.game.Stats().All())
}

// handleGetShop returns the catalog without ownership flags
func (r *Router) handleGetShop(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.game.Shop().Items())
}

// handleHealth returns service health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": r.hub.ClientCount(),
		"players":     r.game.Registry().ConnectedCount(),
	})
}
