// Package server exposes the signaling hub over HTTP: the websocket
// endpoint plus a few read-only diagnostics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nikhilsahni7/huddle-signal/pkg/config"
	"github.com/nikhilsahni7/huddle-signal/pkg/signaling"
	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

// Server wires the hub to an HTTP listener
type Server struct {
	cfg        *config.Config
	hub        *signaling.Hub
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a server for hub
func New(cfg *config.Config, hub *signaling.Hub) *Server {
	s := &Server{
		cfg: cfg,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
	}
	s.upgrader.CheckOrigin = s.checkOrigin

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routes wrapped in the CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/rooms", s.handleRooms)
	mux.HandleFunc("GET /api/ice-servers", s.handleICEServers)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.corsMiddleware(mux)
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	util.Info("Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests. Hijacked websocket connections are not
// touched; close the hub for those.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware answers preflight requests and sets CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.cfg.AllowedOrigin
		if origin == "*" {
			origin = r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.AllowedOrigin
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	util.Debug("Health check requested from %s", r.RemoteAddr)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	util.Debug("Room list requested from %s", r.RemoteAddr)
	writeJSON(w, s.hub.GetActiveRooms())
}

func (s *Server) handleICEServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg.ICEServers())
}

// handleWebSocket upgrades the request and hands the connection to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.Error("Error upgrading to WebSocket: %v", err)
		return
	}

	clientID := signaling.NewConnID()
	signaling.NewClient(clientID, conn, s.hub)

	util.Info("WebSocket connection established: client %s from %s", clientID, r.RemoteAddr)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.Error("Error encoding response: %v", err)
	}
}
