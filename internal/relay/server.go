// Package relay constructs and runs the HTTP service that fronts the relay,
// applying the timeout and shutdown behavior expected in production.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hibiki-live/danmaku-relay/internal/config"
)

// Server bundles the HTTP listener with the relay state it serves.
type Server struct {
	httpServer *http.Server
	registry   *Registry
	logger     *zap.Logger
}

// NewServer assembles the registry, broadcaster, and handler and mounts the
// WebSocket, health, stats, and test-page routes.
func NewServer(cfg config.Config, logger *zap.Logger) *Server {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logger)
	handler := NewHandler(registry, broadcaster, cfg.Relay, logger)

	srv := &Server{
		registry: registry,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/stats", srv.handleStats)
	mux.HandleFunc("/test", TestPageHandler)

	srv.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return srv
}

// ListenAndServe blocks until the listener stops. A graceful shutdown is
// reported as success.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the HTTP listener, then closes every live session so each
// lifecycle controller observes the closure and runs its own cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	err := s.httpServer.Shutdown(ctx)

	sessions := s.registry.Sessions()
	for _, sess := range sessions {
		sess.Close()
	}
	s.logger.Info("closed live sessions", zap.Int("count", len(sessions)))

	return err
}

// HealthHandler reports process liveness as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "danmaku relay is running")
}

type statsResponse struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
}

// handleStats reports live room and session counts as JSON.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	rooms, sessions := s.registry.Counts()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsResponse{Rooms: rooms, Sessions: sessions}); err != nil {
		s.logger.Warn("writing stats response", zap.Error(err))
	}
}
