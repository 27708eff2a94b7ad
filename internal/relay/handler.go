// Package relay drives the lifecycle of each accepted connection: the
// authentication handshake, registration, the paired heartbeat and dispatch
// goroutines, and unconditional cleanup.
package relay

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hibiki-live/danmaku-relay/internal/config"
)

// Handler owns the WebSocket endpoint and runs one lifecycle controller per
// accepted connection.
type Handler struct {
	registry    *Registry
	broadcaster *Broadcaster
	cfg         config.RelayConfig
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// NewHandler wires the endpoint to the shared registry and broadcaster.
func NewHandler(registry *Registry, broadcaster *Broadcaster, cfg config.RelayConfig, logger *zap.Logger) *Handler {
	return &Handler{
		registry:    registry,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     newOriginChecker(cfg.AllowedOrigins, logger),
		},
	}
}

// ServeWS upgrades the HTTP request and handles the connection for its full
// life. It returns only after cleanup has run.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	s := newSession(newSessionID(), conn, h.cfg.SendTimeout)
	h.logger.Info("client connected",
		zap.String("session_id", s.ID),
		zap.String("remote_addr", r.RemoteAddr),
	)
	h.handle(s)
}

// handle orchestrates one connection. Cleanup is deferred so every exit
// path, from handshake timeout to mid-session fault, releases whatever was
// registered; the registry makes a second invocation a no-op.
func (h *Handler) handle(s *Session) {
	defer h.cleanup(s)

	if err := h.handshake(s); err != nil {
		h.logger.Info("handshake failed", zap.String("session_id", s.ID), zap.Error(err))
		return
	}

	h.logger.Info("user joined room",
		zap.String("session_id", s.ID),
		zap.String("room_id", s.RoomID),
		zap.String("username", s.Username),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{}, 2)
	go func() {
		runHeartbeat(ctx, s, h.cfg.HeartbeatInterval)
		done <- struct{}{}
	}()
	go func() {
		h.runDispatch(s)
		done <- struct{}{}
	}()

	// First completion wins. Cancelling the context stops the heartbeat at
	// its next tick and closing the connection unblocks a pending read, so
	// joining the loser is bounded.
	<-done
	cancel()
	s.Close()
	<-done
}

// handshake waits for the auth frame, assigns room and identity with
// defaults, registers the session, and announces the join to the room. A
// returned error means the session is not registered unless registration
// itself already happened, in which case the deferred cleanup undoes it.
func (h *Handler) handshake(s *Session) error {
	if err := s.SetReadDeadline(time.Now().Add(h.cfg.AuthTimeout)); err != nil {
		return fmt.Errorf("arming auth deadline: %w", err)
	}
	raw, err := s.Receive()
	if err != nil {
		return fmt.Errorf("waiting for auth frame: %w", err)
	}
	if err := s.SetReadDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clearing auth deadline: %w", err)
	}

	frame, err := parseAuthFrame(raw)
	if err != nil {
		return err
	}
	if frame.Type != TypeAuth {
		_ = s.Send(newError("需要先进行认证"))
		return fmt.Errorf("first frame type %q, want %q", frame.Type, TypeAuth)
	}

	s.RoomID = frame.RoomID
	if s.RoomID == "" {
		s.RoomID = DefaultRoom
	}
	s.Username = frame.Username
	if s.Username == "" {
		s.Username = randomUsername()
	}
	s.JoinedAt = time.Now()

	h.registry.Add(s)

	if err := s.Send(newAuthSuccess(s.RoomID, s.ID)); err != nil {
		return fmt.Errorf("sending auth_success: %w", err)
	}
	h.broadcaster.Broadcast(s.RoomID, newSystem(fmt.Sprintf("欢迎 %s 进入直播间", s.Username)), s)
	return nil
}

// cleanup is the authoritative destructor for a session. It is idempotent:
// the registry ignores unknown sessions and Close is a no-op after the
// first call.
func (h *Handler) cleanup(s *Session) {
	h.registry.Remove(s)
	s.Close()

	rooms, sessions := h.registry.Counts()
	h.logger.Info("session cleaned up",
		zap.String("session_id", s.ID),
		zap.Int("rooms", rooms),
		zap.Int("sessions", sessions),
	)
}

func newSessionID() string {
	// Short IDs keep broadcast frames compact; 8 hex chars is plenty for
	// process-lifetime uniqueness at this scale.
	return uuid.NewString()[:8]
}

func randomUsername() string {
	return fmt.Sprintf("用户%d", 1000+rand.Intn(9000))
}
