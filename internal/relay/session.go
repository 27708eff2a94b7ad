// Package relay manages individual client sessions, serializing frame writes
// and providing idempotent connection teardown.
package relay

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSessionClosed is returned by Send once the session's connection has
// been closed.
var ErrSessionClosed = errors.New("relay: session closed")

// wireConn is the subset of *websocket.Conn the relay uses. Keeping it as an
// interface lets tests substitute in-memory fakes for network connections.
type wireConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is the server-side state bound to one connection. ID is assigned
// at acceptance; RoomID, Username, and JoinedAt are populated exactly once
// during the handshake and are immutable afterwards.
type Session struct {
	ID       string
	Username string
	RoomID   string
	JoinedAt time.Time

	conn        wireConn
	sendTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func newSession(id string, conn wireConn, sendTimeout time.Duration) *Session {
	return &Session{
		ID:          id,
		conn:        conn,
		sendTimeout: sendTimeout,
	}
}

// Send writes one text frame to the connection. Writes are serialized so
// frames from the dispatcher, the heartbeat supervisor, and broadcasts
// triggered by other sessions never interleave.
func (s *Session) Send(payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.sendTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Receive blocks until the next frame arrives or the connection fails.
func (s *Session) Receive() ([]byte, error) {
	_, payload, err := s.conn.ReadMessage()
	return payload, err
}

// SetReadDeadline bounds the next Receive. The zero time clears the deadline.
func (s *Session) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close closes the underlying connection, unblocking any pending Receive.
// Safe to call from any goroutine and any number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		_ = s.conn.Close()
	})
}
