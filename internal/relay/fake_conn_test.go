package relay

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errWriteFailed = errors.New("write failed")

// fakeConn is an in-memory wireConn. Reads are fed through push and unblock
// with net.ErrClosed once the conn is closed; writes are recorded for
// inspection and can be forced to fail.
type fakeConn struct {
	mu        sync.Mutex
	written   [][]byte
	failWrite bool
	closed    bool

	inbound  chan []byte
	closedCh chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan []byte, 16),
		closedCh: make(chan struct{}),
	}
}

func (f *fakeConn) push(data []byte) {
	f.inbound <- data
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.inbound:
		return websocket.TextMessage, data, nil
	case <-f.closedCh:
		return 0, nil, net.ErrClosed
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return net.ErrClosed
	}
	if f.failWrite {
		return errWriteFailed
	}
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.closedCh)
	}
	return nil
}

func (f *fakeConn) setFailWrite(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = fail
}

// frames returns a copy of everything written so far.
func (f *fakeConn) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

// framesOfType decodes every written frame and returns those whose "type"
// discriminant matches.
func (f *fakeConn) framesOfType(frameType string) []map[string]any {
	var matched []map[string]any
	for _, raw := range f.frames() {
		var frame map[string]any
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame["type"] == frameType {
			matched = append(matched, frame)
		}
	}
	return matched
}

// registeredSession builds a handshake-complete session on a fresh fakeConn
// and adds it to the registry.
func registeredSession(registry *Registry, id, roomID, username string) (*Session, *fakeConn) {
	conn := newFakeConn()
	s := newSession(id, conn, time.Second)
	s.RoomID = roomID
	s.Username = username
	s.JoinedAt = time.Now()
	registry.Add(s)
	return s, conn
}
