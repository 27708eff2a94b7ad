package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroadcastRoomIsolation(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, zap.NewNop())

	_, connA1 := registeredSession(registry, "a1", "room-a", "alice")
	_, connA2 := registeredSession(registry, "a2", "room-a", "bob")
	_, connB1 := registeredSession(registry, "b1", "room-b", "carol")

	b.Broadcast("room-a", []byte(`{"type":"system","message":"hi"}`), nil)

	require.Len(t, connA1.frames(), 1)
	require.Len(t, connA2.frames(), 1)
	require.Empty(t, connB1.frames(), "a broadcast to room-a must never reach room-b")
}

func TestBroadcastExcludesSender(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, zap.NewNop())

	sender, senderConn := registeredSession(registry, "a1", "room-a", "alice")
	_, otherConn := registeredSession(registry, "a2", "room-a", "bob")

	b.Broadcast("room-a", []byte(`{"type":"system","message":"welcome"}`), sender)

	require.Empty(t, senderConn.frames())
	require.Len(t, otherConn.frames(), 1)
}

func TestBroadcastUnknownRoomIsNoop(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, zap.NewNop())

	b.Broadcast("ghost-room", []byte(`{}`), nil)

	rooms, sessions := registry.Counts()
	require.Zero(t, rooms)
	require.Zero(t, sessions)
}

func TestBroadcastPrunesFailedMembers(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, zap.NewNop())

	_, healthy1 := registeredSession(registry, "a1", "room-a", "alice")
	stale, staleConn := registeredSession(registry, "a2", "room-a", "bob")
	_, healthy2 := registeredSession(registry, "a3", "room-a", "carol")
	staleConn.setFailWrite(true)

	b.Broadcast("room-a", []byte(`{"type":"danmaku","content":"x"}`), nil)

	require.Len(t, healthy1.frames(), 1, "failure on one member must not abort delivery to the rest")
	require.Len(t, healthy2.frames(), 1)
	require.False(t, registry.Contains(stale))
	require.Len(t, registry.Members("room-a"), 2)

	// The pruned connection is closed so its controller tears down.
	require.ErrorIs(t, stale.Send([]byte(`{}`)), ErrSessionClosed)
}

func TestBroadcastDropsRoomWhenAllMembersFail(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, zap.NewNop())

	_, conn := registeredSession(registry, "a1", "room-a", "alice")
	conn.setFailWrite(true)
	_, other := registeredSession(registry, "b1", "room-b", "bob")

	b.Broadcast("room-a", []byte(`{}`), nil)

	rooms, sessions := registry.Counts()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, sessions)
	require.Empty(t, other.frames())
}
