package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndContains(t *testing.T) {
	registry := NewRegistry()
	s, _ := registeredSession(registry, "s1", "room-a", "alice")

	require.True(t, registry.Contains(s))
	rooms, sessions := registry.Counts()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, sessions)
}

func TestRegistryRemoveDropsEmptyRoom(t *testing.T) {
	registry := NewRegistry()
	s1, _ := registeredSession(registry, "s1", "room-a", "alice")
	s2, _ := registeredSession(registry, "s2", "room-a", "bob")

	registry.Remove(s1)
	rooms, sessions := registry.Counts()
	require.Equal(t, 1, rooms, "room must survive while members remain")
	require.Equal(t, 1, sessions)

	registry.Remove(s2)
	rooms, sessions = registry.Counts()
	require.Zero(t, rooms, "emptied room must be deleted, not kept with an empty set")
	require.Zero(t, sessions)
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	registry := NewRegistry()
	s, _ := registeredSession(registry, "s1", "room-a", "alice")

	registry.Remove(s)
	registry.Remove(s)

	rooms, sessions := registry.Counts()
	require.Zero(t, rooms)
	require.Zero(t, sessions)
	require.False(t, registry.Contains(s))
}

func TestRegistryRemoveUnknownSessionIsNoop(t *testing.T) {
	registry := NewRegistry()
	registeredSession(registry, "s1", "room-a", "alice")

	stranger := newSession("s2", newFakeConn(), 0)
	stranger.RoomID = "room-a"
	registry.Remove(stranger)

	rooms, sessions := registry.Counts()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, sessions)
}

func TestRegistryMembersSnapshot(t *testing.T) {
	registry := NewRegistry()
	require.Empty(t, registry.Members("nowhere"))

	s1, _ := registeredSession(registry, "s1", "room-a", "alice")
	s2, _ := registeredSession(registry, "s2", "room-a", "bob")
	registeredSession(registry, "s3", "room-b", "carol")

	members := registry.Members("room-a")
	require.Len(t, members, 2)
	require.ElementsMatch(t, []*Session{s1, s2}, members)

	// Mutating the registry must not affect an existing snapshot.
	registry.Remove(s1)
	require.Len(t, members, 2)
}

func TestRegistrySessionsSpansRooms(t *testing.T) {
	registry := NewRegistry()
	s1, _ := registeredSession(registry, "s1", "room-a", "alice")
	s2, _ := registeredSession(registry, "s2", "room-b", "bob")

	require.ElementsMatch(t, []*Session{s1, s2}, registry.Sessions())
}
