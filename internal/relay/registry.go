// Package relay tracks room membership through the Registry, the single
// source of truth consulted by broadcasts and mutated on join and cleanup.
package relay

import "sync"

// Registry maps room identifiers to their live sessions and keeps a reverse
// index of every registered session. All mutations happen under one lock, so
// concurrent joins, leaves, and broadcast prunes observe a consistent view.
//
// Invariants: a session is in the index iff it completed the handshake and
// has not been cleaned up; it appears in exactly the room set matching its
// RoomID; an emptied room set is deleted immediately.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]struct{}
}

// NewRegistry creates an empty Registry ready to track sessions.
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]struct{}),
	}
}

// Add registers a session under its assigned room, creating the room set on
// first join.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[s.RoomID]
	if !ok {
		members = make(map[*Session]struct{})
		r.rooms[s.RoomID] = members
	}
	members[s] = struct{}{}
	r.sessions[s] = struct{}{}
}

// Remove deletes the session from the index and from its room, dropping the
// room entry once the last member leaves. Removing an unregistered session
// is a no-op, so cleanup can run on every exit path without tracking how far
// the lifecycle progressed.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s]; !ok {
		return
	}
	delete(r.sessions, s)

	if members, ok := r.rooms[s.RoomID]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, s.RoomID)
		}
	}
}

// Members returns a stable snapshot of the sessions currently in the room.
// An unknown room yields an empty slice.
func (r *Registry) Members(roomID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Session, 0, len(r.rooms[roomID]))
	for s := range r.rooms[roomID] {
		members = append(members, s)
	}
	return members
}

// Sessions returns a snapshot of every registered session across all rooms.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Contains reports whether the session is currently registered.
func (r *Registry) Contains(s *Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[s]
	return ok
}

// Counts returns the number of live rooms and registered sessions.
func (r *Registry) Counts() (rooms, sessions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), len(r.sessions)
}
