// Package relay fans messages out to room members via the Broadcaster,
// pruning members whose connections have gone stale.
package relay

import "go.uber.org/zap"

// Broadcaster delivers frames to every member of a room. Delivery is best
// effort: there is no confirmation and no retry, and a failed member never
// aborts delivery to the rest.
type Broadcaster struct {
	registry *Registry
	logger   *zap.Logger
}

// NewBroadcaster creates a Broadcaster backed by the given registry.
func NewBroadcaster(registry *Registry, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast sends payload to every member of roomID except exclude. Members
// whose send fails are removed from the room after the iteration completes
// and their connections closed, so stale entries heal on the next broadcast.
// An unknown or empty room is a no-op.
func (b *Broadcaster) Broadcast(roomID string, payload []byte, exclude *Session) {
	members := b.registry.Members(roomID)
	if len(members) == 0 {
		return
	}

	var failed []*Session
	for _, member := range members {
		if member == exclude {
			continue
		}
		if err := member.Send(payload); err != nil {
			b.logger.Warn("dropping unreachable room member",
				zap.String("room_id", roomID),
				zap.String("user_id", member.ID),
				zap.Error(err),
			)
			failed = append(failed, member)
		}
	}

	for _, member := range failed {
		b.registry.Remove(member)
		member.Close()
	}
}
