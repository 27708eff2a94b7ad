package relay

import (
	"context"
	"time"
)

// runHeartbeat pushes a server heartbeat frame to the session at a fixed
// interval. The pulse is purely server-initiated and does not depend on
// client heartbeats. It returns when a send fails, which after the peer
// disconnects is the normal teardown trigger for an otherwise idle session,
// or when ctx is cancelled.
func runHeartbeat(ctx context.Context, s *Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Send(newHeartbeat()); err != nil {
				return
			}
		}
	}
}
