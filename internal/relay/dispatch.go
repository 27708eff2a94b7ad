// Package relay classifies inbound frames per session and routes them to the
// broadcast engine or back to the sender.
package relay

import (
	"encoding/json"

	"go.uber.org/zap"
)

// runDispatch consumes frames from the session's connection until it closes.
// A malformed or unrecognized frame never ends the loop; only a read error
// does, and a close during normal teardown is not treated as a fault.
func (h *Handler) runDispatch(s *Session) {
	for {
		raw, err := s.Receive()
		if err != nil {
			if !isExpectedClose(err) {
				h.logger.Warn("read failed",
					zap.String("session_id", s.ID),
					zap.Error(err),
				)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.logger.Warn("discarding malformed frame",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
			continue
		}

		switch frame.Type {
		case TypeDanmaku:
			h.broadcaster.Broadcast(s.RoomID, newDanmaku(frame, s), nil)
			h.logger.Info("danmaku",
				zap.String("room_id", s.RoomID),
				zap.String("username", s.Username),
				zap.String("content", frame.Content),
			)
		case TypeHeartbeat:
			// Client heartbeats carry no state; liveness is implicit in
			// frame receipt.
		case TypePing:
			if err := s.Send(newPong()); err != nil {
				return
			}
		default:
			h.logger.Debug("ignoring unknown frame type",
				zap.String("session_id", s.ID),
				zap.String("type", frame.Type),
			)
		}
	}
}
