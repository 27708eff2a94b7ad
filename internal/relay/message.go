// Package relay defines the JSON wire frames exchanged with danmaku clients
// and helpers for constructing the server-originated variants.
package relay

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frame type discriminants. Every frame on the wire is a JSON object whose
// "type" field carries one of these values.
const (
	TypeAuth        = "auth"
	TypeAuthSuccess = "auth_success"
	TypeDanmaku     = "danmaku"
	TypeHeartbeat   = "heartbeat"
	TypePing        = "ping"
	TypePong        = "pong"
	TypeSystem      = "system"
	TypeError       = "error"
)

// Rendering defaults applied when a danmaku frame omits the fields.
const (
	DefaultColor    = "#FFFFFF"
	DefaultFontSize = 24
)

// DefaultRoom is where sessions land when the auth frame names no room.
const DefaultRoom = "default"

// InboundFrame is the envelope for every client-to-server frame. Only the
// fields matching the Type discriminant are meaningful.
type InboundFrame struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id,omitempty"`
	Username string `json:"username,omitempty"`
	Content  string `json:"content,omitempty"`
	Color    string `json:"color,omitempty"`
	FontSize int    `json:"font_size,omitempty"`
}

// AuthSuccessFrame confirms a completed handshake.
type AuthSuccessFrame struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ErrorFrame is sent once before the server closes the connection.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SystemFrame carries room-wide notices such as join announcements.
type SystemFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// DanmakuFrame is the broadcast form of a danmaku event, stamped with the
// sender's identity and the server arrival time.
type DanmakuFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Color     string `json:"color"`
	FontSize  int    `json:"font_size"`
	Username  string `json:"username"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// TimestampedFrame covers the server frames that carry nothing but a
// timestamp: heartbeat and pong.
type TimestampedFrame struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// parseAuthFrame decodes the first inbound frame of a connection.
func parseAuthFrame(raw []byte) (InboundFrame, error) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return InboundFrame{}, fmt.Errorf("parsing auth frame: %w", err)
	}
	return frame, nil
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// marshalFrame serializes a server frame. The frame structs contain only
// strings and ints, so marshalling cannot fail.
func marshalFrame(v any) []byte {
	payload, _ := json.Marshal(v)
	return payload
}

func newAuthSuccess(roomID, userID string) []byte {
	return marshalFrame(AuthSuccessFrame{
		Type:    TypeAuthSuccess,
		RoomID:  roomID,
		UserID:  userID,
		Message: "认证成功",
	})
}

func newError(message string) []byte {
	return marshalFrame(ErrorFrame{Type: TypeError, Message: message})
}

func newSystem(message string) []byte {
	return marshalFrame(SystemFrame{
		Type:      TypeSystem,
		Message:   message,
		Timestamp: timestamp(),
	})
}

// newDanmaku builds the broadcast payload for an inbound danmaku frame,
// filling in rendering defaults and stamping the sender's identity.
func newDanmaku(frame InboundFrame, sender *Session) []byte {
	color := frame.Color
	if color == "" {
		color = DefaultColor
	}
	fontSize := frame.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return marshalFrame(DanmakuFrame{
		Type:      TypeDanmaku,
		Content:   frame.Content,
		Color:     color,
		FontSize:  fontSize,
		Username:  sender.Username,
		UserID:    sender.ID,
		Timestamp: timestamp(),
	})
}

func newHeartbeat() []byte {
	return marshalFrame(TimestampedFrame{Type: TypeHeartbeat, Timestamp: timestamp()})
}

func newPong() []byte {
	return marshalFrame(TimestampedFrame{Type: TypePong, Timestamp: timestamp()})
}
