package ws

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the JSON wire format for every websocket message.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
	ID        string      `json:"id"`
}

// Message type constants.
const (
	MsgTypeHeartbeat       = "heartbeat"
	MsgTypeHeartbeatAck    = "heartbeat_ack"
	MsgTypeJoinRoom        = "join_room"
	MsgTypeLeaveRoom       = "leave_room"
	MsgTypeReviewUpdate    = "review_update"
	MsgTypeNotification    = "notification"
	MsgTypeAnalyticsUpdate = "analytics_update"
)

// NewEnvelope stamps a message with its id and timestamp.
func NewEnvelope(msgType string, data interface{}) *Envelope {
	return &Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		ID:        uuid.NewString(),
	}
}
