package live

import (
	"encoding/json"
	"time"

	"bulletin_board/internal/model"
)

// Event types, server to client
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageDeleted = "message.deleted"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event types, client to server
const (
	EventTypePing = "ping"
)

// Event is the envelope of every frame on the live feed
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type MessageCreatedPayload struct {
	model.MessageWithUser
}

type MessageDeletedPayload struct {
	ID int64 `json:"id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server event stamped with the current time
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
