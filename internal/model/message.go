package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxMessageLength    = 500
	DefaultMessageLimit = 20
)

// Message is a short text post on the board
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	UserID    uuid.UUID `json:"userId"`
}

// MessageWithUser is a message joined with its owner's public profile
type MessageWithUser struct {
	Message
	User PublicUser `json:"user"`
}

// MessagePage is one page of the message board
type MessagePage struct {
	Messages   []MessageWithUser `json:"messages"`
	TotalCount int64             `json:"totalCount"`
}

// CreateMessageRequest is used for posting a new message
type CreateMessageRequest struct {
	Content string `json:"content"`
}
