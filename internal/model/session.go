package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a session stays valid after login
const SessionTTL = 7 * 24 * time.Hour

// SessionData is the serialized state kept in the session table
type SessionData struct {
	UserID uuid.UUID `json:"userId"`
}

// Session is a server side session row
type Session struct {
	ID        string
	Data      SessionData
	ExpiresAt time.Time
}

// SessionToken is the signed cookie value handed to the client
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
}
