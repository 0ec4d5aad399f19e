package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"
	"bulletin_board/internal/utils"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a cookie does not resolve to a live session
var ErrNoSession = errors.New("no active session")

// SessionManager issues, resolves and destroys server side sessions
type SessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (*model.SessionToken, error)
	Resolve(ctx context.Context, token string) (*model.Session, error)
	End(ctx context.Context, token string) error
	EndAllForUser(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// LiveDisconnector closes every live feed connection held by a user
type LiveDisconnector interface {
	DisconnectUser(userID uuid.UUID)
}

type sessionManager struct {
	repo   repository.SessionRepository
	signer *utils.SessionSigner
	ttl    time.Duration
	now    func() time.Time
	live   LiveDisconnector
}

// SessionOption customizes a SessionManager
type SessionOption func(*sessionManager)

// WithLiveDisconnect makes EndAllForUser also drop the user's live connections
func WithLiveDisconnect(d LiveDisconnector) SessionOption {
	return func(m *sessionManager) { m.live = d }
}

// NewSessionManager creates a SessionManager whose sessions live for ttl
func NewSessionManager(repo repository.SessionRepository, signer *utils.SessionSigner, ttl time.Duration, opts ...SessionOption) SessionManager {
	if ttl <= 0 {
		ttl = model.SessionTTL
	}
	m := &sessionManager{repo: repo, signer: signer, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start persists a fresh session for userID and returns its signed cookie value
func (m *sessionManager) Start(ctx context.Context, userID uuid.UUID) (*model.SessionToken, error) {
	s := &model.Session{
		ID:        uuid.NewString(),
		Data:      model.SessionData{UserID: userID},
		ExpiresAt: m.now().Add(m.ttl).Truncate(time.Second),
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	value, err := m.signer.Sign(s.ID, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &model.SessionToken{Value: value, ExpiresAt: s.ExpiresAt}, nil
}

// Resolve verifies the cookie value and loads the session it names
func (m *sessionManager) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sid, err := m.signer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	s, err := m.repo.Find(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// End destroys the session named by token. Unknown or invalid tokens are ignored.
func (m *sessionManager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sid, err := m.signer.Verify(token)
	if err != nil {
		return nil
	}
	return m.repo.Delete(ctx, sid)
}

// EndAllForUser logs the user out everywhere, live feed included
func (m *sessionManager) EndAllForUser(ctx context.Context, userID uuid.UUID) error {
	if m.live != nil {
		m.live.DisconnectUser(userID)
	}
	_, err := m.repo.DeleteByUser(ctx, userID)
	return err
}

func (m *sessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}
