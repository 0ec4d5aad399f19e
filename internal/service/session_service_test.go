package service

import (
	"context"
	"testing"
	"time"

	"bulletin_board/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	repo := newFakeSessionRepo()
	m := NewSessionManager(repo, utils.NewSessionSigner(testSecret), time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	token, err := m.Start(ctx, userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 2*time.Second)

	s, err := m.Resolve(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, userID, s.Data.UserID)

	require.NoError(t, m.End(ctx, token.Value))
	_, err = m.Resolve(ctx, token.Value)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionManager_RejectsForeignSignature(t *testing.T) {
	repo := newFakeSessionRepo()
	m := NewSessionManager(repo, utils.NewSessionSigner(testSecret), time.Hour)
	other := NewSessionManager(repo, utils.NewSessionSigner("another-secret"), time.Hour)

	token, err := other.Start(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionManager_EndAllForUserAndPurge(t *testing.T) {
	repo := newFakeSessionRepo()
	m := NewSessionManager(repo, utils.NewSessionSigner(testSecret), time.Hour)
	ctx := context.Background()
	victim, bystander := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := m.Start(ctx, victim)
		require.NoError(t, err)
	}
	kept, err := m.Start(ctx, bystander)
	require.NoError(t, err)

	require.NoError(t, m.EndAllForUser(ctx, victim))
	assert.Equal(t, 1, repo.count())

	_, err = m.Resolve(ctx, kept.Value)
	assert.NoError(t, err)

	sm := m.(*sessionManager)
	sm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, err = m.Start(ctx, bystander)
	require.NoError(t, err)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, repo.count())
}

func TestSessionManager_EndAllForUserDropsLiveConnections(t *testing.T) {
	live := &recordingDisconnector{}
	m := NewSessionManager(newFakeSessionRepo(), utils.NewSessionSigner(testSecret), time.Hour, WithLiveDisconnect(live))
	userID := uuid.New()

	require.NoError(t, m.EndAllForUser(context.Background(), userID))
	assert.Equal(t, []uuid.UUID{userID}, live.disconnected())

	// without the option only sessions are removed
	plain := NewSessionManager(newFakeSessionRepo(), utils.NewSessionSigner(testSecret), time.Hour)
	assert.NoError(t, plain.EndAllForUser(context.Background(), userID))
}

func TestNewSessionManager_DefaultTTL(t *testing.T) {
	m := NewSessionManager(newFakeSessionRepo(), utils.NewSessionSigner(testSecret), 0).(*sessionManager)
	assert.Equal(t, 7*24*time.Hour, m.ttl)
}
