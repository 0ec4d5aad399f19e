package service

import (
	"testing"
	"time"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/utils"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

type testEnv struct {
	users    *fakeUserRepo
	messages *fakeMessageRepo
	sessRepo *fakeSessionRepo
	sessions SessionManager
	notifier *recordingNotifier
	live     *recordingDisconnector
	avatars  *fakeAvatarStore
	fetcher  *fakeFetcher

	auth    AuthService
	msgs    MessageService
	admin   AdminService
	profile ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()
	env := &testEnv{
		users:    newFakeUserRepo(),
		sessRepo: newFakeSessionRepo(),
		notifier: &recordingNotifier{},
		live:     &recordingDisconnector{},
		avatars:  newFakeAvatarStore(),
		fetcher:  &fakeFetcher{},
	}
	env.messages = newFakeMessageRepo(env.users)
	env.sessions = NewSessionManager(env.sessRepo, utils.NewSessionSigner(testSecret), time.Hour, WithLiveDisconnect(env.live))
	env.auth = NewAuthService(env.users, env.sessions, "root", log)
	env.msgs = NewMessageService(env.messages, env.users, env.notifier, log)
	env.admin = NewAdminService(env.users, env.sessions, env.avatars, log)
	env.profile = NewProfileService(env.users, env.sessions, env.fetcher, env.avatars, log)
	return env
}

// seedUser stores an active user with a bcrypt hash of password
func (e *testEnv) seedUser(t *testing.T, username, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	email := username + "@example.com"
	return e.users.add(&model.User{
		Username:     username,
		Email:        &email,
		PasswordHash: &hash,
		IsActive:     true,
		Role:         role,
	})
}

func strPtr(s string) *string { return &s }
