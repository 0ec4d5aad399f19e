package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bulletin_board/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)

	msg, err := env.msgs.Create(ctx, owner.ID, "hello board")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello board", msg.Content)
	assert.Equal(t, owner.ID, msg.UserID)
	assert.Equal(t, 1, env.users.get(owner.ID).PostCount)

	require.Len(t, env.notifier.created, 1)
	assert.Equal(t, msg.ID, env.notifier.created[0].ID)
	assert.Equal(t, "bob", env.notifier.created[0].User.Username)
}

func TestMessageService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", ErrEmptyMessage},
		{"whitespace only", " \n\t ", ErrEmptyMessage},
		{"501 characters", strings.Repeat("a", 501), ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.msgs.Create(context.Background(), owner.ID, tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, model.ErrValidation))
		})
	}
	assert.Equal(t, 0, env.users.get(owner.ID).PostCount)
	assert.Empty(t, env.notifier.created)
}

func TestMessageService_Create_LengthCountsCharacters(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)

	// 500 multi-byte characters are well over 500 bytes
	_, err := env.msgs.Create(context.Background(), owner.ID, strings.Repeat("é", 500))
	assert.NoError(t, err)
}

func TestMessageService_Create_WithoutNotifier(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMessageService(env.messages, env.users, nil, nil)
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)

	_, err := svc.Create(context.Background(), owner.ID, "quiet")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), 1, owner.ID))
}

func TestMessageService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)
	for i := 0; i < 25; i++ {
		_, err := env.msgs.Create(ctx, owner.ID, "post")
		require.NoError(t, err)
	}

	page, err := env.msgs.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Messages, model.DefaultMessageLimit)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.True(t, page.Messages[0].Timestamp.After(page.Messages[1].Timestamp))
	assert.Equal(t, model.BadgeSilver, page.Messages[0].User.Badge.Tier)

	page, err = env.msgs.List(ctx, 10, 20)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 5)

	page, err = env.msgs.List(ctx, -3, -1)
	require.NoError(t, err)
	assert.Len(t, page.Messages, model.DefaultMessageLimit)
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner delete restores post count", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "bob", "pw", model.RoleUser)
		msg, err := env.msgs.Create(ctx, owner.ID, "oops")
		require.NoError(t, err)

		require.NoError(t, env.msgs.Delete(ctx, msg.ID, owner.ID))
		assert.Equal(t, 0, env.users.get(owner.ID).PostCount)
		assert.Equal(t, []int64{msg.ID}, env.notifier.deleted)
	})

	t.Run("admin delete leaves post count", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "bob", "pw", model.RoleUser)
		admin := env.seedUser(t, "admin", "pw", model.RoleAdmin)
		msg, err := env.msgs.Create(ctx, owner.ID, "spam")
		require.NoError(t, err)

		require.NoError(t, env.msgs.Delete(ctx, msg.ID, admin.ID))
		assert.Equal(t, 1, env.users.get(owner.ID).PostCount)
		found, _ := env.messages.FindByID(ctx, msg.ID)
		assert.Nil(t, found)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "bob", "pw", model.RoleUser)
		stranger := env.seedUser(t, "eve", "pw", model.RoleUser)
		msg, err := env.msgs.Create(ctx, owner.ID, "mine")
		require.NoError(t, err)

		err = env.msgs.Delete(ctx, msg.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrMessageForbidden)
		assert.True(t, errors.Is(err, model.ErrForbidden))
		assert.Equal(t, 1, env.users.get(owner.ID).PostCount)
	})

	t.Run("missing message", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.msgs.Delete(ctx, 12345, uuid.New())
		assert.ErrorIs(t, err, ErrMessageNotFound)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func TestMessageService_ConcurrentCreates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "bob", "pw", model.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.msgs.Create(context.Background(), owner.ID, "race")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, env.users.get(owner.ID).PostCount)
}
