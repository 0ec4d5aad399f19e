package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"

	"github.com/google/uuid"
)

// findUser loads a user and reports missing as the supplied error
func findUser(ctx context.Context, repo repository.UserRepository, id uuid.UUID, missing error) (*model.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, missing
	}
	return user, nil
}

// userRemover deletes an account together with everything hanging off it
type userRemover struct {
	userRepo repository.UserRepository
	sessions SessionManager
	avatars  avatar.Store
	log      *logger.Logger
}

// remove deletes the user row and its messages, then cleans up the avatar and
// sessions. Cleanup failures are logged and do not fail the deletion.
func (r *userRemover) remove(ctx context.Context, user *model.User) error {
	deleted, err := r.userRepo.Delete(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	if user.AvatarURL != nil {
		deleteOwnedAvatar(ctx, r.avatars, r.log, user.ID, *user.AvatarURL)
	}
	if err := r.sessions.EndAllForUser(ctx, user.ID); err != nil {
		r.log.Warn("failed to end sessions of deleted user", "user_id", user.ID, "error", err)
	}
	return nil
}

// avatarName is the stored name of a new avatar for userID
func avatarName(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s-%d%s", userID, time.Now().UnixNano(), ext)
}

// ownsAvatar reports whether publicPath names a file stored for userID.
// avatar_url is user writable, so anything else must not be deleted on their behalf.
func ownsAvatar(userID uuid.UUID, publicPath string) bool {
	return strings.HasPrefix(path.Base(publicPath), userID.String()+"-")
}

// deleteOwnedAvatar removes publicPath when it belongs to userID. Failures are logged.
func deleteOwnedAvatar(ctx context.Context, store avatar.Store, log *logger.Logger, userID uuid.UUID, publicPath string) {
	if store == nil || !ownsAvatar(userID, publicPath) {
		return
	}
	if err := store.Delete(ctx, publicPath); err != nil {
		log.Warn("failed to delete avatar", "user_id", userID, "avatar", publicPath, "error", err)
	}
}
