package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"
	"bulletin_board/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrWrongPassword     = model.NewAuthError("current password is incorrect")
	ErrEmptyNewPassword  = model.NewValidationError("new password is required", model.FieldError{Field: "newPassword", Message: "new password must not be empty"})
	ErrProfileEmailTaken = model.NewConflictError("email already registered")
)

// ImageFetcher downloads a remote image and normalizes it into an avatar
type ImageFetcher interface {
	FetchAndNormalizeImage(ctx context.Context, rawURL string) (*avatar.Image, error)
}

// ProfileService lets users manage their own account
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, imageURL string) (*model.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type profileService struct {
	userRepo repository.UserRepository
	fetcher  ImageFetcher
	avatars  avatar.Store
	remover  *userRemover
	log      *logger.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, sessions SessionManager, fetcher ImageFetcher, avatars avatar.Store, log *logger.Logger) ProfileService {
	return &profileService{
		userRepo: userRepo,
		fetcher:  fetcher,
		avatars:  avatars,
		remover:  &userRemover{userRepo: userRepo, sessions: sessions, avatars: avatars, log: log},
		log:      log,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
}

// UpdateProfile writes the supplied fields only. Email uniqueness is left to the store.
// A blank email removes it from the account.
func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Empty() {
		return findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" {
			if fe := validateEmail(email); fe != nil {
				return nil, model.NewValidationError(fe.Message, *fe)
			}
		}
		// blank clears the stored email
		req.Email = &email
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, ErrProfileEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyNewPassword
	}
	user, err := findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil || !utils.CheckPasswordHash(currentPassword, *user.PasswordHash) {
		return ErrWrongPassword
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}

// UpdateAvatar fetches imageURL, stores the normalized image and points the
// user at it. The previous stored avatar is removed on a best-effort basis.
func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, imageURL string) (*model.User, error) {
	user, err := findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
	if err != nil {
		return nil, err
	}

	img, err := s.fetcher.FetchAndNormalizeImage(ctx, imageURL)
	if err != nil {
		if avatar.IsClientError(err) {
			return nil, &model.Error{Kind: model.ErrValidation, Message: err.Error(),
				Fields: []model.FieldError{{Field: "imageUrl", Message: err.Error()}}}
		}
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}

	publicPath, err := s.avatars.Save(ctx, avatarName(userID, img.Ext), img)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, publicPath); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if user.AvatarURL != nil && *user.AvatarURL != publicPath {
		deleteOwnedAvatar(ctx, s.avatars, s.log, userID, *user.AvatarURL)
	}

	user.AvatarURL = &publicPath
	return user, nil
}

// DeleteAccount removes the caller's own account
func (s *profileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
	if err != nil {
		return err
	}
	return s.remover.remove(ctx, user)
}
