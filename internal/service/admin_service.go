package service

import (
	"context"
	"fmt"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrAdminRequired  = model.NewForbiddenError("admin access required")
	ErrUserNotFound   = model.NewNotFoundError("user not found")
	ErrInvalidRole    = model.NewValidationError("invalid role", model.FieldError{Field: "role", Message: "role must be 0 (user) or 1 (admin)"})
	ErrDeleteSelf     = model.NewValidationError("cannot delete your own account from the admin panel")
	ErrDeactivateSelf = model.NewValidationError("cannot deactivate your own account")
)

// AdminService provides user management for administrators
type AdminService interface {
	RequireAdmin(ctx context.Context, callerID uuid.UUID) error
	ListUsers(ctx context.Context) ([]model.PublicUser, error)
	SetRole(ctx context.Context, targetID uuid.UUID, role model.Role) error
	SetActive(ctx context.Context, callerID, targetID uuid.UUID, active bool) error
	DeleteUser(ctx context.Context, callerID, targetID uuid.UUID) error
}

type adminService struct {
	userRepo repository.UserRepository
	sessions SessionManager
	remover  *userRemover
	log      *logger.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(userRepo repository.UserRepository, sessions SessionManager, avatars avatar.Store, log *logger.Logger) AdminService {
	return &adminService{
		userRepo: userRepo,
		sessions: sessions,
		remover:  &userRemover{userRepo: userRepo, sessions: sessions, avatars: avatars, log: log},
		log:      log,
	}
}

// RequireAdmin re-reads the caller so a demotion takes effect on the next request
func (s *adminService) RequireAdmin(ctx context.Context, callerID uuid.UUID) error {
	caller, err := findUser(ctx, s.userRepo, callerID, ErrNotAuthenticated)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// ListUsers returns every user, most recently joined first
func (s *adminService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *adminService) SetRole(ctx context.Context, targetID uuid.UUID, role model.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	found, err := s.userRepo.UpdateRole(ctx, targetID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}

// SetActive enables or disables an account. Disabling ends the user's sessions
// and live connections right away.
func (s *adminService) SetActive(ctx context.Context, callerID, targetID uuid.UUID, active bool) error {
	if callerID == targetID && !active {
		return ErrDeactivateSelf
	}
	found, err := s.userRepo.SetActive(ctx, targetID, active)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}
	if !active {
		if err := s.sessions.EndAllForUser(ctx, targetID); err != nil {
			s.log.Warn("failed to end sessions of deactivated user", "user_id", targetID, "error", err)
		}
	}
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return ErrDeleteSelf
	}
	target, err := findUser(ctx, s.userRepo, targetID, ErrUserNotFound)
	if err != nil {
		return err
	}
	return s.remover.remove(ctx, target)
}
