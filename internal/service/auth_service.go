package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"
	"bulletin_board/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken      = model.NewConflictError("username already exists")
	ErrEmailTaken         = model.NewConflictError("email already registered")
	ErrPasswordMismatch   = model.NewValidationError("passwords do not match", model.FieldError{Field: "confirmPassword", Message: "passwords do not match"})
	ErrInvalidCredentials = model.NewAuthError("invalid username or password")
	ErrAccountDisabled    = model.NewAuthError("account is disabled")
	ErrNotAuthenticated   = model.NewAuthError("not authenticated")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, *model.SessionToken, error)
	Login(ctx context.Context, identifier, password string) (*model.User, *model.SessionToken, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	sessions     SessionManager
	initialAdmin string
	log          *logger.Logger
}

// NewAuthService creates a new AuthService. A registration whose username equals
// initialAdmin is granted the admin role.
func NewAuthService(userRepo repository.UserRepository, sessions SessionManager, initialAdmin string, log *logger.Logger) AuthService {
	return &authService{
		userRepo:     userRepo,
		sessions:     sessions,
		initialAdmin: initialAdmin,
		log:          log,
	}
}

// Register creates a new user account and opens a session for it
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *model.SessionToken, error) {
	var fields []model.FieldError
	if fe := validateUsername(req.Username); fe != nil {
		fields = append(fields, *fe)
	}
	email := normalizeEmail(req.Email)
	if email != nil {
		if fe := validateEmail(*email); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if req.Password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "password is required"})
	}
	if len(fields) > 0 {
		return nil, nil, model.NewValidationError("invalid registration", fields...)
	}
	if req.Password != req.ConfirmPassword {
		return nil, nil, ErrPasswordMismatch
	}

	existingUser, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, nil, ErrUsernameTaken
	}
	if email != nil {
		existingUser, err = s.userRepo.FindByEmail(ctx, *email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing email: %w", err)
		}
		if existingUser != nil {
			return nil, nil, ErrEmailTaken
		}
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userRole := model.RoleUser
	if s.initialAdmin != "" && req.Username == s.initialAdmin {
		userRole = model.RoleAdmin
		s.log.Info("registering initial admin", "username", req.Username)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: &hashedPassword,
		IsActive:     true,
		PostCount:    0,
		Role:         userRole,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, model.ErrConflict) {
			return nil, nil, model.NewConflictError("username or email already exists")
		}
		return nil, nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return user, nil, fmt.Errorf("user created, but failed to start session: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user by username, or by email when the identifier looks like one
func (s *authService) Login(ctx context.Context, identifier, password string) (*model.User, *model.SessionToken, error) {
	user, err := s.userRepo.FindByUsername(ctx, identifier)
	if err != nil {
		return nil, nil, fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil && strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
		if err != nil {
			return nil, nil, fmt.Errorf("error finding user by email: %w", err)
		}
	}
	if user == nil || user.PasswordHash == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	token, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
	return user, token, nil
}

// Logout destroys the session named by token, if any
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

// Authenticate resolves a session cookie to its active user. Sessions of
// deactivated or deleted users are destroyed.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, sess.Data.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil || !user.IsActive {
		if err := s.sessions.End(ctx, token); err != nil {
			s.log.Warn("failed to end session of unavailable user", "error", err)
		}
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// CurrentUser re-reads the authenticated user from the store
func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return findUser(ctx, s.userRepo, userID, ErrNotAuthenticated)
}
