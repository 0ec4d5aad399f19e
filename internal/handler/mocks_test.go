package handler

import (
	"context"

	"bulletin_board/internal/middleware"
	"bulletin_board/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *model.SessionToken, error) {
	args := m.Called(ctx, req)
	return userArg(args, 0), tokenArg(args, 1), args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, identifier, password string) (*model.User, *model.SessionToken, error) {
	args := m.Called(ctx, identifier, password)
	return userArg(args, 0), tokenArg(args, 1), args.Error(2)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	return userArg(args, 0), args.Error(1)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

type mockMessageService struct{ mock.Mock }

func (m *mockMessageService) List(ctx context.Context, limit, offset int) (*model.MessagePage, error) {
	args := m.Called(ctx, limit, offset)
	if p := args.Get(0); p != nil {
		return p.(*model.MessagePage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageService) Create(ctx context.Context, userID uuid.UUID, content string) (*model.Message, error) {
	args := m.Called(ctx, userID, content)
	if msg := args.Get(0); msg != nil {
		return msg.(*model.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageService) Delete(ctx context.Context, messageID int64, requesterID uuid.UUID) error {
	return m.Called(ctx, messageID, requesterID).Error(0)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) RequireAdmin(ctx context.Context, callerID uuid.UUID) error {
	return m.Called(ctx, callerID).Error(0)
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]model.PublicUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) SetRole(ctx context.Context, targetID uuid.UUID, role model.Role) error {
	return m.Called(ctx, targetID, role).Error(0)
}

func (m *mockAdminService) SetActive(ctx context.Context, callerID, targetID uuid.UUID, active bool) error {
	return m.Called(ctx, callerID, targetID, active).Error(0)
}

func (m *mockAdminService) DeleteUser(ctx context.Context, callerID, targetID uuid.UUID) error {
	return m.Called(ctx, callerID, targetID).Error(0)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	return userArg(args, 0), args.Error(1)
}

func (m *mockProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

func (m *mockProfileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, imageURL string) (*model.User, error) {
	args := m.Called(ctx, userID, imageURL)
	return userArg(args, 0), args.Error(1)
}

func (m *mockProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func userArg(args mock.Arguments, i int) *model.User {
	if u := args.Get(i); u != nil {
		return u.(*model.User)
	}
	return nil
}

func tokenArg(args mock.Arguments, i int) *model.SessionToken {
	if t := args.Get(i); t != nil {
		return t.(*model.SessionToken)
	}
	return nil
}

// fakeAuthMW binds userID as the authenticated caller
func fakeAuthMW(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthUserKey, userID)
		c.Next()
	}
}

func passMW(c *gin.Context) { c.Next() }

type pingerFunc func() error

func (f pingerFunc) Ping(context.Context) error { return f() }
