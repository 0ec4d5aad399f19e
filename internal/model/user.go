package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user
type Role int16

const (
	RoleUser  Role = 0
	RoleAdmin Role = 1
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

const (
	MaxUsernameLength = 64
	MaxEmailLength    = 120
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	PasswordHash *string   `json:"-"` // Do not expose password hash in JSON responses
	PasswordHint *string   `json:"-"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	AvatarURL    *string   `json:"avatarUrl"`
	DateJoined   time.Time `json:"dateJoined"`
	IsActive     bool      `json:"isActive"`
	PostCount    int       `json:"postCount"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the projection of a user that is safe to return to any client
type PublicUser struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	FirstName  *string   `json:"firstName"`
	LastName   *string   `json:"lastName"`
	AvatarURL  *string   `json:"avatarUrl"`
	Role       Role      `json:"role"`
	PostCount  int       `json:"postCount"`
	IsActive   bool      `json:"isActive"`
	DateJoined time.Time `json:"dateJoined"`
	Badge      Badge     `json:"badge"`
}

// Profile is the owner's view of their own account
type Profile struct {
	PublicUser
	PasswordHint *string `json:"passwordHint"`
}

// Public returns the public projection of u
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		AvatarURL:  u.AvatarURL,
		Role:       u.Role,
		PostCount:  u.PostCount,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
		Badge:      BadgeFor(u.PostCount),
	}
}

// Profile returns the private projection of u
func (u *User) Profile() Profile {
	return Profile{PublicUser: u.Public(), PasswordHint: u.PasswordHint}
}

// RegisterRequest is the body of a registration call
type RegisterRequest struct {
	Username        string  `json:"username" binding:"required"`
	Email           *string `json:"email"`
	Password        string  `json:"password" binding:"required"`
	ConfirmPassword string  `json:"confirmPassword" binding:"required"`
}

// LoginRequest is the body of a login call. Username may also hold an email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is used for partial profile updates
type UpdateProfileRequest struct {
	Email        *string `json:"email,omitempty"` // Pointers to allow partial updates
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	PasswordHint *string `json:"passwordHint,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
}

// Empty reports whether no field was supplied
func (r UpdateProfileRequest) Empty() bool {
	return r.Email == nil && r.FirstName == nil && r.LastName == nil && r.PasswordHint == nil && r.AvatarURL == nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type UpdateAvatarRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

type SetRoleRequest struct {
	Role *int `json:"role" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
