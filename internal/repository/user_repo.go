package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bulletin_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, password_hint, first_name, last_name, avatar_url,
	date_joined, is_active, post_count, role, created_at, updated_at`

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row, u *model.User) error {
	var role int16
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PasswordHint, &u.FirstName, &u.LastName, &u.AvatarURL,
		&u.DateJoined, &u.IsActive, &u.PostCount, &role, &u.CreatedAt, &u.UpdatedAt,
	)
	u.Role = model.Role(role)
	return err
}

// Create inserts a new user into the database. ID, timestamps and counters are filled from the row.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, email, password_hash, password_hint, first_name, last_name, is_active, post_count, role)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING ` + userColumns
	err := scanUser(r.db.QueryRow(ctx, sql,
		user.Username, user.Email, user.PasswordHash, user.PasswordHint, user.FirstName, user.LastName,
		user.IsActive, user.PostCount, int16(user.Role),
	), user)
	if err != nil {
		if pgErr, ok := isPgError(err, uniqueViolation); ok {
			return fmt.Errorf("%w: %s", model.ErrConflict, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	err := scanUser(r.db.QueryRow(ctx, sql, arg), user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error for this method's contract, service layer handles it
		}
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByUsername retrieves a user by exact username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := r.findOne(ctx, "username = $1", username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by exact email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.findOne(ctx, "email = $1", email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// List returns all users, most recently joined first
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY date_joined DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// UpdateProfile writes only the supplied fields and returns the updated row
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`UPDATE users SET updated_at = NOW()`)
	args := []interface{}{id}
	argCount := 2 // Start after id

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", column, argCount))
		args = append(args, *value)
		argCount++
	}
	if req.Email != nil && *req.Email == "" {
		queryBuilder.WriteString(", email = NULL")
	} else {
		set("email", req.Email)
	}
	set("first_name", req.FirstName)
	set("last_name", req.LastName)
	set("password_hint", req.PasswordHint)
	set("avatar_url", req.AvatarURL)

	queryBuilder.WriteString(` WHERE id = $1 RETURNING ` + userColumns)

	user := &model.User{}
	err := scanUser(r.db.QueryRow(ctx, queryBuilder.String(), args...), user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if pgErr, ok := isPgError(err, uniqueViolation); ok {
			return nil, fmt.Errorf("%w: %s", model.ErrConflict, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdatePassword stores a new password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateAvatar stores a new avatar reference
func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// UpdateRole changes a user's role. It reports false when the user does not exist.
func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, int16(role), id)
	if err != nil {
		return false, fmt.Errorf("failed to update role: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SetActive enables or disables an account. It reports false when the user does not exist.
func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return false, fmt.Errorf("failed to update active flag: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// Delete removes a user together with all of their messages
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user messages: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		deleted = cmdTag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}
