package repository

import (
	"context"
	"errors"
	"fmt"

	"bulletin_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MessageRepository defines operations for message data
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id int64) (*model.Message, error)
	List(ctx context.Context, limit, offset int) ([]model.MessageWithUser, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64, decrementOwner bool) (bool, error)
}

type messageRepository struct {
	db DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create stores a message and bumps its author's post count in the same transaction
func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO messages (content, user_id) VALUES ($1, $2) RETURNING id, timestamp`
		err := tx.QueryRow(ctx, sql, msg.Content, msg.UserID).Scan(&msg.ID, &msg.Timestamp)
		if err != nil {
			if _, ok := isPgError(err, foreignKeyViolation); ok {
				return fmt.Errorf("%w: author %s", model.ErrNotFound, msg.UserID)
			}
			return fmt.Errorf("failed to create message: %w", err)
		}

		// post_count = post_count + 1 is evaluated under the row lock, so concurrent posts never lose an increment
		if _, err := tx.Exec(ctx, `UPDATE users SET post_count = post_count + 1 WHERE id = $1`, msg.UserID); err != nil {
			return fmt.Errorf("failed to increment post count: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a message by its ID
func (r *messageRepository) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	msg := &model.Message{}
	sql := `SELECT id, content, timestamp, user_id FROM messages WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&msg.ID, &msg.Content, &msg.Timestamp, &msg.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find message by ID: %w", err)
	}
	return msg, nil
}

// List returns a page of messages with their authors, newest first
func (r *messageRepository) List(ctx context.Context, limit, offset int) ([]model.MessageWithUser, error) {
	sql := `SELECT m.id, m.content, m.timestamp, m.user_id,
                   u.username, u.first_name, u.last_name, u.avatar_url, u.date_joined, u.is_active, u.post_count, u.role
            FROM messages m
            JOIN users u ON u.id = m.user_id
            ORDER BY m.timestamp DESC, m.id DESC
            LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []model.MessageWithUser{}
	for rows.Next() {
		var (
			m    model.Message
			u    model.User
			role int16
		)
		if err := rows.Scan(
			&m.ID, &m.Content, &m.Timestamp, &m.UserID,
			&u.Username, &u.FirstName, &u.LastName, &u.AvatarURL, &u.DateJoined, &u.IsActive, &u.PostCount, &role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		u.ID = m.UserID
		u.Role = model.Role(role)
		messages = append(messages, model.MessageWithUser{Message: m, User: u.Public()})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// Count returns the total number of messages
func (r *messageRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return total, nil
}

// Delete removes a message. When decrementOwner is set the author's post count
// drops by one, never below zero. It reports false when no such message exists.
func (r *messageRepository) Delete(ctx context.Context, id int64, decrementOwner bool) (bool, error) {
	var deleted bool
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var owner uuid.UUID
		err := tx.QueryRow(ctx, `DELETE FROM messages WHERE id = $1 RETURNING user_id`, id).Scan(&owner)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to delete message: %w", err)
		}
		deleted = true

		if !decrementOwner {
			return nil
		}
		sql := `UPDATE users SET post_count = GREATEST(post_count - 1, 0) WHERE id = $1`
		if _, err := tx.Exec(ctx, sql, owner); err != nil {
			return fmt.Errorf("failed to decrement post count: %w", err)
		}
		return nil
	})
	return deleted, err
}
