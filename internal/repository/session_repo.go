package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bulletin_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository persists server side sessions
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	Find(ctx context.Context, sid string) (*model.Session, error)
	Delete(ctx context.Context, sid string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	sql := `INSERT INTO session (sid, sess, expire) VALUES ($1, $2, $3)
            ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire`
	if _, err := r.db.Exec(ctx, sql, s.ID, data, s.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Find returns the live session with the given id, or nil if it is missing or expired
func (r *sessionRepository) Find(ctx context.Context, sid string) (*model.Session, error) {
	var (
		s    = &model.Session{ID: sid}
		data []byte
	)
	sql := `SELECT sess, expire FROM session WHERE sid = $1 AND expire > NOW()`
	if err := r.db.QueryRow(ctx, sql, sid).Scan(&data, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if err := json.Unmarshal(data, &s.Data); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sid, err)
	}
	return s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sid string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM session WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUser ends every session belonging to userID
func (r *sessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM session WHERE sess->>'userId' = $1`, userID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM session WHERE expire <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
