package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

type SessionRepository interface {
	Create(session *models.Session) error
	Get(id string) (*models.Session, error)
	// Delete is idempotent: removing an absent session is not an error.
	Delete(id string) error
	Touch(id string, at time.Time) error
	// DeleteOlderThan removes sessions not seen since the cutoff.
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{DB: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, user_type, boot_generation, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.DB.Exec(q,
		session.ID, session.UserID, session.UserType,
		session.BootGeneration, session.CreatedAt, session.LastSeenAt,
	); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(id string) (*models.Session, error) {
	const q = `
		SELECT id, user_id, user_type, boot_generation, created_at, last_seen_at
		FROM sessions
		WHERE id = $1
	`
	s := &models.Session{}
	err := r.DB.QueryRow(q, id).Scan(
		&s.ID, &s.UserID, &s.UserType, &s.BootGeneration, &s.CreatedAt, &s.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Touch(id string, at time.Time) error {
	if _, err := r.DB.Exec(`UPDATE sessions SET last_seen_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM sessions WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
