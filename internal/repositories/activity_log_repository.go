package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

type ActivityLogRepository interface {
	Create(entry *models.ActivityLog) error
}

type activityLogRepository struct {
	DB *sql.DB
}

func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{DB: db}
}

func (r *activityLogRepository) Create(entry *models.ActivityLog) error {
	const q = `
		INSERT INTO client_activity_logs (client_id, action, details, created_at)
		VALUES (NULLIF($1,''), $2, $3, $4)
		RETURNING id
	`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	details := []byte("{}")
	if entry.Details != nil {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
		details = b
	}
	if err := r.DB.QueryRow(q, entry.ClientID, entry.Action, details, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}
