package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

type ClientRepository interface {
	Create(client *models.Client) error
	GetByClientID(clientID string) (*models.Client, error)
	GetByPhone(phone string) (*models.Client, error)
	GetByEmail(email string) (*models.Client, error)
	UpdatePassword(clientID string, passwordHash string) error

	// Session back-reference handling for single-session enforcement.
	// UpdateActiveSession overwrites the pointer unconditionally (last
	// write wins); ClearActiveSession is idempotent.
	UpdateActiveSession(clientID string, sessionID string) error
	ClearActiveSession(clientID string) error
}

type clientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{DB: db}
}

func (r *clientRepository) Create(client *models.Client) error {
	const q = `
		INSERT INTO clients (client_id, full_name, phone, email, password_hash, location, status, created_at)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, NULLIF($6,''), $7, $8)
	`
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now()
	}
	if _, err := r.DB.Exec(q,
		client.ClientID, client.FullName, client.Phone, client.Email,
		client.PasswordHash, client.Location, client.Status, client.CreatedAt,
	); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

const clientColumns = `
	client_id, full_name, COALESCE(phone, ''), COALESCE(email, ''),
	password_hash, COALESCE(location, ''), status,
	COALESCE(active_session_id, ''), created_at
`

func scanClient(row *sql.Row) (*models.Client, error) {
	c := &models.Client{}
	err := row.Scan(
		&c.ClientID, &c.FullName, &c.Phone, &c.Email,
		&c.PasswordHash, &c.Location, &c.Status,
		&c.ActiveSessionID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) GetByClientID(clientID string) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1`
	c, err := scanClient(r.DB.QueryRow(q, clientID))
	if err != nil {
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return c, nil
}

func (r *clientRepository) GetByPhone(phone string) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1`
	c, err := scanClient(r.DB.QueryRow(q, phone))
	if err != nil {
		return nil, fmt.Errorf("get client by phone: %w", err)
	}
	return c, nil
}

func (r *clientRepository) GetByEmail(email string) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`
	c, err := scanClient(r.DB.QueryRow(q, email))
	if err != nil {
		return nil, fmt.Errorf("get client by email: %w", err)
	}
	return c, nil
}

func (r *clientRepository) UpdatePassword(clientID string, passwordHash string) error {
	const q = `UPDATE clients SET password_hash = $1 WHERE client_id = $2`
	if _, err := r.DB.Exec(q, passwordHash, clientID); err != nil {
		return fmt.Errorf("update client password: %w", err)
	}
	return nil
}

func (r *clientRepository) UpdateActiveSession(clientID string, sessionID string) error {
	const q = `UPDATE clients SET active_session_id = $1 WHERE client_id = $2`
	if _, err := r.DB.Exec(q, sessionID, clientID); err != nil {
		return fmt.Errorf("update active session: %w", err)
	}
	return nil
}

func (r *clientRepository) ClearActiveSession(clientID string) error {
	const q = `UPDATE clients SET active_session_id = NULL WHERE client_id = $1`
	if _, err := r.DB.Exec(q, clientID); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
