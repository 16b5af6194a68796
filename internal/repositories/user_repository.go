package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

// ErrInvariantViolation means the single-super-admin multi-row update could
// not be applied atomically. Callers must treat it as fatal and must not
// retry: a blind retry could demote the wrong row twice.
var ErrInvariantViolation = errors.New("super-admin invariant violation")

type UserRepository interface {
	Create(user *models.AdminUser) error
	GetByID(id int) (*models.AdminUser, error)
	GetByUsername(username string) (*models.AdminUser, error)
	GetSuperAdmin() (*models.AdminUser, error)
	SuperAdminExists() (bool, error)
	UpdatePassword(userID int, passwordHash string) error
	UpdateLastLogin(userID int, ip string, at time.Time) error

	// PromoteSuperAdmin atomically makes userID the only super-admin:
	// every other row is demoted in the same transaction.
	PromoteSuperAdmin(userID int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.AdminUser) error {
	const q = `
		INSERT INTO admin_users (username, email, password_hash, is_super_admin, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := r.DB.QueryRow(q,
		user.Username, user.Email, user.PasswordHash, user.IsSuperAdmin, user.IsActive, user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}

const adminUserColumns = `
	id, username, email, password_hash, is_super_admin, is_active,
	COALESCE(last_login_ip, ''), last_login_at, created_at
`

func scanAdminUser(row *sql.Row) (*models.AdminUser, error) {
	u := &models.AdminUser{}
	var lastLoginAt sql.NullTime
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsSuperAdmin, &u.IsActive,
		&u.LastLoginIP, &lastLoginAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.AdminUser, error) {
	const q = `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = $1`
	u, err := scanAdminUser(r.DB.QueryRow(q, id))
	if err != nil {
		return nil, fmt.Errorf("get admin user by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(username string) (*models.AdminUser, error) {
	const q = `SELECT ` + adminUserColumns + ` FROM admin_users WHERE username = $1`
	u, err := scanAdminUser(r.DB.QueryRow(q, username))
	if err != nil {
		return nil, fmt.Errorf("get admin user by username: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetSuperAdmin() (*models.AdminUser, error) {
	const q = `SELECT ` + adminUserColumns + ` FROM admin_users WHERE is_super_admin = TRUE LIMIT 1`
	u, err := scanAdminUser(r.DB.QueryRow(q))
	if err != nil {
		return nil, fmt.Errorf("get super admin: %w", err)
	}
	return u, nil
}

func (r *userRepository) SuperAdminExists() (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM admin_users WHERE is_super_admin = TRUE)`
	var exists bool
	if err := r.DB.QueryRow(q).Scan(&exists); err != nil {
		return false, fmt.Errorf("super admin exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	const q = `UPDATE admin_users SET password_hash = $1 WHERE id = $2`
	if _, err := r.DB.Exec(q, passwordHash, userID); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(userID int, ip string, at time.Time) error {
	const q = `UPDATE admin_users SET last_login_ip = $1, last_login_at = $2 WHERE id = $3`
	if _, err := r.DB.Exec(q, ip, at, userID); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *userRepository) PromoteSuperAdmin(userID int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("promote super admin: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE admin_users SET is_super_admin = FALSE WHERE id <> $1 AND is_super_admin = TRUE`, userID); err != nil {
		return fmt.Errorf("%w: demote others: %v", ErrInvariantViolation, err)
	}
	res, err := tx.Exec(`UPDATE admin_users SET is_super_admin = TRUE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: promote target: %v", ErrInvariantViolation, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: target user %d not found", ErrInvariantViolation, userID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrInvariantViolation, err)
	}
	return nil
}
