package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestPromoteSuperAdminDemotesOthersInOneTx(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE admin_users SET is_super_admin = FALSE WHERE id <> \$1 AND is_super_admin = TRUE`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE admin_users SET is_super_admin = TRUE WHERE id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.PromoteSuperAdmin(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteSuperAdminUnknownTargetRollsBack(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE admin_users SET is_super_admin = FALSE WHERE id <> \$1 AND is_super_admin = TRUE`).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE admin_users SET is_super_admin = TRUE WHERE id = \$1`).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.PromoteSuperAdmin(99)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsernameAbsentIsNotAnError(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`SELECT .+ FROM admin_users WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "is_super_admin", "is_active",
			"last_login_ip", "last_login_at", "created_at",
		}))

	user, err := repo.GetByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSuperAdmin(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM admin_users WHERE is_super_admin = TRUE LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "is_super_admin", "is_active",
			"last_login_ip", "last_login_at", "created_at",
		}).AddRow(1, "root", "root@example.com", "hash", true, true, "1.2.3.4", now, now))

	user, err := repo.GetSuperAdmin()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsSuperAdmin)
	assert.Equal(t, "root", user.Username)
	require.NotNil(t, user.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuperAdminExists(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SuperAdminExists()
	require.NoError(t, err)
	assert.True(t, exists)
}
