package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

func newSessionRepoMock(t *testing.T) (SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db), mock
}

func TestSessionRoundTrip(t *testing.T) {
	repo, mock := newSessionRepoMock(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("sess-a", "c-1", models.UserTypeClient, "boot-1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(&models.Session{
		ID:             "sess-a",
		UserID:         "c-1",
		UserType:       models.UserTypeClient,
		BootGeneration: "boot-1",
		CreatedAt:      now,
		LastSeenAt:     now,
	}))

	mock.ExpectQuery(`SELECT .+ FROM sessions WHERE id = \$1`).
		WithArgs("sess-a").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "user_type", "boot_generation", "created_at", "last_seen_at",
		}).AddRow("sess-a", "c-1", "client", "boot-1", now, now))

	session, err := repo.Get("sess-a")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "boot-1", session.BootGeneration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionGetAbsentIsNotAnError(t *testing.T) {
	repo, mock := newSessionRepoMock(t)

	mock.ExpectQuery(`SELECT .+ FROM sessions WHERE id = \$1`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "user_type", "boot_generation", "created_at", "last_seen_at",
		}))

	session, err := repo.Get("gone")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionDeleteOlderThan(t *testing.T) {
	repo, mock := newSessionRepoMock(t)
	cutoff := time.Now().Add(-24 * time.Hour)

	mock.ExpectExec(`DELETE FROM sessions WHERE last_seen_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteOlderThan(cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
