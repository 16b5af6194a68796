package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

func newUserFixture(t *testing.T) (*fakeUserRepo, UserService) {
	t.Helper()
	users := newFakeUserRepo()
	auth := NewAuthService(users, newFakeClientRepo(), newFakeSessionRepo(),
		NewSingleSessionService(newFakeClientRepo(), newFakeSessionRepo(), nil, nil, nil),
		nil, "boot-1")
	return users, NewUserService(users, auth)
}

func TestCreateSuperAdmin(t *testing.T) {
	users, svc := newUserFixture(t)

	user, err := svc.CreateSuperAdmin(&models.SignupRequest{
		Username: "root",
		Email:    "root@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.True(t, user.IsSuperAdmin)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret-pass", user.PasswordHash, "password must be stored hashed")

	exists, err := users.SuperAdminExists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateSuperAdminGateClosesAfterFirst(t *testing.T) {
	_, svc := newUserFixture(t)

	_, err := svc.CreateSuperAdmin(&models.SignupRequest{
		Username: "root", Email: "root@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)

	_, err = svc.CreateSuperAdmin(&models.SignupRequest{
		Username: "second", Email: "second@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, ErrSuperAdminExists)
}

func TestCreateSuperAdminValidation(t *testing.T) {
	_, svc := newUserFixture(t)

	_, err := svc.CreateSuperAdmin(&models.SignupRequest{Username: " ", Email: "a@b.c", Password: "x"})
	assert.Error(t, err)
	_, err = svc.CreateSuperAdmin(&models.SignupRequest{Username: "root", Email: "a@b.c", Password: ""})
	assert.Error(t, err)
}
