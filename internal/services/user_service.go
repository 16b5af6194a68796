package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
)

// ErrSuperAdminExists blocks signup once the single super-admin account
// has been created.
var ErrSuperAdminExists = errors.New("super-admin already exists")

type UserService interface {
	// CreateSuperAdmin creates the first (and only) dashboard account.
	// Allowed only while no super-admin exists.
	CreateSuperAdmin(req *models.SignupRequest) (*models.AdminUser, error)
	GetByUsername(username string) (*models.AdminUser, error)
	GetByID(id int) (*models.AdminUser, error)

	// PromoteSuperAdmin transfers the super-admin flag to userID,
	// demoting every other holder in the same transaction.
	PromoteSuperAdmin(userID int) error
}

type userService struct {
	repo repositories.UserRepository
	auth AuthService
}

func NewUserService(repo repositories.UserRepository, auth AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

func (s *userService) CreateSuperAdmin(req *models.SignupRequest) (*models.AdminUser, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	exists, err := s.repo.SuperAdminExists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSuperAdminExists
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.AdminUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsSuperAdmin: true,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(username string) (*models.AdminUser, error) {
	return s.repo.GetByUsername(username)
}

func (s *userService) GetByID(id int) (*models.AdminUser, error) {
	return s.repo.GetByID(id)
}

func (s *userService) PromoteSuperAdmin(userID int) error {
	return s.repo.PromoteSuperAdmin(userID)
}
