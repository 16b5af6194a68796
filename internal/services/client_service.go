package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
)

var (
	ErrFieldsRequired  = errors.New("full name, phone, and password are required")
	ErrPhoneRegistered = errors.New("phone already registered")
	ErrEmailRegistered = errors.New("email already registered")
)

type ClientService interface {
	// Signup creates a portal account. Duplicate phone/email checks run
	// first for clearer feedback; the unique constraints still back them.
	Signup(req *models.ClientSignupRequest) (*models.Client, error)
	GetByClientID(clientID string) (*models.Client, error)
}

type clientService struct {
	repo     repositories.ClientRepository
	auth     AuthService
	activity ActivityService
}

func NewClientService(repo repositories.ClientRepository, auth AuthService, activity ActivityService) ClientService {
	return &clientService{repo: repo, auth: auth, activity: activity}
}

func (s *clientService) Signup(req *models.ClientSignupRequest) (*models.Client, error) {
	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)
	email := strings.TrimSpace(req.Email)
	if fullName == "" || phone == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}

	if existing, err := s.repo.GetByPhone(phone); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrPhoneRegistered
	}
	if email != "" {
		if existing, err := s.repo.GetByEmail(email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrEmailRegistered
		}
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	client := &models.Client{
		ClientID:     uuid.NewString(),
		FullName:     fullName,
		Phone:        phone,
		Email:        email,
		PasswordHash: hash,
		Location:     strings.TrimSpace(req.Location),
		Status:       models.ClientStatusActive,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(client); err != nil {
		return nil, err
	}
	if s.activity != nil {
		s.activity.Log(client.ClientID, models.ActionCreate, map[string]string{"full_name": fullName})
	}
	return client, nil
}

func (s *clientService) GetByClientID(clientID string) (*models.Client, error) {
	return s.repo.GetByClientID(clientID)
}
