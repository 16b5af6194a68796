package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
	"github.com/ishwarchoudhari/FloDo/internal/utils"
)

var (
	// ErrInvalidCredentials covers unknown identifier, wrong secret and
	// inactive account alike. The caller must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInvalid means the presented session is stale, evicted or
	// was issued before the last restart. Callers treat it as "please
	// log in again", not as a fault.
	ErrSessionInvalid = errors.New("session invalid")
)

// ClientContext carries request metadata the authenticator may record.
type ClientContext struct {
	IP        string
	UserAgent string
}

type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool

	// LoginAdmin verifies dashboard credentials and establishes a fresh
	// session. The session id is always newly generated, never carried
	// over from a pre-login session (fixation defense).
	LoginAdmin(ctx context.Context, username, password string, cc ClientContext) (*models.Session, *models.AdminUser, error)

	// LoginClient is the portal variant; identifier is phone or email.
	LoginClient(ctx context.Context, identifier, password string, cc ClientContext) (*models.Session, *models.Client, error)

	// EstablishSession creates and persists a fresh session for an
	// already-verified identity (login and post-signup auto-login).
	EstablishSession(ctx context.Context, userID, userType string) (*models.Session, error)

	// ValidateRequest resolves a session id to a live session. A boot
	// generation mismatch or a single-session eviction destroys the
	// session as a side effect and yields ErrSessionInvalid.
	ValidateRequest(ctx context.Context, sessionID string) (*models.Session, error)

	// Logout destroys the session. Idempotent.
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	users    repositories.UserRepository
	clients  repositories.ClientRepository
	sessions repositories.SessionRepository
	single   SingleSessionService
	activity ActivityService

	// bootGeneration identifies this process start. Injected at
	// construction so tests can simulate a restart.
	bootGeneration string
}

func NewAuthService(
	users repositories.UserRepository,
	clients repositories.ClientRepository,
	sessions repositories.SessionRepository,
	single SingleSessionService,
	activity ActivityService,
	bootGeneration string,
) AuthService {
	return &authService{
		users:          users,
		clients:        clients,
		sessions:       sessions,
		single:         single,
		activity:       activity,
		bootGeneration: bootGeneration,
	}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) EstablishSession(ctx context.Context, userID, userType string) (*models.Session, error) {
	id, err := utils.NewOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &models.Session{
		ID:             id,
		UserID:         userID,
		UserType:       userType,
		BootGeneration: s.bootGeneration,
		CreatedAt:      now,
		LastSeenAt:     now,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *authService) LoginAdmin(ctx context.Context, username, password string, cc ClientContext) (*models.Session, *models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive || !s.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	session, err := s.EstablishSession(ctx, strconv.Itoa(user.ID), models.UserTypeAdmin)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.UpdateLastLogin(user.ID, cc.IP, time.Now()); err != nil {
		log.Printf("[auth][login] last-login update failed user_id=%d: %v", user.ID, err)
	}
	if s.single.Enforced(models.UserTypeAdmin) {
		if err := s.single.RecordNewSession(ctx, strconv.Itoa(user.ID), session.ID); err != nil {
			log.Printf("[auth][login] record session failed user_id=%d: %v", user.ID, err)
		}
	}
	return session, user, nil
}

func (s *authService) LoginClient(ctx context.Context, identifier, password string, cc ClientContext) (*models.Session, *models.Client, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}
	client, err := s.lookupClient(identifier)
	if err != nil {
		return nil, nil, err
	}
	if client == nil || client.Status != models.ClientStatusActive || !s.CheckPassword(client.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	session, err := s.EstablishSession(ctx, client.ClientID, models.UserTypeClient)
	if err != nil {
		return nil, nil, err
	}
	if s.single.Enforced(models.UserTypeClient) {
		if err := s.single.RecordNewSession(ctx, client.ClientID, session.ID); err != nil {
			log.Printf("[auth][login] record session failed client_id=%s: %v", client.ClientID, err)
		}
	}
	if s.activity != nil {
		s.activity.Log(client.ClientID, models.ActionLogin, nil)
	}
	return session, client, nil
}

func (s *authService) lookupClient(identifier string) (*models.Client, error) {
	if strings.Contains(identifier, "@") {
		return s.clients.GetByEmail(identifier)
	}
	return s.clients.GetByPhone(identifier)
}

func (s *authService) ValidateRequest(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionInvalid
	}
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionInvalid
	}
	if session.BootGeneration != s.bootGeneration {
		// Server restarted since this session was issued. Invalidation
		// is lazy: the first post-restart request destroys the record.
		if err := s.sessions.Delete(sessionID); err != nil {
			log.Printf("[auth][validate] stale-boot delete failed: %v", err)
		}
		return nil, ErrSessionInvalid
	}
	if s.single.Enforced(session.UserType) {
		ok, err := s.single.ValidateSession(ctx, session.UserID, sessionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Evicted by a concurrent login elsewhere.
			if err := s.sessions.Delete(sessionID); err != nil {
				log.Printf("[auth][validate] evicted delete failed: %v", err)
			}
			return nil, ErrSessionInvalid
		}
	}
	if err := s.sessions.Touch(sessionID, time.Now()); err != nil {
		log.Printf("[auth][validate] touch failed: %v", err)
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		// Already gone; logout stays idempotent.
		return nil
	}
	if s.single.Enforced(session.UserType) {
		if err := s.single.ClearOnLogout(ctx, session.UserID); err != nil {
			log.Printf("[auth][logout] clear active session failed: %v", err)
		}
	}
	if session.UserType == models.UserTypeClient && s.activity != nil {
		s.activity.Log(session.UserID, models.ActionLogout, nil)
	}
	return s.sessions.Delete(sessionID)
}
