package services

import (
	"context"
	"log"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
)

// SingleSessionService guarantees that, for identity classes under its
// policy, only the most recently established session is honored. Logging
// in elsewhere silently invalidates the previous session.
type SingleSessionService interface {
	// Enforced reports whether the policy applies to an identity class.
	Enforced(userType string) bool

	// RecordNewSession evicts the previous session (best-effort) and
	// then, as the final step, points the identity at newSessionID.
	// Concurrent logins for the same identity race to last write wins.
	RecordNewSession(ctx context.Context, clientID, newSessionID string) error

	// ValidateSession reports whether presentedSessionID is still the
	// canonical session for the identity. False means force logout.
	ValidateSession(ctx context.Context, clientID, presentedSessionID string) (bool, error)

	// ClearOnLogout resets the back-reference on normal logout. Safe to
	// call twice.
	ClearOnLogout(ctx context.Context, clientID string) error
}

type singleSessionService struct {
	clients  repositories.ClientRepository
	sessions repositories.SessionRepository
	activity ActivityService
	alerts   AlertService
	policy   map[string]bool
}

func NewSingleSessionService(
	clients repositories.ClientRepository,
	sessions repositories.SessionRepository,
	activity ActivityService,
	alerts AlertService,
	enforcedTypes []string,
) SingleSessionService {
	policy := make(map[string]bool, len(enforcedTypes))
	for _, t := range enforcedTypes {
		policy[t] = true
	}
	return &singleSessionService{
		clients:  clients,
		sessions: sessions,
		activity: activity,
		alerts:   alerts,
		policy:   policy,
	}
}

func (s *singleSessionService) Enforced(userType string) bool {
	return s.policy[userType]
}

func (s *singleSessionService) RecordNewSession(ctx context.Context, clientID, newSessionID string) error {
	client, err := s.clients.GetByClientID(clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}
	if old := client.ActiveSessionID; old != "" && old != newSessionID {
		// Best-effort eviction: a failed delete must not abort login.
		// A surviving stale session is still rejected on its next
		// request by the mismatch check below.
		if err := s.sessions.Delete(old); err != nil {
			log.Printf("[session][evict] delete failed client_id=%s: %v", clientID, err)
		}
		log.Printf("[session][evict] concurrent login, previous session invalidated client_id=%s", clientID)
		if s.activity != nil {
			s.activity.Log(clientID, models.ActionSessionEvicted, nil)
		}
		if s.alerts != nil {
			s.alerts.SessionEvicted(models.UserTypeClient, clientID)
		}
	}
	// The pointer update is deliberately the last write: a concurrent
	// reader never sees the old session evicted while the pointer still
	// claims it is valid.
	return s.clients.UpdateActiveSession(clientID, newSessionID)
}

func (s *singleSessionService) ValidateSession(ctx context.Context, clientID, presentedSessionID string) (bool, error) {
	client, err := s.clients.GetByClientID(clientID)
	if err != nil {
		return false, err
	}
	if client == nil {
		return false, nil
	}
	return client.ActiveSessionID == presentedSessionID, nil
}

func (s *singleSessionService) ClearOnLogout(ctx context.Context, clientID string) error {
	return s.clients.ClearActiveSession(clientID)
}
