package services

import (
	"log"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
)

// ActivityService records portal audit events. Writes are best-effort:
// an unavailable log store must never break login or signup.
type ActivityService interface {
	Log(clientID, action string, details map[string]string)
}

type activityService struct {
	repo repositories.ActivityLogRepository
}

func NewActivityService(repo repositories.ActivityLogRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Log(clientID, action string, details map[string]string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.ActivityLog{
		ClientID: clientID,
		Action:   action,
		Details:  details,
	}
	if err := s.repo.Create(entry); err != nil {
		log.Printf("[activity][%s] write failed client_id=%s: %v", action, clientID, err)
	}
}
