package services

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AlertService pushes security events to an ops channel. All sends are
// best-effort: a failing notifier must never affect the primary flow.
type AlertService interface {
	SessionEvicted(userType, userID string)
	LockoutEscalated(key string, count int64, lock time.Duration)
}

type telegramAlertService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramAlertService returns a nil-safe alert sender. When token is
// empty or the bot cannot be reached, alerts degrade to local logs.
func NewTelegramAlertService(botToken string, opsChatID int64) AlertService {
	if botToken == "" || opsChatID == 0 {
		log.Printf("[alerts] telegram disabled (no token or chat id)")
		return &telegramAlertService{}
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[alerts] telegram init failed: %v", err)
		return &telegramAlertService{}
	}
	return &telegramAlertService{bot: bot, chatID: opsChatID}
}

func (s *telegramAlertService) send(text string) {
	if s == nil || s.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("[alerts][send][err] %v", err)
	}
}

func (s *telegramAlertService) SessionEvicted(userType, userID string) {
	// Identity reference only, no PII.
	s.send(fmt.Sprintf("Concurrent login: previous %s session invalidated (id=%s)", userType, userID))
}

func (s *telegramAlertService) LockoutEscalated(key string, count int64, lock time.Duration) {
	s.send(fmt.Sprintf("Rate-limit lockout armed: key=%s count=%d lock=%s", key, count, lock))
}
