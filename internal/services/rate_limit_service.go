package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/cache"
)

// ErrThrottled is returned when a rate or lockout limit is hit. It is a
// client-side condition, never a server fault.
var ErrThrottled = errors.New("too many attempts, try later")

// Progressive lockouts: 5 -> 1m, 10 -> 5m, 15 -> 15m, 20 -> 60m within one
// fixed window. Durations are monotonic in the count.
var escalationSteps = []struct {
	Threshold int64
	Lock      time.Duration
}{
	{20, 60 * time.Minute},
	{15, 15 * time.Minute},
	{10, 5 * time.Minute},
	{5, 1 * time.Minute},
}

// RateKey builds the counter key for (scope, identifier, action).
// Scope is "ip" or "user". Keys stay namespaced to avoid collisions.
func RateKey(scope, identifier, action string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", scope, identifier, action)
}

type RateLimitService interface {
	// CheckAndRecordSlidingWindow records one attempt under key and
	// returns ErrThrottled once maxAttempts were made within window.
	CheckAndRecordSlidingWindow(ctx context.Context, key string, window time.Duration, maxAttempts int) error

	// RecordAndEscalate increments the fixed-window counter for key and
	// arms the progressive lock when a threshold is crossed. It must be
	// called unconditionally for every attempt, including ones answered
	// generically, so enumeration probes are still throttled.
	RecordAndEscalate(ctx context.Context, key string, window time.Duration) (int64, error)

	// IsLocked reports whether the progressive lock for key is armed.
	IsLocked(ctx context.Context, key string) (bool, error)
}

type rateLimitService struct {
	kv     cache.Store
	alerts AlertService
	now    func() time.Time
}

func NewRateLimitService(kv cache.Store, alerts AlertService) RateLimitService {
	return &rateLimitService{kv: kv, alerts: alerts, now: time.Now}
}

func (s *rateLimitService) CheckAndRecordSlidingWindow(ctx context.Context, key string, window time.Duration, maxAttempts int) error {
	now := s.now().Unix()
	horizon := now - int64(window.Seconds())

	var attempts []int64
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &attempts); err != nil {
			// Corrupt entry: drop it rather than lock the key forever.
			attempts = nil
		}
	}

	live := attempts[:0]
	for _, t := range attempts {
		if t > horizon {
			live = append(live, t)
		}
	}
	if len(live) >= maxAttempts {
		if err := s.rewrite(ctx, key, live, window); err != nil {
			log.Printf("[ratelimit][window] rewrite failed key=%s: %v", key, err)
		}
		return ErrThrottled
	}
	live = append(live, now)
	return s.rewrite(ctx, key, live, window)
}

func (s *rateLimitService) rewrite(ctx context.Context, key string, attempts []int64, window time.Duration) error {
	b, err := json.Marshal(attempts)
	if err != nil {
		return err
	}
	return s.kv.SetWithTTL(ctx, key, string(b), window)
}

func (s *rateLimitService) RecordAndEscalate(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.kv.Incr(ctx, key, window)
	if err != nil {
		return 0, err
	}
	for _, step := range escalationSteps {
		if count >= step.Threshold {
			if err := s.kv.SetWithTTL(ctx, key+":lock", "1", step.Lock); err != nil {
				return count, err
			}
			if count == step.Threshold && s.alerts != nil {
				s.alerts.LockoutEscalated(key, count, step.Lock)
			}
			break
		}
	}
	return count, nil
}

func (s *rateLimitService) IsLocked(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, key+":lock")
	if err != nil {
		return false, err
	}
	return ok, nil
}
