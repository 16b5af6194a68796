package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/cache"
)

// VerifyResult is the outcome of an OTP check. Handlers collapse all
// non-ok outcomes into the same generic response; the distinction exists
// for logging only.
type VerifyResult string

const (
	OTPOk      VerifyResult = "ok"
	OTPExpired VerifyResult = "expired" // no live record (TTL elapsed or never issued)
	OTPLocked  VerifyResult = "locked"  // attempt budget exhausted
	OTPInvalid VerifyResult = "invalid" // wrong code, attempts remain
)

const (
	otpCodeLength = 6
	// Fallback TTL applied when a wrong-code retry rewrites the record.
	// The store cannot report remaining TTL, so a conservative fixed
	// window is used instead of guessing.
	otpRetryTTL = 5 * time.Minute
)

type otpPayload struct {
	Code         string `json:"code"`
	AttemptsLeft int    `json:"attempts_left"`
	CreatedAt    int64  `json:"created_at"`
}

func otpKey(scope, userID, purpose string) string {
	return fmt.Sprintf("otp:%s:%s:%s", scope, userID, purpose)
}

type OTPService interface {
	// IssueCode generates and stores a fresh 6-digit code, superseding
	// any live record for the same (scope, userID, purpose). The code is
	// returned for out-of-band delivery and is never logged.
	IssueCode(ctx context.Context, scope, userID, purpose string, ttl time.Duration, maxAttempts int) (string, error)
	// VerifyCode checks submitted against the stored code. Single-use:
	// a match deletes the record before returning OTPOk.
	VerifyCode(ctx context.Context, scope, userID, purpose, submitted string) (VerifyResult, error)
}

type otpService struct {
	kv cache.Store
}

func NewOTPService(kv cache.Store) OTPService {
	return &otpService{kv: kv}
}

// generateCode draws a uniform value in [0, 10^6) from crypto/rand and
// zero-pads it. A general-purpose PRNG is not acceptable here.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpCodeLength, n.Int64()), nil
}

func (s *otpService) IssueCode(ctx context.Context, scope, userID, purpose string, ttl time.Duration, maxAttempts int) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	payload := otpPayload{
		Code:         code,
		AttemptsLeft: maxAttempts,
		CreatedAt:    time.Now().Unix(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal otp payload: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, otpKey(scope, userID, purpose), string(b), ttl); err != nil {
		return "", err
	}
	return code, nil
}

func (s *otpService) VerifyCode(ctx context.Context, scope, userID, purpose, submitted string) (VerifyResult, error) {
	key := otpKey(scope, userID, purpose)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return OTPInvalid, err
	}
	if !ok {
		return OTPExpired, nil
	}
	var payload otpPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		_ = s.kv.Delete(ctx, key)
		return OTPExpired, nil
	}
	if payload.AttemptsLeft <= 0 {
		if err := s.kv.Delete(ctx, key); err != nil {
			return OTPLocked, err
		}
		return OTPLocked, nil
	}
	// Constant-time compare: must not short-circuit on the first
	// mismatched digit.
	if subtle.ConstantTimeCompare([]byte(payload.Code), []byte(submitted)) == 1 {
		if err := s.kv.Delete(ctx, key); err != nil {
			return OTPOk, err
		}
		return OTPOk, nil
	}
	payload.AttemptsLeft--
	if payload.AttemptsLeft <= 0 {
		// Budget exhausted by this attempt: the record is gone for good.
		if err := s.kv.Delete(ctx, key); err != nil {
			return OTPLocked, err
		}
		return OTPLocked, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return OTPInvalid, fmt.Errorf("marshal otp payload: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, key, string(b), otpRetryTTL); err != nil {
		return OTPInvalid, err
	}
	return OTPInvalid, nil
}
