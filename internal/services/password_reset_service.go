package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ishwarchoudhari/FloDo/internal/cache"
	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
	"github.com/ishwarchoudhari/FloDo/internal/utils"
)

var (
	ErrResetNotVerified = errors.New("otp not verified or expired")
	ErrPasswordTooShort = errors.New("password too short")
	ErrResetTokenBad    = errors.New("invalid or expired reset token")
)

const (
	otpScopeSuperAdmin = "superadmin"
	purposeReset       = "password_reset"
	actionOTPRequest   = "otp_request"

	// A verified OTP grants a confirmation window of the same length as
	// the OTP itself.
	resetVerifiedTTL = 10 * time.Minute

	clientResetTokenTTL = time.Hour
	minPasswordLength   = 8
)

func resetVerifiedKey(token string) string {
	return "pwdreset:verified:" + token
}

// PasswordResetService composes the OTP manager, the rate limiter and the
// notifiers into the two reset flows: the super-admin email-OTP flow and
// the signed-token flow for portal clients.
type PasswordResetService interface {
	// RequestSuperAdminReset always behaves generically: rate-limit
	// budget is consumed whether or not a super-admin exists, and the
	// caller learns nothing either way.
	RequestSuperAdminReset(ctx context.Context, ip string) error

	// VerifySuperAdminCode checks the submitted code. On success it
	// returns an opaque short-lived token the confirm step must present.
	VerifySuperAdminCode(ctx context.Context, code string) (resetToken string, verified bool, err error)

	// ConfirmSuperAdminReset sets the new password. Requires a live
	// verification token; the token is consumed.
	ConfirmSuperAdminReset(ctx context.Context, resetToken, newPassword string) error

	// RequestClientReset issues a signed time-limited reset token for a
	// portal client. Generic: unknown identifiers are not disclosed.
	RequestClientReset(ctx context.Context, identifier, ip string) error

	// ResetClientPassword verifies the signed token and updates the
	// client's password.
	ResetClientPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	users    repositories.UserRepository
	clients  repositories.ClientRepository
	otp      OTPService
	limiter  RateLimitService
	emails   EmailService
	auth     AuthService
	activity ActivityService
	kv       cache.Store

	otpTTL         time.Duration
	otpMaxAttempts int
	tokenSecret    []byte
}

func NewPasswordResetService(
	users repositories.UserRepository,
	clients repositories.ClientRepository,
	otp OTPService,
	limiter RateLimitService,
	emails EmailService,
	auth AuthService,
	activity ActivityService,
	kv cache.Store,
	otpTTL time.Duration,
	otpMaxAttempts int,
	tokenSecret string,
) PasswordResetService {
	return &passwordResetService{
		users:          users,
		clients:        clients,
		otp:            otp,
		limiter:        limiter,
		emails:         emails,
		auth:           auth,
		activity:       activity,
		kv:             kv,
		otpTTL:         otpTTL,
		otpMaxAttempts: otpMaxAttempts,
		tokenSecret:    []byte(tokenSecret),
	}
}

func (s *passwordResetService) RequestSuperAdminReset(ctx context.Context, ip string) error {
	user, err := s.users.GetSuperAdmin()
	if err != nil {
		return err
	}

	// Counters are bumped before any short-circuit so enumeration
	// attempts consume budget even when answered generically. IP and
	// identity scopes are tracked independently.
	ipKey := RateKey("ip", ip, actionOTPRequest)
	if _, err := s.limiter.RecordAndEscalate(ctx, ipKey, time.Hour); err != nil {
		log.Printf("[pwd-reset][request] ip counter failed: %v", err)
	}
	if user != nil {
		userKey := RateKey("user", strconv.Itoa(user.ID), actionOTPRequest)
		if _, err := s.limiter.RecordAndEscalate(ctx, userKey, time.Hour); err != nil {
			log.Printf("[pwd-reset][request] user counter failed: %v", err)
		}
	}

	if user == nil {
		// No target configured: stay generic, issue nothing.
		return nil
	}
	if locked, err := s.limiter.IsLocked(ctx, ipKey); err == nil && locked {
		// Quietly skip issuance while locked; the response stays
		// indistinguishable from the normal path.
		log.Printf("[pwd-reset][request] ip locked, skipping issuance")
		return nil
	}

	code, err := s.otp.IssueCode(ctx, otpScopeSuperAdmin, strconv.Itoa(user.ID), purposeReset, s.otpTTL, s.otpMaxAttempts)
	if err != nil {
		return err
	}
	if user.Email != "" {
		// Delivery is best-effort; a failed send must not surface.
		if err := s.emails.SendOTPEmail(user.Email, code, int(s.otpTTL.Minutes())); err != nil {
			log.Printf("[pwd-reset][request] otp email failed: %v", err)
		}
	}
	return nil
}

func (s *passwordResetService) VerifySuperAdminCode(ctx context.Context, code string) (string, bool, error) {
	code = strings.TrimSpace(code)
	user, err := s.users.GetSuperAdmin()
	if err != nil {
		return "", false, err
	}
	if user == nil || code == "" {
		return "", false, nil
	}
	result, err := s.otp.VerifyCode(ctx, otpScopeSuperAdmin, strconv.Itoa(user.ID), purposeReset, code)
	if err != nil {
		return "", false, err
	}
	if result != OTPOk {
		// Internally distinguished for logging only; the caller sees
		// a single generic "not verified" outcome.
		log.Printf("[pwd-reset][verify] rejected reason=%s", result)
		return "", false, nil
	}
	token, err := utils.NewOpaqueToken(16)
	if err != nil {
		return "", false, err
	}
	if err := s.kv.SetWithTTL(ctx, resetVerifiedKey(token), strconv.Itoa(user.ID), resetVerifiedTTL); err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *passwordResetService) ConfirmSuperAdminReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrResetNotVerified
	}
	userIDStr, ok, err := s.kv.Get(ctx, resetVerifiedKey(resetToken))
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetNotVerified
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return ErrResetNotVerified
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(userID, hash); err != nil {
		return err
	}
	// Consume the verification marker; a second confirm must re-verify.
	if err := s.kv.Delete(ctx, resetVerifiedKey(resetToken)); err != nil {
		log.Printf("[pwd-reset][confirm] marker delete failed: %v", err)
	}
	return nil
}

func (s *passwordResetService) RequestClientReset(ctx context.Context, identifier, ip string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}
	ipKey := RateKey("ip", ip, "client_reset_request")
	if _, err := s.limiter.RecordAndEscalate(ctx, ipKey, time.Hour); err != nil {
		log.Printf("[pwd-reset][client] ip counter failed: %v", err)
	}

	var client *models.Client
	var err error
	if strings.Contains(identifier, "@") {
		client, err = s.clients.GetByEmail(identifier)
	} else {
		client, err = s.clients.GetByPhone(identifier)
	}
	if err != nil || client == nil {
		// Do not leak existence.
		if err != nil {
			log.Printf("[pwd-reset][client] lookup failed: %v", err)
		}
		return nil
	}

	claims := jwt.RegisteredClaims{
		Subject:   client.ClientID,
		Audience:  jwt.ClaimStrings{purposeReset},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(clientResetTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokenSecret)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	if client.Email != "" {
		if err := s.emails.SendClientResetEmail(client.Email, token); err != nil {
			log.Printf("[pwd-reset][client] email failed: %v", err)
		}
	}
	if s.activity != nil {
		s.activity.Log(client.ClientID, models.ActionForgotPassword, nil)
	}
	return nil
}

func (s *passwordResetService) ResetClientPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" || newPassword == "" {
		return ErrResetTokenBad
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.tokenSecret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return ErrResetTokenBad
	}
	audOK := false
	for _, a := range claims.Audience {
		if a == purposeReset {
			audOK = true
		}
	}
	if !audOK {
		return ErrResetTokenBad
	}

	client, err := s.clients.GetByClientID(claims.Subject)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrResetTokenBad
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.clients.UpdatePassword(client.ClientID, hash); err != nil {
		return err
	}
	if s.activity != nil {
		s.activity.Log(client.ClientID, models.ActionPasswordReset, nil)
	}
	return nil
}
