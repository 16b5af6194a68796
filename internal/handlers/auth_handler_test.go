package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

// countingLimiter throttles after max sliding-window attempts per key.
type countingLimiter struct {
	mu    sync.Mutex
	max   int
	calls map[string]int
}

func newCountingLimiter(max int) *countingLimiter {
	return &countingLimiter{max: max, calls: make(map[string]int)}
}

func (l *countingLimiter) CheckAndRecordSlidingWindow(ctx context.Context, key string, window time.Duration, maxAttempts int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[key]++
	if l.calls[key] > l.max {
		return services.ErrThrottled
	}
	return nil
}

func (l *countingLimiter) RecordAndEscalate(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, nil
}

func (l *countingLimiter) IsLocked(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// passwordAuth accepts one username/password pair.
type passwordAuth struct {
	username string
	password string
}

func (a *passwordAuth) HashPassword(password string) (string, error) { return password, nil }
func (a *passwordAuth) CheckPassword(hash, password string) bool     { return hash == password }

func (a *passwordAuth) LoginAdmin(ctx context.Context, username, password string, cc services.ClientContext) (*models.Session, *models.AdminUser, error) {
	if username != a.username || password != a.password {
		return nil, nil, services.ErrInvalidCredentials
	}
	session := &models.Session{ID: "sess-a", UserID: "1", UserType: models.UserTypeAdmin}
	return session, &models.AdminUser{ID: 1, Username: username, IsActive: true}, nil
}

func (a *passwordAuth) LoginClient(ctx context.Context, identifier, password string, cc services.ClientContext) (*models.Session, *models.Client, error) {
	return nil, nil, services.ErrInvalidCredentials
}

func (a *passwordAuth) EstablishSession(ctx context.Context, userID, userType string) (*models.Session, error) {
	return nil, nil
}

func (a *passwordAuth) ValidateRequest(ctx context.Context, sessionID string) (*models.Session, error) {
	return nil, services.ErrSessionInvalid
}

func (a *passwordAuth) Logout(ctx context.Context, sessionID string) error { return nil }

func newLoginRouter(limiter services.RateLimitService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &passwordAuth{username: "alice", password: "correct"}
	h := NewAuthHandler(nil, auth, limiter, "flodo_session", 3600, time.Minute, 5)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	return r
}

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router := newLoginRouter(newCountingLimiter(5))

	w := postLogin(router, `{"username":"alice","password":"correct"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "flodo_session" && c.Value == "sess-a" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "expected a session cookie")
}

func TestLoginWrongPassword(t *testing.T) {
	router := newLoginRouter(newCountingLimiter(5))

	w := postLogin(router, `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginThrottledEvenWithCorrectCredentials(t *testing.T) {
	router := newLoginRouter(newCountingLimiter(5))

	for i := 0; i < 5; i++ {
		w := postLogin(router, `{"username":"alice","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	// The window is checked before credentials, so being right does not help.
	w := postLogin(router, `{"username":"alice","password":"correct"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginThrottleScopedPerUsername(t *testing.T) {
	router := newLoginRouter(newCountingLimiter(5))

	for i := 0; i < 6; i++ {
		postLogin(router, `{"username":"alice","password":"wrong"}`)
	}

	// A different username from the same address keys a separate window.
	w := postLogin(router, `{"username":"bob","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
