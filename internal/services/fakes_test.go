package services

import (
	"context"
	"sync"
	"time"

	"github.com/ishwarchoudhari/FloDo/internal/models"
)

// memStore is an in-memory cache.Store with a controllable clock so TTL
// behavior can be tested without sleeping.
type memStore struct {
	mu      sync.Mutex
	values  map[string]memEntry
	counter map[string]int64
	now     func() time.Time
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		values:  make(map[string]memEntry),
		counter: make(map[string]int64),
		now:     time.Now,
	}
}

// advance shifts the fake clock forward.
func (m *memStore) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now()
	m.now = func() time.Time { return base.Add(d) }
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.values[key]
	if !ok {
		return "", false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.values, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *memStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = memEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.values[key]; ok && m.now().After(e.expiresAt) {
		delete(m.values, key)
		m.counter[key] = 0
	}
	m.counter[key]++
	if _, ok := m.values[key]; !ok {
		m.values[key] = memEntry{value: "counter", expiresAt: m.now().Add(window)}
	}
	return m.counter[key], nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.AdminUser
}

func newFakeUserRepo(users ...*models.AdminUser) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.AdminUser)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = len(r.users) + 1
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetSuperAdmin() (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IsSuperAdmin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SuperAdminExists() (bool, error) {
	u, _ := r.GetSuperAdmin()
	return u != nil, nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(userID int, ip string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.LastLoginIP = ip
		u.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) PromoteSuperAdmin(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		u.IsSuperAdmin = id == userID
	}
	return nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]*models.Client
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[string]*models.Client)}
	for _, c := range clients {
		cp := *c
		r.clients[c.ClientID] = &cp
	}
	return r
}

func (r *fakeClientRepo) Create(client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *client
	r.clients[client.ClientID] = &cp
	return nil
}

func (r *fakeClientRepo) GetByClientID(clientID string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeClientRepo) GetByPhone(phone string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) GetByEmail(email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) UpdatePassword(clientID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		c.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeClientRepo) UpdateActiveSession(clientID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		c.ActiveSessionID = sessionID
	}
	return nil
}

func (r *fakeClientRepo) ClearActiveSession(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		c.ActiveSessionID = ""
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Get(id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) Touch(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastSeenAt = at
	}
	return nil
}

func (r *fakeSessionRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.LastSeenAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
}

func (r *fakeActivityRepo) Create(entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeActivityRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingAlerts captures security notifications instead of sending them.
type recordingAlerts struct {
	mu        sync.Mutex
	evictions []string
	lockouts  []string
}

func (a *recordingAlerts) SessionEvicted(userType, userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.evictions = append(a.evictions, userType+":"+userID)
}

func (a *recordingAlerts) LockoutEscalated(key string, count int64, lock time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lockouts = append(a.lockouts, key)
}

// recordingEmails captures outbound mail so tests can inspect OTP codes
// and reset tokens without SMTP.
type recordingEmails struct {
	mu     sync.Mutex
	codes  []string
	tokens []string
}

func (e *recordingEmails) SendOTPEmail(email, code string, expiryMinutes int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
	return nil
}

func (e *recordingEmails) SendClientResetEmail(email, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tokens = append(e.tokens, token)
	return nil
}

func (e *recordingEmails) lastCode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.codes) == 0 {
		return ""
	}
	return e.codes[len(e.codes)-1]
}

func (e *recordingEmails) lastToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.tokens) == 0 {
		return ""
	}
	return e.tokens[len(e.tokens)-1]
}
