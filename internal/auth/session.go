package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resto-service/internal/catalog"
	"resto-service/internal/models"
	"resto-service/internal/store"
	"resto-service/internal/util"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// State is the session manager's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// ErrInvalidCredentials covers both unknown accounts and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrMockSignInUnavailable is returned when the demo sign-in path is hit
// while a live backend is configured. That path must never work in live
// mode.
var ErrMockSignInUnavailable = errors.New("mock sign-in unavailable in live mode")

const tokenLifetime = 12 * time.Hour

// Manager resolves the current identity and role, and reacts to session
// change notifications for the lifetime of the process. Teardown via Close
// cancels the notification subscription exactly once.
type Manager struct {
	repo    store.Repository
	catalog *catalog.Service
	secret  []byte
	live    bool
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	profile *models.UserProfile

	changes   chan models.SessionChange
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates the session manager and starts consuming session
// change notifications. timeout bounds session resolution (15s by default).
func NewManager(repo store.Repository, cat *catalog.Service, secret string, live bool, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	m := &Manager{
		repo:    repo,
		catalog: cat,
		secret:  []byte(secret),
		live:    live,
		timeout: timeout,
		logger:  util.GetLogger(),
		state:   StateUninitialized,
		changes: make(chan models.SessionChange, 8),
		done:    make(chan struct{}),
	}
	go m.watchChanges()
	return m
}

// Resolve determines the session state for a token. Not configured for a
// live backend: straight to Anonymous without any network attempt. Live:
// bounded by the manager timeout; any error or timeout lands on Anonymous,
// never stuck in Loading. A verified session whose profile lookup fails or
// finds no row is still Authenticated, with the least-privileged staff role.
func (m *Manager) Resolve(ctx context.Context, token string) (State, *models.UserProfile) {
	if !m.live {
		return m.set(StateAnonymous, nil)
	}
	if token == "" {
		return m.set(StateAnonymous, nil)
	}

	m.set(StateLoading, nil)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	id, email, err := m.verify(token)
	if err != nil {
		m.logger.Debug("Session verification failed", zap.Error(err))
		return m.set(StateAnonymous, nil)
	}

	profile := m.lookupProfile(ctx, id, email)
	return m.set(StateAuthenticated, profile)
}

// lookupProfile fetches the role record for a session identity. Lookup
// errors and missing rows both default to employee: least privilege, but
// never a failed login.
func (m *Manager) lookupProfile(ctx context.Context, id, email string) *models.UserProfile {
	profile, err := m.repo.GetProfile(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("Profile lookup failed, defaulting to employee role",
				zap.String("profile_id", id),
				zap.Error(err))
		}
		return &models.UserProfile{ID: id, Email: email, Role: models.RoleEmployee}
	}
	if profile.Role != models.RoleAdmin && profile.Role != models.RoleEmployee {
		profile.Role = models.RoleEmployee
	}
	return profile
}

// SignIn verifies credentials against the profile store and issues a
// session token. Live mode only; the demo path is MockSignIn.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, *models.UserProfile, error) {
	if !m.live {
		return "", nil, ErrMockSignInUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	profile, err := m.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := m.issue(profile)
	if err != nil {
		return "", nil, err
	}

	m.set(StateAuthenticated, profile)
	m.Notify(models.SessionChange{Token: token, Timestamp: time.Now()})
	return token, profile, nil
}

// MockSignIn is the demo path: a direct local transition to Authenticated
// with a caller-chosen role. Refused outright when live mode is configured.
func (m *Manager) MockSignIn(role models.Role) (string, *models.UserProfile, error) {
	if m.live {
		return "", nil, ErrMockSignInUnavailable
	}
	if role != models.RoleAdmin && role != models.RoleEmployee {
		role = models.RoleEmployee
	}

	profile := &models.UserProfile{
		ID:    "mock-" + string(role),
		Email: fmt.Sprintf("%s@example.com", role),
		Role:  role,
	}
	token, err := m.issue(profile)
	if err != nil {
		return "", nil, err
	}
	m.set(StateAuthenticated, profile)
	return token, profile, nil
}

// SignOut clears the session and the catalog cache, so stale catalog data
// never survives a logout.
func (m *Manager) SignOut(ctx context.Context) {
	m.catalog.InvalidateCache(ctx)
	m.set(StateAnonymous, nil)
	m.Notify(models.SessionChange{SignedOut: true, Timestamp: time.Now()})
}

// Notify queues a session change notification (sign-in, sign-out, token
// refresh from elsewhere). Dropped silently after Close.
func (m *Manager) Notify(change models.SessionChange) {
	select {
	case <-m.done:
	case m.changes <- change:
	}
}

// Current returns the last resolved state and profile.
func (m *Manager) Current() (State, *models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.profile
}

// Close cancels the notification subscription. Safe to call more than once;
// only the first call has effect.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// VerifyToken exposes token verification for the HTTP middleware.
func (m *Manager) VerifyToken(token string) (*models.UserProfile, error) {
	id, email, err := m.verify(token)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.lookupProfile(ctx, id, email), nil
}

// watchChanges re-resolves the role on every external session change until
// teardown.
func (m *Manager) watchChanges() {
	for {
		select {
		case <-m.done:
			return
		case change := <-m.changes:
			if change.SignedOut {
				m.set(StateAnonymous, nil)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			m.Resolve(ctx, change.Token)
			cancel()
		}
	}
}

func (m *Manager) set(state State, profile *models.UserProfile) (State, *models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.profile = profile
	return state, profile
}

// issue signs a session token carrying identity and role claims.
func (m *Manager) issue(profile *models.UserProfile) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = profile.ID
	claims["email"] = profile.Email
	claims["role"] = string(profile.Role)
	claims["exp"] = time.Now().Add(tokenLifetime).Unix()

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// verify parses a session token and extracts identity claims. Role is not
// trusted from the token; it is re-resolved from the profile store.
func (m *Manager) verify(tokenStr string) (id, email string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid session token")
	}

	id, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	if id == "" {
		return "", "", fmt.Errorf("session token missing subject")
	}
	return id, email, nil
}
