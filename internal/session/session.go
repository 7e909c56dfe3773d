package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/KaushikNagaraj77/oruma-go/internal/apperrors"
	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
)

// refreshTimeout bounds the background refresh call; the rest of the client
// deliberately has no backend timeout, but an unbounded timer-driven call
// could wedge the gate.
const refreshTimeout = 15 * time.Second

// Manager is the token/session gate. It owns the persisted token pair,
// schedules proactive refresh from the actual expiry timestamp (a single
// timer recomputed after every refresh, not a fixed-interval poll), and
// tears the session down when a refresh fails.
type Manager struct {
	auth      domain.AuthService
	store     domain.TokenStore
	threshold time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	tokens   domain.Tokens
	userID   string
	err      error
	timer    *time.Timer
	teardown []func()
	closed   bool
}

// NewManager creates a session gate. threshold is how long before expiry a
// proactive refresh runs.
func NewManager(auth domain.AuthService, store domain.TokenStore, threshold time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		auth:      auth,
		store:     store,
		threshold: threshold,
		logger:    logger,
	}
}

// OnTeardown registers a hook run when the session ends (logout or failed
// refresh). The composition root uses this to disconnect the realtime
// channel.
func (m *Manager) OnTeardown(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardown = append(m.teardown, fn)
}

// Restore loads persisted tokens and, when they are stale or near expiry,
// refreshes them immediately. Returns true when an authenticated session is
// active afterwards.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	tokens, err := m.store.LoadTokens(ctx)
	if err != nil {
		return false, fmt.Errorf("load tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return false, nil
	}

	if tokens.ShouldRefresh(time.Now(), m.threshold) {
		refreshed, err := m.auth.Refresh(ctx, tokens.RefreshToken)
		if err != nil {
			m.logger.Warn("session restore refresh failed", "error", err)
			if err := m.store.ClearTokens(ctx); err != nil {
				m.logger.Error("failed to clear stale tokens", "error", err)
			}
			return false, nil
		}
		tokens = *refreshed
		if err := m.store.SaveTokens(ctx, tokens); err != nil {
			return false, fmt.Errorf("save refreshed tokens: %w", err)
		}
	}

	m.adopt(tokens, subjectOf(tokens.AccessToken))
	return true, nil
}

// Login authenticates and starts a session.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, tokens, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveTokens(ctx, *tokens); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	m.adopt(*tokens, user.ID)
	return user, nil
}

// Register creates an account and starts a session.
func (m *Manager) Register(ctx context.Context, name, email, password, university string) (*domain.User, error) {
	user, tokens, err := m.auth.Register(ctx, name, email, password, university)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveTokens(ctx, *tokens); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	m.adopt(*tokens, user.ID)
	return user, nil
}

// Logout ends the session. The server call is best effort; local teardown
// happens regardless.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("logout call failed", "error", err)
	}
	m.endSession(ctx)
}

// AccessToken returns the current access token, or "" when no session is
// active. Implements the token source consumed by the REST client and the
// realtime channel.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.AccessToken
}

// UserID returns the authenticated user's id, or "" before login.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// Err returns the fatal error that ended the session, or nil while the
// session is healthy. Set when a refresh fails; cleared on the next login.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Authenticated reports whether a non-expired session is active.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.Valid(time.Now())
}

// Close stops the refresh timer without ending the session; tokens stay
// persisted for the next start.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) adopt(tokens domain.Tokens, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	if userID != "" {
		m.userID = userID
	}
	m.err = nil
	m.scheduleLocked()
}

// scheduleLocked arms the single refresh timer for threshold before expiry.
// Caller holds m.mu.
func (m *Manager) scheduleLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	if m.closed || m.tokens.AccessToken == "" {
		return
	}

	delay := time.Until(m.tokens.ExpiresAt.Add(-m.threshold))
	if delay < 0 {
		delay = 0
	}
	m.timer = time.AfterFunc(delay, m.refresh)
}

// refresh runs on the timer goroutine. A failed refresh is fatal for the
// session: tokens are cleared and teardown hooks run.
func (m *Manager) refresh() {
	m.mu.Lock()
	refreshToken := m.tokens.RefreshToken
	m.mu.Unlock()
	if refreshToken == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	tokens, err := m.auth.Refresh(ctx, refreshToken)
	if err != nil {
		sessionErr := apperrors.SessionExpired(err)
		m.logger.Error("token refresh failed, ending session", "error", sessionErr)
		m.mu.Lock()
		m.err = sessionErr
		m.mu.Unlock()
		m.endSession(ctx)
		return
	}

	if err := m.store.SaveTokens(ctx, *tokens); err != nil {
		m.logger.Error("failed to persist refreshed tokens", "error", err)
	}

	m.mu.Lock()
	m.tokens = *tokens
	m.scheduleLocked()
	m.mu.Unlock()
	m.logger.Info("access token refreshed", "expires_at", tokens.ExpiresAt)
}

// subjectOf reads the user id from the access token's sub claim so a
// restored session keeps the viewer's identity across restarts. Parsed
// without verification, same as the expiry claim; an opaque or malformed
// token yields "".
func subjectOf(accessToken string) string {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

func (m *Manager) endSession(ctx context.Context) {
	m.mu.Lock()
	m.tokens = domain.Tokens{}
	m.userID = ""
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	hooks := append([]func(){}, m.teardown...)
	m.mu.Unlock()

	if err := m.store.ClearTokens(ctx); err != nil {
		m.logger.Error("failed to clear tokens", "error", err)
	}
	for _, fn := range hooks {
		fn()
	}
}
