// Package session keeps the API session token: persisted in the kv table so
// a restart stays logged in, cached in memory for header injection, and
// dropped when the server answers 401.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmarques/obrafield/internal/client/kv"
	"github.com/dmarques/obrafield/internal/logging"
)

const tokenKey = "session_token"

// Manager owns the session token lifecycle.
type Manager struct {
	kv  kv.Repository
	log logging.Logger

	mu    sync.RWMutex
	token string
}

func NewManager(store kv.Repository, log logging.Logger) *Manager {
	return &Manager{kv: store, log: log}
}

// Load restores a previously stored token. A missing token is not an error;
// the user simply has to log in.
func (m *Manager) Load(ctx context.Context) error {
	value, err := m.kv.Get(ctx, tokenKey)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.token = string(value)
	m.mu.Unlock()
	return nil
}

// SetToken stores a freshly issued token.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	if err := m.kv.Set(ctx, tokenKey, []byte(token)); err != nil {
		return err
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Token returns the current token, empty when logged out. Wired into the API
// client as its token provider.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Valid reports whether a token is present and, when it is a JWT, not yet
// expired. The signature is not checked here; the server remains the
// authority and a stale verdict just costs one rejected request.
func (m *Manager) Valid() bool {
	tok := m.Token()
	if tok == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		// Opaque (non-JWT) tokens are accepted until the server says no.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

// Invalidate forgets the token. Wired into the API client's 401 hook, so it
// must not block or fail loudly.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.kv.Delete(ctx, tokenKey); err != nil && m.log != nil {
		m.log.Warn(ctx, "failed to drop stored session token", "error", err)
	}
}
