// Package session tracks anonymous browsing sessions. A session is an opaque
// token plus a single scalar: the id of the anonymous cart bound to it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Actor identifies who is performing a cart operation. Token is always set;
// UserID is set once the actor has authenticated. Operations receive an Actor
// value explicitly rather than reading ambient state.
type Actor struct {
	UserID *string
	Token  string
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool {
	return a.UserID != nil
}

type state struct {
	boundCartID string
	expiresAt   time.Time
}

// Manager issues session tokens and keeps each session's cart binding.
type Manager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]state
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]state),
	}
}

// Issue creates a new session and returns its token.
func (m *Manager) Issue() string {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = state{expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return token
}

// BoundCart returns the cart id bound to the session, if any.
func (m *Manager) BoundCart(token string) (string, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(s.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return "", false
	}
	if s.boundCartID == "" {
		return "", false
	}
	return s.boundCartID, true
}

// BindCart stores the cart id on the session. Binding refreshes the session
// TTL; an unknown token gets a fresh session so a binding is never dropped.
func (m *Manager) BindCart(token, cartID string) {
	m.mu.Lock()
	m.sessions[token] = state{
		boundCartID: cartID,
		expiresAt:   time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
}

// ClearCart removes the session's cart binding, keeping the session alive.
func (m *Manager) ClearCart(token string) {
	m.mu.Lock()
	if s, ok := m.sessions[token]; ok {
		s.boundCartID = ""
		m.sessions[token] = s
	}
	m.mu.Unlock()
}
