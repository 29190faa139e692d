package user

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type tokenMeta struct {
	UserID    string
	ExpiresAt time.Time
}

type tokenManager struct {
	mu     sync.RWMutex
	tokens map[string]tokenMeta
}

func newTokenManager() *tokenManager {
	return &tokenManager{
		tokens: make(map[string]tokenMeta),
	}
}

func (m *tokenManager) Issue(userID string, ttl time.Duration) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.tokens[token] = tokenMeta{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	m.mu.Unlock()
	return token
}

func (m *tokenManager) Validate(token string) (tokenMeta, bool) {
	m.mu.RLock()
	meta, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return tokenMeta{}, false
	}
	if time.Now().After(meta.ExpiresAt) {
		m.mu.Lock()
		delete(m.tokens, token)
		m.mu.Unlock()
		return tokenMeta{}, false
	}
	return meta, true
}
