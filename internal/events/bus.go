// Package events provides the in-process dispatch that connects login events
// to their listeners.
package events

import (
	"context"
	"sync"
)

// UserLoggedIn is published after a successful authentication. SessionToken
// identifies the browsing session the actor logged in from.
type UserLoggedIn struct {
	UserID       string
	SessionToken string
}

// LoginHandler consumes a UserLoggedIn event.
type LoginHandler func(ctx context.Context, ev UserLoggedIn)

// Bus fans UserLoggedIn events out to subscribed handlers, synchronously and
// in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []LoginHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeLogin registers a handler for future login events.
func (b *Bus) SubscribeLogin(h LoginHandler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// PublishLogin delivers the event to every subscribed handler.
func (b *Bus) PublishLogin(ctx context.Context, ev UserLoggedIn) {
	b.mu.RLock()
	handlers := make([]LoginHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}
