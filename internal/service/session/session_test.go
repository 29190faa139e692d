package session

import (
	"testing"
	"time"
)

func TestIssueAndBind(t *testing.T) {
	m := NewManager(time.Hour)
	token := m.Issue()

	if _, ok := m.BoundCart(token); ok {
		t.Fatal("fresh session should have no bound cart")
	}

	m.BindCart(token, "cart-1")
	cartID, ok := m.BoundCart(token)
	if !ok || cartID != "cart-1" {
		t.Fatalf("expected cart-1, got %q ok=%v", cartID, ok)
	}
}

func TestClearCart(t *testing.T) {
	m := NewManager(time.Hour)
	token := m.Issue()
	m.BindCart(token, "cart-1")
	m.ClearCart(token)

	if _, ok := m.BoundCart(token); ok {
		t.Fatal("binding should be cleared")
	}
}

func TestUnknownToken(t *testing.T) {
	m := NewManager(time.Hour)
	if _, ok := m.BoundCart("nope"); ok {
		t.Fatal("unknown token should resolve to nothing")
	}
	// Binding an unknown token must still stick.
	m.BindCart("nope", "cart-2")
	if cartID, ok := m.BoundCart("nope"); !ok || cartID != "cart-2" {
		t.Fatalf("expected cart-2, got %q ok=%v", cartID, ok)
	}
}

func TestExpiry(t *testing.T) {
	m := NewManager(-time.Second)
	token := m.Issue()
	m.BindCart(token, "cart-1")
	// TTL already elapsed.
	m.sessions[token] = state{boundCartID: "cart-1", expiresAt: time.Now().Add(-time.Minute)}
	if _, ok := m.BoundCart(token); ok {
		t.Fatal("expired session should resolve to nothing")
	}
}

func TestAuthenticated(t *testing.T) {
	anon := Actor{Token: "t"}
	if anon.Authenticated() {
		t.Fatal("anonymous actor reported authenticated")
	}
	id := "u1"
	if !(Actor{UserID: &id, Token: "t"}).Authenticated() {
		t.Fatal("user actor not reported authenticated")
	}
}
