package events

import (
	"context"
	"testing"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()
	var got []UserLoggedIn
	bus.SubscribeLogin(func(_ context.Context, ev UserLoggedIn) {
		got = append(got, ev)
	})

	bus.PublishLogin(context.Background(), UserLoggedIn{UserID: "u1", SessionToken: "t1"})

	if len(got) != 1 || got[0].UserID != "u1" || got[0].SessionToken != "t1" {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.PublishLogin(context.Background(), UserLoggedIn{UserID: "u1"})
}

func TestSubscribersRunInOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.SubscribeLogin(func(context.Context, UserLoggedIn) { order = append(order, 1) })
	bus.SubscribeLogin(func(context.Context, UserLoggedIn) { order = append(order, 2) })

	bus.PublishLogin(context.Background(), UserLoggedIn{})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected order: %v", order)
	}
}
