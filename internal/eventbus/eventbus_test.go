package eventbus

import "testing"

func TestPublishFansOut(t *testing.T) {
	bus := New[int]()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(42)
	if got := <-a; got != 42 {
		t.Fatalf("subscriber a: %d", got)
	}
	if got := <-b; got != 42 {
		t.Fatalf("subscriber b: %d", got)
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewWithBuffer[int](1)
	slow := bus.Subscribe()

	bus.Publish(1)
	bus.Publish(2) // dropped, the subscriber never drained

	if got := <-slow; got != 1 {
		t.Fatalf("first event: %d", got)
	}
	select {
	case got := <-slow:
		t.Fatalf("unexpected second event: %d", got)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New[string]()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Fatal("channel still open after unsubscribe")
	}
	bus.Publish("ignored")
}

func TestCloseClosesAllSubscribers(t *testing.T) {
	bus := New[string]()
	sub := bus.Subscribe()
	bus.Close()
	bus.Close() // idempotent

	if _, ok := <-sub; ok {
		t.Fatal("channel still open after close")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatal("subscription after close yields an open channel")
	}
	bus.Publish("ignored")
}
