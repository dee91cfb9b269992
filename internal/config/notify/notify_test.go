package notify

import (
	"testing"
)

func TestRegistry_InvalidateAll(t *testing.T) {
	r := NewRegistry()

	var a, b int
	r.Subscribe(InvalidatorFunc(func() { a++ }))
	r.Subscribe(InvalidatorFunc(func() { b++ }))

	r.InvalidateAll()
	if a != 1 || b != 1 {
		t.Errorf("invalidation counts = %d, %d, want 1, 1", a, b)
	}

	r.InvalidateAll()
	if a != 2 || b != 2 {
		t.Errorf("invalidation counts = %d, %d, want 2, 2", a, b)
	}
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry()

	var calls int
	sub := r.Subscribe(InvalidatorFunc(func() { calls++ }))
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	sub.Unsubscribe()
	if r.Len() != 0 {
		t.Fatalf("Len after unsubscribe = %d, want 0", r.Len())
	}

	r.InvalidateAll()
	if calls != 0 {
		t.Errorf("unsubscribed invalidator called %d times", calls)
	}
}

func TestRegistry_EmptyInvalidateIsNoop(t *testing.T) {
	NewRegistry().InvalidateAll()
}
