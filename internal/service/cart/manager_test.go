package cart

import (
	"context"
	"errors"
	"testing"
)

func TestManagerAttachReusesByCartID(t *testing.T) {
	m := NewManager(newFakeBackend(t), nil)

	h1 := m.Attach("cart-1")
	h2 := m.Attach("cart-1")
	if h1 != h2 {
		t.Fatalf("expected the same handle for one cart ID")
	}
	if h1.Sync.CartID() != "cart-1" {
		t.Fatalf("session not seeded: %q", h1.Sync.CartID())
	}

	if m.Attach("cart-2") == h1 {
		t.Fatalf("expected distinct handles for distinct carts")
	}
}

func TestManagerAttachFreshForEmptyID(t *testing.T) {
	m := NewManager(newFakeBackend(t), nil)
	if m.Attach("") == m.Attach("") {
		t.Fatalf("expected a fresh handle per cartless request")
	}
}

func TestManagerRememberRegistersCreatedCart(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newFakeBackend(t), nil)

	h := m.Attach("")
	if err := h.Sync.AddItem(ctx, merchA(), productA()); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	h.Sync.Wait()

	id := h.Sync.CartID()
	if id == "" {
		t.Fatalf("cart not created")
	}
	m.Remember(h)
	if m.Attach(id) != h {
		t.Fatalf("remembered handle not returned for cart %q", id)
	}
}

func TestNoticeBufferDrain(t *testing.T) {
	n := &NoticeBuffer{}
	n.Notify(errors.New("first"))
	n.Notify(errors.New("second"))
	n.Notify(nil)

	msgs := n.Drain()
	if len(msgs) != 2 || msgs[0] != "first" || msgs[1] != "second" {
		t.Fatalf("unexpected notices %v", msgs)
	}
	if len(n.Drain()) != 0 {
		t.Fatalf("drain did not clear the buffer")
	}
}
