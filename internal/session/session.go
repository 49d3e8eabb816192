// Package session persists the opaque cart identifier across requests. The
// synchronizer takes the Store as an explicit dependency so tests can fake it.
package session

import "sync"

// CookieName is the single named slot the cart ID lives under.
const CookieName = "cartId"

// Store is the cart-ID slot. Set is called exactly once per cart, by cart
// creation; mutations only ever read.
type Store interface {
	Get() (string, bool)
	Set(id string) error
}

// Memory is an in-process Store, one per storefront session.
type Memory struct {
	mu sync.Mutex
	id string
	ok bool
}

// NewMemory returns a Memory store, pre-seeded when id is non-empty.
func NewMemory(id string) *Memory {
	m := &Memory{}
	if id != "" {
		m.id = id
		m.ok = true
	}
	return m
}

func (m *Memory) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.ok
}

func (m *Memory) Set(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	m.ok = id != ""
	return nil
}
