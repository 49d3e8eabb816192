package cart

import (
	"log"
	"sync"

	"bookcart/internal/session"
)

// NoticeBuffer collects mutation failure notifications for a session until
// the storefront picks them up.
type NoticeBuffer struct {
	mu   sync.Mutex
	msgs []string
}

func (n *NoticeBuffer) Notify(err error) {
	if err == nil {
		return
	}
	n.mu.Lock()
	n.msgs = append(n.msgs, err.Error())
	n.mu.Unlock()
}

// Drain returns and clears the pending notifications.
func (n *NoticeBuffer) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.msgs
	n.msgs = nil
	return msgs
}

// Handle is one session's synchronizer with its notification buffer.
type Handle struct {
	Sync    *Synchronizer
	Notices *NoticeBuffer
}

// Manager hands out synchronizers keyed by cart ID, so every request of a
// session converges on the same optimistic view.
type Manager struct {
	backend Backend
	logger  *log.Logger

	mu     sync.Mutex
	byCart map[string]*Handle
}

func NewManager(b Backend, logger *log.Logger) *Manager {
	return &Manager{
		backend: b,
		logger:  logger,
		byCart:  make(map[string]*Handle),
	}
}

// Attach returns the handle for the given cart ID, building a fresh one for
// unknown IDs (seeded, so the existing backend cart is readable) and for
// sessions with no cart yet.
func (m *Manager) Attach(cartID string) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cartID != "" {
		if h, ok := m.byCart[cartID]; ok {
			return h
		}
	}
	notices := &NoticeBuffer{}
	h := &Handle{
		Sync:    New(m.backend, session.NewMemory(cartID), notices, m.logger),
		Notices: notices,
	}
	if cartID != "" {
		m.byCart[cartID] = h
	}
	return h
}

// Remember registers a handle under its cart ID once creation assigned one.
func (m *Manager) Remember(h *Handle) {
	id := h.Sync.CartID()
	if id == "" {
		return
	}
	m.mu.Lock()
	m.byCart[id] = h
	m.mu.Unlock()
}
