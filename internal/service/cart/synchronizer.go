// Package cart implements the storefront's optimistic cart synchronizer: a
// client-visible cart view that reflects both server-confirmed data and
// in-flight local mutations, reconciled once the commerce backend responds.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"bookcart/internal/backend"
	"bookcart/internal/domain"
	"bookcart/internal/session"

	"golang.org/x/sync/singleflight"
)

// Backend is the slice of the commerce platform the synchronizer consumes.
type Backend interface {
	CreateCart(ctx context.Context) (*domain.Cart, error)
	ReadCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []backend.AddLineInput) (*domain.Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []backend.UpdateLineInput) (*domain.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error)
}

// Notifier receives exactly one error per failed mutation.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(error)

func (f NotifierFunc) Notify(err error) { f(err) }

// Synchronizer keeps one session's cart view. Mutations apply optimistically
// before returning; the backend round-trip runs in the background, FIFO per
// line, and either reconciles the view with the confirmed cart or rolls the
// mutation back and notifies.
type Synchronizer struct {
	backend Backend
	session session.Store
	notify  Notifier
	logger  *log.Logger

	queue  *mutationQueue
	create singleflight.Group
	wg     sync.WaitGroup

	mu             sync.Mutex
	view           *domain.Cart
	lineIDs        map[string]string // merchandise ID -> confirmed backend line ID
	pendingRemoves map[string]int    // merchandise ID -> in-flight removals
}

// New builds a Synchronizer. notify and logger may be nil.
func New(b Backend, store session.Store, notify Notifier, logger *log.Logger) *Synchronizer {
	if notify == nil {
		notify = NotifierFunc(func(error) {})
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Synchronizer{
		backend:        b,
		session:        store,
		notify:         notify,
		logger:         logger,
		queue:          newMutationQueue(),
		lineIDs:        make(map[string]string),
		pendingRemoves: make(map[string]int),
	}
}

// Cart returns the current view without blocking: the most recently fetched
// or optimistically updated cart, nil when no cart exists yet.
func (s *Synchronizer) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return nil
	}
	return cloneCart(s.view)
}

// CartID returns the session's cart identifier, empty before creation.
func (s *Synchronizer) CartID() string {
	id, _ := s.session.Get()
	return id
}

// Refresh replaces the view with the backend's current state. An invalid or
// expired ID yields an absent cart; a new one is created lazily on the next
// mutation.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	id, ok := s.session.Get()
	if !ok || id == "" {
		return nil
	}
	confirmed, err := s.backend.ReadCart(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.mu.Lock()
			s.view = nil
			s.lineIDs = make(map[string]string)
			s.mu.Unlock()
			return nil
		}
		return classify(err)
	}
	s.adopt(confirmed)
	return nil
}

// AddItem optimistically adds one unit of the merchandise and submits the
// backend mutation. Only validation failures are returned synchronously.
func (s *Synchronizer) AddItem(ctx context.Context, merch domain.Merchandise, product domain.Product) error {
	if merch.ID == "" {
		return domain.Validationf("merchandise id required")
	}
	s.mu.Lock()
	s.view = applyAdd(s.view, merch, product)
	s.mu.Unlock()

	s.dispatch(ctx, merch.ID,
		func(ctx context.Context, cartID string) (*domain.Cart, error) {
			return s.backend.AddLines(ctx, cartID, []backend.AddLineInput{
				{MerchandiseID: merch.ID, Quantity: 1},
			})
		},
		func() {
			s.mu.Lock()
			s.view = revertAdd(s.view, merch.ID)
			s.mu.Unlock()
		},
		nil)
	return nil
}

// UpdateItemQuantity adjusts a line by delta; reaching zero removes the
// line. Decrementing an absent line or below zero is rejected before any
// state change.
func (s *Synchronizer) UpdateItemQuantity(ctx context.Context, lineID string, delta int) error {
	if delta == 0 {
		return domain.Validationf("delta must not be zero")
	}
	s.mu.Lock()
	next, tombstone, err := applyDelta(s.view, lineID, delta)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	line := s.view.LineByID(lineID)
	merchID := line.Merchandise.ID
	newQty := line.Quantity + delta
	s.view = next
	var settle func()
	if newQty == 0 {
		settle = s.markRemovePendingLocked(merchID)
	}
	s.mu.Unlock()

	s.dispatch(ctx, merchID,
		func(ctx context.Context, cartID string) (*domain.Cart, error) {
			backendLine := s.confirmedLineID(merchID)
			if newQty == 0 {
				return s.backend.RemoveLines(ctx, cartID, []string{backendLine})
			}
			return s.backend.UpdateLines(ctx, cartID, []backend.UpdateLineInput{
				{LineID: backendLine, MerchandiseID: merchID, Quantity: newQty},
			})
		},
		func() {
			s.mu.Lock()
			s.view = revertDelta(s.view, merchID, delta, tombstone)
			s.mu.Unlock()
		},
		settle)
	return nil
}

// RemoveItem optimistically deletes the line and submits the backend
// removal. On failure the retained tombstone restores the exact prior line.
func (s *Synchronizer) RemoveItem(ctx context.Context, lineID string) error {
	s.mu.Lock()
	next, tombstone, err := applyRemove(s.view, lineID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.view = next
	merchID := tombstone.Merchandise.ID
	settle := s.markRemovePendingLocked(merchID)
	s.mu.Unlock()

	s.dispatch(ctx, merchID,
		func(ctx context.Context, cartID string) (*domain.Cart, error) {
			return s.backend.RemoveLines(ctx, cartID, []string{s.confirmedLineID(merchID)})
		},
		func() {
			s.mu.Lock()
			s.view = restoreLine(s.view, *tombstone)
			s.mu.Unlock()
		},
		settle)
	return nil
}

// Wait blocks until all in-flight mutations have reconciled or rolled back.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// dispatch queues the backend round-trip for a mutation, FIFO per
// merchandise. The cart is created on first use; a cart the backend reports
// invalid is transparently recreated and the mutation retried once. Any
// final failure rolls back and notifies exactly once. settle, when non-nil,
// runs once the mutation has reconciled or rolled back.
func (s *Synchronizer) dispatch(ctx context.Context, merchandiseID string, call func(context.Context, string) (*domain.Cart, error), rollback func(), settle func()) {
	jctx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	s.queue.enqueue(merchandiseID, func() {
		defer s.wg.Done()
		if settle != nil {
			defer settle()
		}

		cartID, err := s.ensureCart(jctx, "")
		if err == nil {
			var confirmed *domain.Cart
			confirmed, err = call(jctx, cartID)
			if errors.Is(err, domain.ErrInvalidCart) {
				s.logger.Printf("cart %s invalid, recreating", cartID)
				var fresh string
				if fresh, err = s.ensureCart(jctx, cartID); err == nil {
					confirmed, err = call(jctx, fresh)
				}
			}
			if err == nil {
				s.reconcile(confirmed, merchandiseID)
				return
			}
		}

		s.logger.Printf("cart mutation failed for merchandise %s: %v", merchandiseID, err)
		rollback()
		s.notify.Notify(classify(err))
	})
}

// ensureCart returns the session's cart ID, creating the cart when the slot
// is empty or still holds the known-stale ID. Concurrent callers share one
// in-flight creation; the session slot is only ever written here.
func (s *Synchronizer) ensureCart(ctx context.Context, stale string) (string, error) {
	if id, ok := s.session.Get(); ok && id != "" && id != stale {
		return id, nil
	}
	v, err, _ := s.create.Do("create", func() (interface{}, error) {
		if id, ok := s.session.Get(); ok && id != "" && id != stale {
			return id, nil
		}
		created, err := s.backend.CreateCart(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.session.Set(created.ID); err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.view == nil {
			s.view = cloneCart(created)
		} else {
			// The fresh cart starts empty: lines confirmed in the
			// invalidated cart are gone. Only provisional lines,
			// whose mutations are still in flight and will be
			// retried against the new cart, carry over.
			s.view.ID = created.ID
			var kept []domain.LineItem
			for _, line := range s.view.Lines {
				if isProvisionalID(line.ID) {
					kept = append(kept, line)
				}
			}
			s.view.Lines = kept
			finalize(s.view)
		}
		s.lineIDs = make(map[string]string)
		s.mu.Unlock()
		s.logger.Printf("created cart %s", created.ID)
		return created.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Synchronizer) reconcile(confirmed *domain.Cart, merchandiseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		s.view = &domain.Cart{}
	}
	s.view = reconcileLine(s.view, confirmed, merchandiseID)
	if line := confirmed.LineByMerchandise(merchandiseID); line != nil {
		s.lineIDs[merchandiseID] = line.ID
		// A confirmed line missing from the view is reinstated unless a
		// local removal is still in flight; after a cart recreation the
		// retried mutation's confirmation is the only source of truth.
		if s.view.LineByMerchandise(merchandiseID) == nil && s.pendingRemoves[merchandiseID] == 0 {
			s.view = restoreLine(s.view, *line)
		}
	} else {
		delete(s.lineIDs, merchandiseID)
	}
}

// markRemovePendingLocked records an in-flight removal for the merchandise
// and returns the matching settle callback. Caller holds s.mu.
func (s *Synchronizer) markRemovePendingLocked(merchandiseID string) func() {
	s.pendingRemoves[merchandiseID]++
	return func() {
		s.mu.Lock()
		if s.pendingRemoves[merchandiseID]--; s.pendingRemoves[merchandiseID] <= 0 {
			delete(s.pendingRemoves, merchandiseID)
		}
		s.mu.Unlock()
	}
}

// adopt replaces the whole view with a server-confirmed cart.
func (s *Synchronizer) adopt(confirmed *domain.Cart) {
	view := cloneCart(confirmed)
	sortLines(view)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.lineIDs = make(map[string]string)
	for _, line := range view.Lines {
		s.lineIDs[line.Merchandise.ID] = line.ID
	}
}

// confirmedLineID resolves the backend line ID for a merchandise. Per-line
// FIFO ordering guarantees a preceding add has reconciled by the time a
// quantity update or removal for the same merchandise reaches the backend.
func (s *Synchronizer) confirmedLineID(merchandiseID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.lineIDs[merchandiseID]; ok {
		return id
	}
	if s.view != nil {
		if line := s.view.LineByMerchandise(merchandiseID); line != nil && !isProvisionalID(line.ID) {
			return line.ID
		}
	}
	return ""
}

// classify maps errors onto the storefront taxonomy: validation and invalid
// cart pass through, anything else is backend unavailability.
func classify(err error) error {
	if err == nil || domain.IsValidation(err) || errors.Is(err, domain.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
}
