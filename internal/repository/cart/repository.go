package cart

import (
	"context"

	"bookcart/internal/backend"
)

// Repository is the Postgres-backed commerce platform: the backend.Client
// contract plus the state transition checkout uses to invalidate a cart.
type Repository interface {
	backend.Client
	SetState(ctx context.Context, cartID, state string) error
}

// Cart states.
const (
	StateActive  = "active"
	StateOrdered = "ordered"
)
