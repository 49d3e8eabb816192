// Package backend defines the commerce platform contract the storefront
// consumes. Carts are identified by opaque IDs; every mutation returns the
// full updated cart, which is the only authority for prices and costs.
package backend

import (
	"context"

	"bookcart/internal/domain"
)

type AddLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

type UpdateLineInput struct {
	LineID        string `json:"lineId"`
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// Client is the narrow interface to the commerce platform's cart API.
//
// ReadCart returns domain.ErrNotFound for an invalid or expired cart ID.
// Mutations return domain.ErrInvalidCart in the same situation, and
// domain.ValidationError for unknown merchandise or non-positive quantities.
type Client interface {
	CreateCart(ctx context.Context) (*domain.Cart, error)
	ReadCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []AddLineInput) (*domain.Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []UpdateLineInput) (*domain.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error)
}
