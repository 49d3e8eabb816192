package product

import (
	"context"

	"bookcart/internal/domain"
)

// UpsertInput describes one sellable variant for seeding and imports.
type UpsertInput struct {
	Handle       string
	Title        string
	Description  string
	ImageURL     string
	VariantTitle string
	Options      []domain.SelectedOption
	PriceMinor   int64
	Currency     string
}

type Repository interface {
	ListCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	GetByHandle(ctx context.Context, handle string) ([]domain.CatalogEntry, error)
	GetByMerchandise(ctx context.Context, merchandiseID string) (*domain.CatalogEntry, error)
	Upsert(ctx context.Context, in UpsertInput) (*domain.CatalogEntry, error)
}
