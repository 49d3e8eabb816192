package product

import (
	"context"
	"strings"

	"bookcart/internal/domain"
)

// Catalog is the slice of the product catalog the storefront reads. Both the
// Postgres repository and the in-memory backend satisfy it.
type Catalog interface {
	ListCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	GetByHandle(ctx context.Context, handle string) ([]domain.CatalogEntry, error)
	GetByMerchandise(ctx context.Context, merchandiseID string) (*domain.CatalogEntry, error)
}

type Service struct {
	catalog Catalog
}

func New(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.catalog.ListCatalog(ctx)
}

func (s *Service) GetByHandle(ctx context.Context, handle string) ([]domain.CatalogEntry, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.Validationf("handle required")
	}
	return s.catalog.GetByHandle(ctx, handle)
}

func (s *Service) GetByMerchandise(ctx context.Context, merchandiseID string) (*domain.CatalogEntry, error) {
	if strings.TrimSpace(merchandiseID) == "" {
		return nil, domain.Validationf("merchandise id required")
	}
	return s.catalog.GetByMerchandise(ctx, merchandiseID)
}
