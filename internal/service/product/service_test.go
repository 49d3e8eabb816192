package product

import (
	"context"
	"errors"
	"testing"

	"bookcart/internal/domain"
)

type stubCatalog struct {
	entries []domain.CatalogEntry
	err     error
}

func (s *stubCatalog) ListCatalog(_ context.Context) ([]domain.CatalogEntry, error) {
	return s.entries, s.err
}

func (s *stubCatalog) GetByHandle(_ context.Context, handle string) ([]domain.CatalogEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.CatalogEntry
	for _, e := range s.entries {
		if e.Product.Handle == handle {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (s *stubCatalog) GetByMerchandise(_ context.Context, merchandiseID string) (*domain.CatalogEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.entries {
		if e.Merchandise.ID == merchandiseID {
			entry := e
			return &entry, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestGetByHandle_EmptyHandleRejected(t *testing.T) {
	svc := New(&stubCatalog{})
	if _, err := svc.GetByHandle(context.Background(), "  "); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByMerchandise_EmptyIDRejected(t *testing.T) {
	svc := New(&stubCatalog{})
	if _, err := svc.GetByMerchandise(context.Background(), ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByMerchandise(t *testing.T) {
	entry := domain.CatalogEntry{
		Merchandise: domain.Merchandise{ID: "m1"},
		Product:     domain.Product{Handle: "demons", Title: "Demons"},
		Price:       domain.Money{Amount: "180.00", CurrencyCode: "INR"},
	}
	svc := New(&stubCatalog{entries: []domain.CatalogEntry{entry}})

	got, err := svc.GetByMerchandise(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetByMerchandise: %v", err)
	}
	if got.Product.Title != "Demons" {
		t.Fatalf("unexpected entry %+v", got)
	}

	if _, err := svc.GetByMerchandise(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
