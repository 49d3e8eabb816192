// Package seed loads the demo book catalog, either into Postgres for the
// full stack or as in-memory entries for memory mode.
package seed

import (
	"context"
	"log"
	"strings"

	"bookcart/internal/domain"
	"bookcart/internal/money"
	productrepo "bookcart/internal/repository/product"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Book is one sellable catalog row.
type Book struct {
	Handle       string
	Title        string
	Description  string
	ImageURL     string
	VariantTitle string
	Options      []domain.SelectedOption
	PriceMinor   int64
	Currency     string
}

// Books returns the demo catalog. Prices are in minor units.
func Books() []Book {
	paperback := []domain.SelectedOption{{Name: "Format", Value: "Paperback"}}
	hardcover := []domain.SelectedOption{{Name: "Format", Value: "Hardcover"}}
	return []Book{
		{
			Handle: "the-idiot", Title: "The Idiot",
			Description:  "Prince Myshkin returns to Russia and collides with a society that has no place for goodness.",
			ImageURL:     "/images/the-idiot.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 24000, Currency: "INR",
		},
		{
			Handle: "demons", Title: "Demons",
			Description:  "A provincial town is pulled apart by a cell of nihilist conspirators.",
			ImageURL:     "/images/demons.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 18000, Currency: "INR",
		},
		{
			Handle: "crime-and-punishment", Title: "Crime and Punishment",
			Description:  "Raskolnikov tests his theory of the extraordinary man and cannot live with the result.",
			ImageURL:     "/images/crime-and-punishment.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 29900, Currency: "INR",
		},
		{
			Handle: "the-brothers-karamazov", Title: "The Brothers Karamazov",
			Description:  "Three brothers, a murdered father, and the question of whether everything is permitted.",
			ImageURL:     "/images/the-brothers-karamazov.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 34900, Currency: "INR",
		},
		{
			Handle: "the-brothers-karamazov", Title: "The Brothers Karamazov",
			Description:  "Three brothers, a murdered father, and the question of whether everything is permitted.",
			ImageURL:     "/images/the-brothers-karamazov.jpg",
			VariantTitle: "Hardcover", Options: hardcover,
			PriceMinor: 59900, Currency: "INR",
		},
		{
			Handle: "notes-from-underground", Title: "Notes from Underground",
			Description:  "The underground man argues with everyone, above all with himself.",
			ImageURL:     "/images/notes-from-underground.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 12500, Currency: "INR",
		},
		{
			Handle: "white-nights", Title: "White Nights",
			Description:  "Four nights and a morning in Petersburg with a dreamer who finally meets someone.",
			ImageURL:     "/images/white-nights.jpg",
			VariantTitle: "Paperback", Options: paperback,
			PriceMinor: 9900, Currency: "INR",
		},
	}
}

// Apply upserts the demo catalog into Postgres. Rerunning is safe.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := productrepo.NewPostgres(pool, logger)
	for _, b := range Books() {
		if _, err := repo.Upsert(ctx, productrepo.UpsertInput{
			Handle:       b.Handle,
			Title:        b.Title,
			Description:  b.Description,
			ImageURL:     b.ImageURL,
			VariantTitle: b.VariantTitle,
			Options:      b.Options,
			PriceMinor:   b.PriceMinor,
			Currency:     b.Currency,
		}); err != nil {
			return err
		}
		if logger != nil {
			logger.Printf("seeded %s (%s)", b.Title, b.VariantTitle)
		}
	}
	return nil
}

// Catalog renders the demo books as catalog entries for the in-memory
// backend, with deterministic merchandise IDs.
func Catalog() []domain.CatalogEntry {
	books := Books()
	entries := make([]domain.CatalogEntry, 0, len(books))
	for _, b := range books {
		id := b.Handle + "-" + strings.ToLower(strings.ReplaceAll(b.VariantTitle, " ", "-"))
		entries = append(entries, domain.CatalogEntry{
			Merchandise: domain.Merchandise{
				ID:              id,
				Title:           b.VariantTitle,
				SelectedOptions: b.Options,
			},
			Product: domain.Product{
				ID:          id,
				Handle:      b.Handle,
				Title:       b.Title,
				Description: b.Description,
				ImageURL:    b.ImageURL,
			},
			Price: domain.Money{
				Amount:       money.FromMinor(b.PriceMinor, 2).String(),
				CurrencyCode: b.Currency,
			},
		})
	}
	return entries
}
