package product

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"bookcart/internal/domain"
	"bookcart/internal/money"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const entryColumns = `id::text, handle, title, COALESCE(description, ''), COALESCE(image_url, ''), variant_title, options, price_minor, currency`

func (r *postgresRepo) ListCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	q := `
SELECT ` + entryColumns + `
FROM products
ORDER BY title ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresRepo) GetByHandle(ctx context.Context, handle string) ([]domain.CatalogEntry, error) {
	q := `
SELECT ` + entryColumns + `
FROM products
WHERE handle = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}
	return entries, nil
}

func (r *postgresRepo) GetByMerchandise(ctx context.Context, merchandiseID string) (*domain.CatalogEntry, error) {
	q := `
SELECT ` + entryColumns + `
FROM products
WHERE id = $1
`
	row := r.pool.QueryRow(ctx, q, merchandiseID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, in UpsertInput) (*domain.CatalogEntry, error) {
	options, err := json.Marshal(optionsOrEmpty(in.Options))
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO products (handle, title, description, image_url, variant_title, options, price_minor, currency)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)
ON CONFLICT (handle, variant_title) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	image_url = EXCLUDED.image_url,
	options = EXCLUDED.options,
	price_minor = EXCLUDED.price_minor,
	currency = EXCLUDED.currency
RETURNING ` + entryColumns + `
`
	row := r.pool.QueryRow(ctx, q, in.Handle, in.Title, in.Description, in.ImageURL, in.VariantTitle, options, in.PriceMinor, in.Currency)
	entry, err := scanEntry(row)
	if err != nil {
		r.logger.Printf("product repo: upsert handle=%s error=%v", in.Handle, err)
		return nil, err
	}
	return entry, nil
}

func scanEntry(row pgx.Row) (*domain.CatalogEntry, error) {
	var (
		entry      domain.CatalogEntry
		options    []byte
		priceMinor int64
	)
	if err := row.Scan(
		&entry.Merchandise.ID,
		&entry.Product.Handle,
		&entry.Product.Title,
		&entry.Product.Description,
		&entry.Product.ImageURL,
		&entry.Merchandise.Title,
		&options,
		&priceMinor,
		&entry.Price.CurrencyCode,
	); err != nil {
		return nil, err
	}
	entry.Product.ID = entry.Merchandise.ID
	if len(options) > 0 {
		if err := json.Unmarshal(options, &entry.Merchandise.SelectedOptions); err != nil {
			return nil, err
		}
	}
	entry.Price.Amount = money.FromMinor(priceMinor, 2).String()
	return &entry, nil
}

func optionsOrEmpty(opts []domain.SelectedOption) []domain.SelectedOption {
	if opts == nil {
		return []domain.SelectedOption{}
	}
	return opts
}
