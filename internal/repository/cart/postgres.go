package cart

import (
	"context"
	"encoding/json"
	"errors"

	"bookcart/internal/backend"
	"bookcart/internal/domain"
	"bookcart/internal/money"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool     *pgxpool.Pool
	currency string
}

// NewPostgres builds the Postgres commerce platform. currency is used for
// the aggregates of an empty cart.
func NewPostgres(pool *pgxpool.Pool, currency string) Repository {
	if currency == "" {
		currency = "INR"
	}
	return &postgresRepo{pool: pool, currency: currency}
}

func (r *postgresRepo) CreateCart(ctx context.Context) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (state)
VALUES ('active')
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q).Scan(&id); err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, id)
}

func (r *postgresRepo) ReadCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := r.requireActive(ctx, r.pool, cartID); err != nil {
		if errors.Is(err, domain.ErrInvalidCart) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.fetchCart(ctx, cartID)
}

func (r *postgresRepo) AddLines(ctx context.Context, cartID string, lines []backend.AddLineInput) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := r.requireActive(ctx, tx, cartID); err != nil {
		return nil, err
	}

	for _, in := range lines {
		if in.Quantity <= 0 {
			return nil, domain.Validationf("quantity must be positive")
		}
		var priceMinor int64
		err := tx.QueryRow(ctx, `
SELECT price_minor
FROM products
WHERE id::text = $1
`, in.MerchandiseID).Scan(&priceMinor)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.Validationf("unknown merchandise %s", in.MerchandiseID)
			}
			return nil, err
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, merchandise_id, quantity, unit_price_minor, total_minor)
VALUES ($1::uuid, $2::uuid, $3, $4, $4 * $3)
ON CONFLICT (cart_id, merchandise_id) DO UPDATE SET
	quantity = cart_lines.quantity + EXCLUDED.quantity,
	unit_price_minor = EXCLUDED.unit_price_minor,
	total_minor = EXCLUDED.unit_price_minor * (cart_lines.quantity + EXCLUDED.quantity)
`, cartID, in.MerchandiseID, in.Quantity, priceMinor); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, cartID)
}

func (r *postgresRepo) UpdateLines(ctx context.Context, cartID string, lines []backend.UpdateLineInput) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := r.requireActive(ctx, tx, cartID); err != nil {
		return nil, err
	}

	for _, in := range lines {
		if in.Quantity < 0 {
			return nil, domain.Validationf("quantity must not be negative")
		}
		if in.Quantity == 0 {
			cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE id::text = $1 AND cart_id::text = $2
`, in.LineID, cartID)
			if err != nil {
				return nil, err
			}
			if cmd.RowsAffected() == 0 {
				return nil, domain.Validationf("unknown line %s", in.LineID)
			}
			continue
		}
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, total_minor = unit_price_minor * $1
WHERE id::text = $2 AND cart_id::text = $3
`, in.Quantity, in.LineID, cartID)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.Validationf("unknown line %s", in.LineID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, cartID)
}

func (r *postgresRepo) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := r.requireActive(ctx, tx, cartID); err != nil {
		return nil, err
	}

	for _, lineID := range lineIDs {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE id::text = $1 AND cart_id::text = $2
`, lineID, cartID)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.Validationf("unknown line %s", lineID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, cartID)
}

// SetState transitions a cart, e.g. to 'ordered' when checkout completes.
// The old ID is invalid for reads and mutations from then on.
func (r *postgresRepo) SetState(ctx context.Context, cartID, state string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET state = $1
WHERE id::text = $2
`, state, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepo) requireActive(ctx context.Context, q querier, cartID string) error {
	var state string
	err := q.QueryRow(ctx, `
SELECT state
FROM carts
WHERE id::text = $1
`, cartID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidCart
		}
		return err
	}
	if state != StateActive {
		return domain.ErrInvalidCart
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	const q = `
SELECT l.id::text, l.quantity, l.total_minor,
       p.id::text, p.handle, p.title, COALESCE(p.description, ''), COALESCE(p.image_url, ''),
       p.variant_title, p.options, p.currency
FROM cart_lines l
JOIN products p ON p.id = l.merchandise_id
WHERE l.cart_id::text = $1
ORDER BY p.title ASC, p.id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{ID: cartID, Lines: []domain.LineItem{}}
	subtotal := money.Zero()
	currency := ""
	for rows.Next() {
		var (
			line       domain.LineItem
			totalMinor int64
			options    []byte
			lineCurr   string
		)
		if err := rows.Scan(
			&line.ID,
			&line.Quantity,
			&totalMinor,
			&line.Merchandise.ID,
			&line.Product.Handle,
			&line.Product.Title,
			&line.Product.Description,
			&line.Product.ImageURL,
			&line.Merchandise.Title,
			&options,
			&lineCurr,
		); err != nil {
			return nil, err
		}
		line.Product.ID = line.Merchandise.ID
		if len(options) > 0 {
			if err := json.Unmarshal(options, &line.Merchandise.SelectedOptions); err != nil {
				return nil, err
			}
		}
		cost := money.FromMinor(totalMinor, 2)
		line.Cost = domain.Money{Amount: cost.String(), CurrencyCode: lineCurr}
		subtotal = subtotal.Add(cost)
		if currency == "" {
			currency = lineCurr
		}
		cart.TotalQuantity += line.Quantity
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if currency == "" {
		currency = r.currency
	}
	amount := domain.Money{Amount: subtotal.String(), CurrencyCode: currency}
	cart.Cost = domain.CartCost{
		SubtotalAmount: amount,
		TotalAmount:    amount,
		TotalTaxAmount: domain.Money{Amount: "0.00", CurrencyCode: currency},
	}
	return cart, nil
}
