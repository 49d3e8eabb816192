package cart

import (
	"sort"
	"strings"

	"bookcart/internal/domain"
	"bookcart/internal/money"

	"github.com/google/uuid"
)

// The reducer is a set of pure cart transforms. Every function returns a new
// cart and leaves its input untouched, so optimistic applies, rollbacks and
// reconciliations are all testable without a synchronizer.

const provisionalPrefix = "local-"

func provisionalLineID() string {
	return provisionalPrefix + uuid.NewString()
}

func isProvisionalID(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

func cloneCart(c *domain.Cart) *domain.Cart {
	if c == nil {
		return &domain.Cart{}
	}
	out := *c
	out.Lines = make([]domain.LineItem, len(c.Lines))
	copy(out.Lines, c.Lines)
	return &out
}

// applyAdd increments the matching merchandise line by one, or inserts a new
// provisional line with quantity 1. The new cost is derived from the known
// unit price; with no price known yet the cost stays pending until the
// backend confirms.
func applyAdd(c *domain.Cart, merch domain.Merchandise, product domain.Product) *domain.Cart {
	out := cloneCart(c)
	if line := out.LineByMerchandise(merch.ID); line != nil {
		line.Cost = scaledCost(*line, line.Quantity+1)
		line.Quantity++
	} else {
		out.Lines = append(out.Lines, domain.LineItem{
			ID:          provisionalLineID(),
			Quantity:    1,
			Merchandise: merch,
			Product:     product,
		})
	}
	finalize(out)
	return out
}

// revertAdd undoes one applyAdd for the merchandise: quantity drops by one
// and the line disappears at zero. Missing lines are left alone so a rollback
// composes with optimistic removals that happened in between.
func revertAdd(c *domain.Cart, merchandiseID string) *domain.Cart {
	out := cloneCart(c)
	line := out.LineByMerchandise(merchandiseID)
	if line == nil {
		return out
	}
	if line.Quantity <= 1 {
		dropMerchandise(out, merchandiseID)
	} else {
		line.Cost = scaledCost(*line, line.Quantity-1)
		line.Quantity--
	}
	finalize(out)
	return out
}

// applyDelta adjusts a line's quantity by delta. Reaching zero removes the
// line and returns it as a tombstone for the rollback path. Reducing an
// absent line, or below zero, is rejected before any state change.
func applyDelta(c *domain.Cart, lineID string, delta int) (*domain.Cart, *domain.LineItem, error) {
	if c == nil {
		return nil, nil, domain.Validationf("no cart")
	}
	line := c.LineByID(lineID)
	if line == nil {
		return nil, nil, domain.Validationf("unknown line %s", lineID)
	}
	newQty := line.Quantity + delta
	if newQty < 0 {
		return nil, nil, domain.Validationf("quantity must not go below zero")
	}
	out := cloneCart(c)
	if newQty == 0 {
		tomb := *out.LineByID(lineID)
		dropMerchandise(out, tomb.Merchandise.ID)
		finalize(out)
		return out, &tomb, nil
	}
	l := out.LineByID(lineID)
	l.Cost = scaledCost(*l, newQty)
	l.Quantity = newQty
	finalize(out)
	return out, nil, nil
}

// revertDelta is the inverse of applyDelta: the tombstone is restored when
// the mutation removed the line, otherwise the delta is subtracted again.
func revertDelta(c *domain.Cart, merchandiseID string, delta int, tombstone *domain.LineItem) *domain.Cart {
	if tombstone != nil {
		return restoreLine(c, *tombstone)
	}
	out := cloneCart(c)
	line := out.LineByMerchandise(merchandiseID)
	if line == nil {
		return out
	}
	newQty := line.Quantity - delta
	if newQty <= 0 {
		dropMerchandise(out, merchandiseID)
	} else {
		line.Cost = scaledCost(*line, newQty)
		line.Quantity = newQty
	}
	finalize(out)
	return out
}

// applyRemove deletes the line immediately, handing back a tombstone holding
// its exact quantity and cost for a possible rollback.
func applyRemove(c *domain.Cart, lineID string) (*domain.Cart, *domain.LineItem, error) {
	if c == nil {
		return nil, nil, domain.Validationf("no cart")
	}
	line := c.LineByID(lineID)
	if line == nil {
		return nil, nil, domain.Validationf("unknown line %s", lineID)
	}
	tomb := *line
	out := cloneCart(c)
	dropMerchandise(out, tomb.Merchandise.ID)
	finalize(out)
	return out, &tomb, nil
}

// restoreLine reinserts a tombstone unless a line for the same merchandise
// reappeared in the meantime.
func restoreLine(c *domain.Cart, tombstone domain.LineItem) *domain.Cart {
	out := cloneCart(c)
	if out.LineByMerchandise(tombstone.Merchandise.ID) == nil {
		out.Lines = append(out.Lines, tombstone)
	}
	finalize(out)
	return out
}

// reconcileLine overwrites the affected merchandise's local line with the
// backend's authoritative one. A line the confirmation omits is treated as
// removed, except a provisional line, which is a later optimistic re-add
// still awaiting its own confirmation; a line the local view no longer holds
// stays absent, because a later optimistic removal must not be resurrected.
// When a later optimistic mutation already moved the quantity past the
// confirmed one, the confirmed unit price is kept and rescaled so requested
// quantities never regress.
func reconcileLine(local, confirmed *domain.Cart, merchandiseID string) *domain.Cart {
	out := cloneCart(local)
	out.ID = confirmed.ID
	out.Cost.TotalTaxAmount = confirmed.Cost.TotalTaxAmount

	conf := confirmed.LineByMerchandise(merchandiseID)
	line := out.LineByMerchandise(merchandiseID)
	switch {
	case conf == nil:
		if line != nil && !isProvisionalID(line.ID) {
			dropMerchandise(out, merchandiseID)
		}
	case line != nil:
		next := *conf
		if line.Quantity != conf.Quantity {
			next.Quantity = line.Quantity
			next.Cost = scaledCost(*conf, line.Quantity)
		}
		*line = next
	}
	finalize(out)
	return out
}

// finalize recomputes the derived aggregates and restores the stable display
// order. Aggregates are sums over line data only; pending costs contribute
// quantity but no amount.
func finalize(c *domain.Cart) {
	total := 0
	subtotal := money.Zero()
	currency := ""
	for _, line := range c.Lines {
		total += line.Quantity
		if !line.Cost.Known() {
			continue
		}
		amt, err := money.Parse(line.Cost.Amount)
		if err != nil {
			continue
		}
		subtotal = subtotal.Add(amt)
		if currency == "" {
			currency = line.Cost.CurrencyCode
		}
	}
	c.TotalQuantity = total
	if currency == "" {
		currency = c.Cost.SubtotalAmount.CurrencyCode
	}
	sub := domain.Money{Amount: subtotal.String(), CurrencyCode: currency}
	c.Cost.SubtotalAmount = sub
	c.Cost.TotalAmount = sub
	if tax := c.Cost.TotalTaxAmount; tax.Known() && tax.CurrencyCode == currency {
		if t, err := money.Parse(tax.Amount); err == nil {
			c.Cost.TotalAmount = domain.Money{Amount: subtotal.Add(t).String(), CurrencyCode: currency}
		}
	}
	sortLines(c)
}

// sortLines keeps presentation order stable across reconciliation: product
// title first, merchandise ID as the tiebreak.
func sortLines(c *domain.Cart) {
	sort.SliceStable(c.Lines, func(i, j int) bool {
		if c.Lines[i].Product.Title != c.Lines[j].Product.Title {
			return c.Lines[i].Product.Title < c.Lines[j].Product.Title
		}
		return c.Lines[i].Merchandise.ID < c.Lines[j].Merchandise.ID
	})
}

// scaledCost derives the line's unit price from its current cost and scales
// it to the new quantity. Without a known cost the result stays pending.
func scaledCost(line domain.LineItem, quantity int) domain.Money {
	if !line.Cost.Known() || line.Quantity <= 0 {
		return domain.Money{}
	}
	amt, err := money.Parse(line.Cost.Amount)
	if err != nil {
		return domain.Money{}
	}
	unit := amt.DivInt(line.Quantity)
	return domain.Money{
		Amount:       unit.MulInt(quantity).String(),
		CurrencyCode: line.Cost.CurrencyCode,
	}
}

func dropMerchandise(c *domain.Cart, merchandiseID string) {
	for i := range c.Lines {
		if c.Lines[i].Merchandise.ID == merchandiseID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}
