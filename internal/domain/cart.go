package domain

// Money is a backend-sourced monetary value. Amount is a decimal string
// ("240.00"); an empty Amount means the value is not yet known locally and is
// awaiting backend confirmation.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Known reports whether the amount has been supplied by the backend (or
// derived from a backend-supplied unit price).
func (m Money) Known() bool {
	return m.Amount != ""
}

type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
	TotalTaxAmount Money `json:"totalTaxAmount"`
}

type Cart struct {
	ID            string     `json:"id"`
	Lines         []LineItem `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
}

// LineItem pairs a merchandise variant with a quantity and a backend-priced
// cost for that quantity.
type LineItem struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        Money       `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
	Product     Product     `json:"product"`
}

// LineByID returns the line item with the given ID, or nil.
func (c *Cart) LineByID(id string) *LineItem {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i]
		}
	}
	return nil
}

// LineByMerchandise returns the line item for the given merchandise variant,
// or nil. Variants match by merchandise ID, never by product.
func (c *Cart) LineByMerchandise(merchandiseID string) *LineItem {
	for i := range c.Lines {
		if c.Lines[i].Merchandise.ID == merchandiseID {
			return &c.Lines[i]
		}
	}
	return nil
}
