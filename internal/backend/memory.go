package backend

import (
	"context"
	"sort"
	"sync"

	"bookcart/internal/domain"
	"bookcart/internal/money"

	"github.com/google/uuid"
)

// Memory is an in-process Client used by tests and by the API in
// memory mode. Prices come from its catalog; carts live in a map.
type Memory struct {
	mu       sync.RWMutex
	catalog  map[string]catalogItem
	carts    map[string]*memCart
	currency string
}

type catalogItem struct {
	entry domain.CatalogEntry
	price money.Amount
}

type memCart struct {
	lines []memLine
}

type memLine struct {
	id            string
	merchandiseID string
	quantity      int
}

func NewMemory(currency string) *Memory {
	if currency == "" {
		currency = "INR"
	}
	return &Memory{
		catalog:  make(map[string]catalogItem),
		carts:    make(map[string]*memCart),
		currency: currency,
	}
}

// AddCatalogEntry registers a sellable variant. The entry's price amount must
// parse as a decimal string.
func (m *Memory) AddCatalogEntry(entry domain.CatalogEntry) error {
	price, err := money.Parse(entry.Price.Amount)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog[entry.Merchandise.ID] = catalogItem{entry: entry, price: price}
	return nil
}

// Invalidate drops a cart, as the platform does after checkout completion.
func (m *Memory) Invalidate(cartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, cartID)
}

func (m *Memory) CreateCart(_ context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.carts[id] = &memCart{}
	return m.viewLocked(id), nil
}

func (m *Memory) ReadCart(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.carts[cartID]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.viewLocked(cartID), nil
}

// AddLines applies the whole batch or none of it, like a transaction on the
// real platform.
func (m *Memory) AddLines(_ context.Context, cartID string, lines []AddLineInput) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrInvalidCart
	}
	staged := cart.clone()
	for _, in := range lines {
		if in.Quantity <= 0 {
			return nil, domain.Validationf("quantity must be positive")
		}
		if _, ok := m.catalog[in.MerchandiseID]; !ok {
			return nil, domain.Validationf("unknown merchandise %s", in.MerchandiseID)
		}
		if line := staged.find(in.MerchandiseID); line != nil {
			line.quantity += in.Quantity
			continue
		}
		staged.lines = append(staged.lines, memLine{
			id:            uuid.NewString(),
			merchandiseID: in.MerchandiseID,
			quantity:      in.Quantity,
		})
	}
	m.carts[cartID] = staged
	return m.viewLocked(cartID), nil
}

func (m *Memory) UpdateLines(_ context.Context, cartID string, lines []UpdateLineInput) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrInvalidCart
	}
	staged := cart.clone()
	for _, in := range lines {
		if in.Quantity < 0 {
			return nil, domain.Validationf("quantity must not be negative")
		}
		idx := staged.indexByID(in.LineID)
		if idx < 0 {
			return nil, domain.Validationf("unknown line %s", in.LineID)
		}
		if in.Quantity == 0 {
			staged.lines = append(staged.lines[:idx], staged.lines[idx+1:]...)
			continue
		}
		staged.lines[idx].quantity = in.Quantity
	}
	m.carts[cartID] = staged
	return m.viewLocked(cartID), nil
}

func (m *Memory) RemoveLines(_ context.Context, cartID string, lineIDs []string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrInvalidCart
	}
	staged := cart.clone()
	for _, id := range lineIDs {
		idx := staged.indexByID(id)
		if idx < 0 {
			return nil, domain.Validationf("unknown line %s", id)
		}
		staged.lines = append(staged.lines[:idx], staged.lines[idx+1:]...)
	}
	m.carts[cartID] = staged
	return m.viewLocked(cartID), nil
}

// ListCatalog returns all sellable variants ordered by product title.
func (m *Memory) ListCatalog(_ context.Context) ([]domain.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]domain.CatalogEntry, 0, len(m.catalog))
	for _, item := range m.catalog {
		entries = append(entries, item.entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Product.Title != entries[j].Product.Title {
			return entries[i].Product.Title < entries[j].Product.Title
		}
		return entries[i].Merchandise.ID < entries[j].Merchandise.ID
	})
	return entries, nil
}

// GetByHandle returns the variants of the product with the given handle.
func (m *Memory) GetByHandle(_ context.Context, handle string) ([]domain.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []domain.CatalogEntry
	for _, item := range m.catalog {
		if item.entry.Product.Handle == handle {
			entries = append(entries, item.entry)
		}
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Merchandise.ID < entries[j].Merchandise.ID
	})
	return entries, nil
}

// GetByMerchandise returns the catalog entry for one variant.
func (m *Memory) GetByMerchandise(_ context.Context, merchandiseID string) (*domain.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.catalog[merchandiseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry := item.entry
	return &entry, nil
}

func (c *memCart) clone() *memCart {
	return &memCart{lines: append([]memLine(nil), c.lines...)}
}

func (c *memCart) find(merchandiseID string) *memLine {
	for i := range c.lines {
		if c.lines[i].merchandiseID == merchandiseID {
			return &c.lines[i]
		}
	}
	return nil
}

func (c *memCart) indexByID(lineID string) int {
	for i := range c.lines {
		if c.lines[i].id == lineID {
			return i
		}
	}
	return -1
}

func (m *Memory) viewLocked(cartID string) *domain.Cart {
	cart := m.carts[cartID]
	out := &domain.Cart{ID: cartID, Lines: []domain.LineItem{}}
	subtotal := money.Zero()
	for _, line := range cart.lines {
		item, ok := m.catalog[line.merchandiseID]
		if !ok {
			continue
		}
		cost := item.price.MulInt(line.quantity)
		subtotal = subtotal.Add(cost)
		out.TotalQuantity += line.quantity
		out.Lines = append(out.Lines, domain.LineItem{
			ID:       line.id,
			Quantity: line.quantity,
			Cost: domain.Money{
				Amount:       cost.String(),
				CurrencyCode: item.entry.Price.CurrencyCode,
			},
			Merchandise: item.entry.Merchandise,
			Product:     item.entry.Product,
		})
	}
	currency := m.currency
	if len(out.Lines) > 0 {
		currency = out.Lines[0].Cost.CurrencyCode
	}
	amount := domain.Money{Amount: subtotal.String(), CurrencyCode: currency}
	out.Cost = domain.CartCost{
		SubtotalAmount: amount,
		TotalAmount:    amount,
		TotalTaxAmount: domain.Money{Amount: "0.00", CurrencyCode: currency},
	}
	return out
}
