// Package cart composes a sale. Stock ceilings and prices always come from the
// catalog snapshot at the moment of the call, never from the line itself.
package cart

import (
	"errors"
	"sync"

	"MiniStoreConsole/internal/backend"
)

var (
	ErrOutOfStock    = errors.New("product is out of stock")
	ErrStockExceeded = errors.New("cannot exceed available stock")
	ErrLineNotFound  = errors.New("product not in cart")
)

// Catalog resolves the current state of a product. catalog.Cache satisfies it.
type Catalog interface {
	Product(id string) (backend.Product, bool)
}

type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	catalog Catalog

	mu    sync.Mutex
	lines []Line
}

func New(catalog Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// Add puts one unit of p in the cart. Adding past p's stock is refused and
// leaves the cart as it was.
func (c *Cart) Add(p backend.Product) (Line, error) {
	if p.Stock <= 0 {
		return Line{}, ErrOutOfStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(p.ID)
	if i < 0 {
		c.lines = append(c.lines, Line{ProductID: p.ID, Quantity: 1})
		return c.lines[len(c.lines)-1], nil
	}

	if c.lines[i].Quantity+1 > p.Stock {
		return c.lines[i], ErrStockExceeded
	}
	c.lines[i].Quantity++
	return c.lines[i], nil
}

// SetQuantity clamps qty into [1, current stock] and applies it. When qty was
// above stock the clamped value is still applied and ErrStockExceeded is
// returned as a warning.
func (c *Cart) SetQuantity(productID string, qty int) (Line, error) {
	ceiling := 1
	if p, ok := c.catalog.Product(productID); ok && p.Stock > 0 {
		ceiling = p.Stock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(productID)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}

	clamped := min(max(qty, 1), ceiling)
	c.lines[i].Quantity = clamped

	if qty > ceiling {
		return c.lines[i], ErrStockExceeded
	}
	return c.lines[i], nil
}

// Remove deletes the line for productID. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// Total sums price × quantity at the catalog's current prices. Lines whose
// product left the catalog contribute nothing.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	lines := append([]Line(nil), c.lines...)
	c.mu.Unlock()

	var total int64
	for _, l := range lines {
		if p, ok := c.catalog.Product(l.ProductID); ok {
			total += p.PriceCents * int64(l.Quantity)
		}
	}
	return total
}

// Lines returns the cart in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Line(productID string) (Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Items converts the cart into sale lines, in display order.
func (c *Cart) Items() []backend.SaleItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]backend.SaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, backend.SaleItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func (c *Cart) indexLocked(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
