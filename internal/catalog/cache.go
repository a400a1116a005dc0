// Package catalog holds the console's point-in-time copy of the product list.
// It is the source of stock ceilings and prices for the cart.
package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
)

type Product = backend.Product

// Loader fetches a complete product list.
type Loader interface {
	Catalog(ctx context.Context) ([]Product, error)
}

// LoadObserver is told about every load outcome.
type LoadObserver func(err error)

type Cache struct {
	loader  Loader
	log     *zap.Logger
	observe LoadObserver

	mu       sync.RWMutex
	products []Product
	byID     map[string]int
	version  uint64
}

func NewCache(loader Loader, log *zap.Logger, observe LoadObserver) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		loader:  loader,
		log:     log,
		observe: observe,
		byID:    map[string]int{},
	}
}

// Load fetches the catalog and swaps it in wholesale. On error the previous
// snapshot stays in place. Concurrent loads are not coalesced: whichever
// resolves last wins.
func (c *Cache) Load(ctx context.Context) ([]Product, error) {
	products, err := c.loader.Catalog(ctx)
	if c.observe != nil {
		c.observe(err)
	}
	if err != nil {
		c.log.Warn("catalog load failed", zap.Error(err))
		return nil, err
	}

	c.Replace(products)
	c.log.Debug("catalog loaded", zap.Int("products", len(products)))
	return c.Products(), nil
}

// Replace installs products as the new snapshot. List and index change together.
func (c *Cache) Replace(products []Product) {
	list := append([]Product(nil), products...)
	idx := make(map[string]int, len(list))
	for i, p := range list {
		idx[p.ID] = i
	}

	c.mu.Lock()
	c.products = list
	c.byID = idx
	c.version++
	c.mu.Unlock()
}

// Product looks up id in the current snapshot.
func (c *Cache) Product(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy of the current snapshot in backend order.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Product(nil), c.products...)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Version increases by one with every successful replace.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// StockLevel classifies a stock count for display.
type StockLevel string

const (
	InStock    StockLevel = "in_stock"
	LowStock   StockLevel = "low"
	OutOfStock StockLevel = "out"
)

const lowStockThreshold = 10

func LevelOf(stock int) StockLevel {
	switch {
	case stock > lowStockThreshold:
		return InStock
	case stock > 0:
		return LowStock
	default:
		return OutOfStock
	}
}
