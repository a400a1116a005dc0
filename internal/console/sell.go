package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/cart"
	"MiniStoreConsole/internal/catalog"
	"MiniStoreConsole/internal/checkout"
	"MiniStoreConsole/internal/money"
	"MiniStoreConsole/internal/notify"
	"MiniStoreConsole/internal/search"
)

// SalesClient is the slice of the backend the sell desk needs.
type SalesClient interface {
	Catalog(ctx context.Context) ([]backend.Product, error)
	Sell(ctx context.Context, req backend.SaleRequest) (backend.SaleReceipt, error)
}

var ErrUnknownProduct = errors.New("product not in catalog")

type DeskOptions struct {
	Debounce        time.Duration
	NotificationTTL time.Duration
	Metrics         *Metrics
	Log             *zap.Logger
}

// SellDesk is one operator's sale screen: catalog snapshot, search box, cart
// and checkout, wired together.
type SellDesk struct {
	log     *zap.Logger
	metrics *Metrics

	Catalog  *catalog.Cache
	Search   *search.Engine
	Cart     *cart.Cart
	Checkout *checkout.Orchestrator
	Notes    *notify.Center

	mu          sync.Mutex
	loading     int // reloads in flight
	initialized bool
}

func NewSellDesk(client SalesClient, opts DeskOptions) *SellDesk {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	d := &SellDesk{
		log:     log,
		metrics: opts.Metrics,
		Notes:   notify.NewCenter(opts.NotificationTTL),
	}

	d.Catalog = catalog.NewCache(client, log, d.metrics.observeCatalogLoad)
	d.Search = search.NewEngine(d.Catalog, opts.Debounce, d.metrics.observeSearch)
	d.Cart = cart.New(d.Catalog)
	d.Checkout = checkout.New(checkout.Deps{
		Cart:     d.Cart,
		Seller:   client,
		Reloader: d,
		Notifier: d.Notes,
		Log:      log,
		Observe:  d.metrics.observeCheckout,
	})

	return d
}

// Initialize loads the catalog for the first time. The host calls it once
// when the screen opens; calling it again reloads.
func (d *SellDesk) Initialize(ctx context.Context) error {
	err := d.Reload(ctx)

	d.mu.Lock()
	if err == nil {
		d.initialized = true
	}
	d.mu.Unlock()

	return err
}

// Reload replaces the catalog snapshot and re-runs the current search
// against it.
func (d *SellDesk) Reload(ctx context.Context) error {
	d.setLoading(1)
	defer d.setLoading(-1)

	if _, err := d.Catalog.Load(ctx); err != nil {
		if !errors.Is(err, backend.ErrAuthExpired) {
			d.Notes.Notify(notify.Error, "Failed to load products")
		}
		return err
	}

	d.Notes.Notify(notify.Success, "Products loaded successfully")
	if d.Search.Results().Query != "" {
		d.Search.Requery()
	}
	return nil
}

func (d *SellDesk) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

func (d *SellDesk) setLoading(delta int) {
	d.mu.Lock()
	d.loading += delta
	d.mu.Unlock()
}

func (d *SellDesk) Query(q string) { d.Search.Query(q) }

// Add puts one unit of the catalog product id in the cart.
func (d *SellDesk) Add(id string) error {
	p, ok := d.Catalog.Product(id)
	if !ok {
		d.Notes.Notify(notify.Error, "Product not found")
		return ErrUnknownProduct
	}

	_, err := d.Cart.Add(p)
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		d.Notes.Notify(notify.Error, "Product is out of stock")
	case errors.Is(err, cart.ErrStockExceeded):
		d.Notes.Notify(notify.Error, "Cannot add more than available stock")
	case err == nil:
		d.Notes.Notify(notify.Success, p.Name+" added to cart")
	}
	return err
}

// SetQuantity applies a direct quantity edit. A clamped edit returns
// cart.ErrStockExceeded even though the clamped value was applied.
func (d *SellDesk) SetQuantity(id string, qty int) error {
	_, err := d.Cart.SetQuantity(id, qty)
	if errors.Is(err, cart.ErrStockExceeded) {
		d.Notes.Notify(notify.Error, "Cannot exceed available stock")
	}
	return err
}

func (d *SellDesk) Remove(id string) {
	if !d.Cart.Remove(id) {
		return
	}

	name := id
	if p, ok := d.Catalog.Product(id); ok {
		name = p.Name
	}
	d.Notes.Notify(notify.Success, name+" removed from cart")
}

func (d *SellDesk) SetBillTo(email string) { d.Checkout.SetBillTo(email) }

func (d *SellDesk) CheckoutNow(ctx context.Context) (checkout.Outcome, error) {
	return d.Checkout.Submit(ctx)
}

func (d *SellDesk) Close() { d.Search.Close() }

type ProductView struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	PriceCents int64              `json:"price_cents"`
	Price      string             `json:"price"`
	Stock      int                `json:"stock"`
	Level      catalog.StockLevel `json:"stock_level"`
	Category   string             `json:"category,omitempty"`
}

func productView(p backend.Product) ProductView {
	return ProductView{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Price:      money.Format(p.PriceCents),
		Stock:      p.Stock,
		Level:      catalog.LevelOf(p.Stock),
		Category:   p.Category,
	}
}

func productViews(ps []backend.Product) []ProductView {
	out := make([]ProductView, 0, len(ps))
	for _, p := range ps {
		out = append(out, productView(p))
	}
	return out
}

type LineView struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	MaxQuantity    int    `json:"max_quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	LineTotal      string `json:"line_total"`
}

type SearchView struct {
	Query     string        `json:"query"`
	Evaluated string        `json:"evaluated"`
	Searching bool          `json:"searching"`
	Results   []ProductView `json:"results"`
	Summary   string        `json:"summary,omitempty"`
}

type DeskView struct {
	Loading       bool                  `json:"loading"`
	Products      int                   `json:"products"`
	Search        SearchView            `json:"search"`
	Cart          []LineView            `json:"cart"`
	TotalCents    int64                 `json:"total_cents"`
	Total         string                `json:"total"`
	BillTo        string                `json:"bill_to"`
	Checkout      checkout.State        `json:"checkout"`
	Selling       bool                  `json:"selling"`
	Notifications []notify.Notification `json:"notifications"`
	Warning       string                `json:"warning,omitempty"`
}

func (d *SellDesk) SearchView() SearchView {
	sr := d.Search.Results()
	sv := SearchView{
		Query:     sr.Query,
		Evaluated: sr.Evaluated,
		Searching: sr.Searching,
		Results:   productViews(sr.Products),
	}
	if sr.Query != "" {
		if sr.Searching {
			sv.Summary = "Searching..."
		} else {
			sv.Summary = fmt.Sprintf("Found %d products", len(sr.Products))
		}
	}
	return sv
}

// Products lists the whole catalog snapshot.
func (d *SellDesk) Products() []ProductView { return productViews(d.Catalog.Products()) }

// View renders the desk. Cart lines are priced at the current catalog
// snapshot, the same way Total is.
func (d *SellDesk) View() DeskView {
	d.mu.Lock()
	loading := d.loading > 0
	d.mu.Unlock()

	lines := d.Cart.Lines()
	lv := make([]LineView, 0, len(lines))
	for _, l := range lines {
		v := LineView{ProductID: l.ProductID, Name: l.ProductID, Quantity: l.Quantity, MaxQuantity: l.Quantity}
		if p, ok := d.Catalog.Product(l.ProductID); ok {
			v.Name = p.Name
			v.UnitPriceCents = p.PriceCents
			v.LineTotalCents = p.PriceCents * int64(l.Quantity)
			if p.Stock > 0 {
				v.MaxQuantity = p.Stock
			}
		}
		v.LineTotal = money.Format(v.LineTotalCents)
		lv = append(lv, v)
	}

	total := d.Cart.Total()

	return DeskView{
		Loading:       loading,
		Products:      d.Catalog.Len(),
		Search:        d.SearchView(),
		Cart:          lv,
		TotalCents:    total,
		Total:         money.Format(total),
		BillTo:        d.Checkout.BillTo(),
		Checkout:      d.Checkout.State(),
		Selling:       d.Checkout.Busy(),
		Notifications: d.Notes.Active(),
	}
}
