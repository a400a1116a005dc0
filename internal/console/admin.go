package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/search"
)

// AdminClient is the slice of the backend the admin dashboard needs.
type AdminClient interface {
	AdminProducts(ctx context.Context) ([]backend.Product, error)
	CreateProduct(ctx context.Context, in backend.ProductInput) error
	UpdateProduct(ctx context.Context, id string, in backend.ProductInput) error
	DeleteProduct(ctx context.Context, id string) error
	AllUsers(ctx context.Context) ([]backend.User, error)
	PendingUsers(ctx context.Context) ([]backend.User, error)
	ApproveUser(ctx context.Context, email string) (string, error)
	RejectUser(ctx context.Context, email string) (string, error)
}

var ErrDecisionPending = errors.New("a decision for this user is already in progress")

// ProductForm is the admin add/edit form as typed by the operator.
type ProductForm struct {
	Name     string `json:"name"`
	MRP      string `json:"mrp"`
	Stock    string `json:"stock"`
	Category string `json:"category,omitempty"`
}

// AdminDesk backs the admin dashboard: product table and user approvals.
type AdminDesk struct {
	client AdminClient

	mu       sync.Mutex
	deciding map[string]bool
}

func NewAdminDesk(client AdminClient) *AdminDesk {
	return &AdminDesk{client: client, deciding: map[string]bool{}}
}

// Products refreshes the product table and returns the rows matching filter
// by name or category. An empty filter returns every row.
func (a *AdminDesk) Products(ctx context.Context, filter string) ([]backend.Product, error) {
	ps, err := a.client.AdminProducts(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter) == "" {
		return ps, nil
	}
	return search.Match(ps, filter), nil
}

func (a *AdminDesk) Create(ctx context.Context, f ProductForm) ([]backend.Product, error) {
	in, err := f.Parse()
	if err != nil {
		return nil, err
	}
	if err := a.client.CreateProduct(ctx, in); err != nil {
		return nil, err
	}
	return a.Products(ctx, "")
}

func (a *AdminDesk) Update(ctx context.Context, id string, f ProductForm) ([]backend.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, backend.Invalid("id", "Product id is required")
	}
	in, err := f.Parse()
	if err != nil {
		return nil, err
	}
	if err := a.client.UpdateProduct(ctx, id, in); err != nil {
		return nil, err
	}
	return a.Products(ctx, "")
}

func (a *AdminDesk) Delete(ctx context.Context, id string) ([]backend.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, backend.Invalid("id", "Product id is required")
	}
	if err := a.client.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return a.Products(ctx, "")
}

func (a *AdminDesk) AllUsers(ctx context.Context) ([]backend.User, error) {
	return a.client.AllUsers(ctx)
}

func (a *AdminDesk) PendingUsers(ctx context.Context) ([]backend.User, error) {
	return a.client.PendingUsers(ctx)
}

// Approve admits a pending employee. Concurrent decisions for the same email
// are refused while one is in flight.
func (a *AdminDesk) Approve(ctx context.Context, email string) (string, error) {
	return a.decide(ctx, email, a.client.ApproveUser, "Successfully approved: ")
}

func (a *AdminDesk) Reject(ctx context.Context, email string) (string, error) {
	return a.decide(ctx, email, a.client.RejectUser, "Rejected: ")
}

func (a *AdminDesk) decide(ctx context.Context, email string, call func(context.Context, string) (string, error), prefix string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", backend.Invalid("email", "Email is required")
	}

	a.mu.Lock()
	if a.deciding[email] {
		a.mu.Unlock()
		return "", ErrDecisionPending
	}
	a.deciding[email] = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.deciding, email)
		a.mu.Unlock()
	}()

	if _, err := call(ctx, email); err != nil {
		return "", err
	}
	return prefix + email, nil
}

type Overview struct {
	Products     []backend.Product `json:"products"`
	PendingUsers []backend.User    `json:"pending_users"`
	LowStock     int               `json:"low_stock"`
	OutOfStock   int               `json:"out_of_stock"`
}

// Overview loads the product table and the approval queue concurrently.
func (a *AdminDesk) Overview(ctx context.Context) (Overview, error) {
	var ov Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := a.Products(gctx, "")
		ov.Products = ps
		return err
	})
	g.Go(func() error {
		us, err := a.client.PendingUsers(gctx)
		ov.PendingUsers = us
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	for _, p := range ov.Products {
		switch {
		case p.Stock <= 0:
			ov.OutOfStock++
		case p.Stock <= 10:
			ov.LowStock++
		}
	}
	return ov, nil
}
