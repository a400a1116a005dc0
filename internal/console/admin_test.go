package console

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniStoreConsole/internal/backend"
)

type fakeAdmin struct {
	mu       sync.Mutex
	products []backend.Product
	pending  []backend.User
	gate     chan struct{}
	decided  []string
	err      error
}

func (f *fakeAdmin) AdminProducts(context.Context) ([]backend.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Product(nil), f.products...), f.err
}

func (f *fakeAdmin) CreateProduct(_ context.Context, in backend.ProductInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, backend.Product{ID: in.Name, Name: in.Name, PriceCents: in.PriceCents, Stock: in.Stock})
	return nil
}

func (f *fakeAdmin) UpdateProduct(context.Context, string, backend.ProductInput) error { return nil }

func (f *fakeAdmin) DeleteProduct(context.Context, string) error { return nil }

func (f *fakeAdmin) AllUsers(context.Context) ([]backend.User, error) { return nil, nil }

func (f *fakeAdmin) PendingUsers(context.Context) ([]backend.User, error) {
	return f.pending, nil
}

func (f *fakeAdmin) ApproveUser(_ context.Context, email string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.decided = append(f.decided, email)
	f.mu.Unlock()
	return "ok", nil
}

func (f *fakeAdmin) RejectUser(ctx context.Context, email string) (string, error) {
	return f.ApproveUser(ctx, email)
}

func TestCreateRefreshesList(t *testing.T) {
	f := &fakeAdmin{}
	a := NewAdminDesk(f)

	ps, err := a.Create(context.Background(), ProductForm{Name: "Pen", MRP: "10", Stock: "5"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, int64(1000), ps[0].PriceCents)
}

func TestCreateInvalidMakesNoCall(t *testing.T) {
	f := &fakeAdmin{}
	a := NewAdminDesk(f)

	_, err := a.Create(context.Background(), ProductForm{Name: "Pen"})
	require.ErrorIs(t, err, backend.ErrValidation)
	assert.Empty(t, f.products)
}

func TestDecisionIsGuardedPerEmail(t *testing.T) {
	f := &fakeAdmin{gate: make(chan struct{})}
	a := NewAdminDesk(f)

	done := make(chan error, 1)
	go func() {
		_, err := a.Approve(context.Background(), "hire@shop.test")
		done <- err
	}()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.deciding["hire@shop.test"]
	}, time.Second, time.Millisecond)

	_, err := a.Reject(context.Background(), "HIRE@shop.test")
	assert.ErrorIs(t, err, ErrDecisionPending)

	close(f.gate)
	require.NoError(t, <-done)

	msg, err := a.Reject(context.Background(), "hire@shop.test")
	require.NoError(t, err)
	assert.Equal(t, "Rejected: hire@shop.test", msg)
	assert.Equal(t, []string{"hire@shop.test", "hire@shop.test"}, f.decided)
}

func TestOverviewCountsStockLevels(t *testing.T) {
	f := &fakeAdmin{
		products: []backend.Product{
			{ID: "1", Stock: 50},
			{ID: "2", Stock: 10},
			{ID: "3", Stock: 0},
		},
		pending: []backend.User{{Email: "hire@shop.test"}},
	}

	ov, err := NewAdminDesk(f).Overview(context.Background())
	require.NoError(t, err)
	assert.Len(t, ov.Products, 3)
	assert.Len(t, ov.PendingUsers, 1)
	assert.Equal(t, 1, ov.LowStock)
	assert.Equal(t, 1, ov.OutOfStock)
}

func TestOverviewFailsWhenEitherHalfFails(t *testing.T) {
	f := &fakeAdmin{err: backend.ErrAuthExpired}

	_, err := NewAdminDesk(f).Overview(context.Background())
	assert.ErrorIs(t, err, backend.ErrAuthExpired)
}
