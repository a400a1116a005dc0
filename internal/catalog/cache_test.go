package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniStoreConsole/internal/backend"
)

type fakeLoader struct {
	mu    sync.Mutex
	lists [][]Product
	err   error
	calls int
}

func (f *fakeLoader) Catalog(context.Context) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return out, nil
}

func TestLoadReplacesWholesale(t *testing.T) {
	l := &fakeLoader{lists: [][]Product{
		{{ID: "1", Name: "Pen", PriceCents: 1000, Stock: 5}, {ID: "2", Name: "Ink", PriceCents: 200, Stock: 1}},
		{{ID: "2", Name: "Ink", PriceCents: 250, Stock: 0}},
	}}
	c := NewCache(l, nil, nil)

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), c.Version())

	_, err = c.Load(context.Background())
	require.NoError(t, err)

	_, ok := c.Product("1")
	assert.False(t, ok, "product dropped by the backend must vanish")

	p, ok := c.Product("2")
	require.True(t, ok)
	assert.Equal(t, int64(250), p.PriceCents)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 1, c.Len())
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	l := &fakeLoader{lists: [][]Product{{{ID: "1", Name: "Pen", Stock: 5}}}}

	var seen []error
	c := NewCache(l, nil, func(err error) { seen = append(seen, err) })

	_, err := c.Load(context.Background())
	require.NoError(t, err)

	l.err = backend.ErrNetwork
	_, err = c.Load(context.Background())
	assert.ErrorIs(t, err, backend.ErrNetwork)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Version())
	require.Len(t, seen, 2)
	assert.NoError(t, seen[0])
	assert.True(t, errors.Is(seen[1], backend.ErrNetwork))
}

func TestProductsReturnsCopy(t *testing.T) {
	c := NewCache(&fakeLoader{}, nil, nil)
	c.Replace([]Product{{ID: "1", Name: "Pen", Stock: 5}})

	list := c.Products()
	list[0].Stock = 99

	p, _ := c.Product("1")
	assert.Equal(t, 5, p.Stock)
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, InStock, LevelOf(11))
	assert.Equal(t, LowStock, LevelOf(10))
	assert.Equal(t, LowStock, LevelOf(1))
	assert.Equal(t, OutOfStock, LevelOf(0))
}
