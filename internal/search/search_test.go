package search

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniStoreConsole/internal/backend"
)

type staticSource []backend.Product

func (s staticSource) Products() []backend.Product { return s }

var products = staticSource{
	{ID: "1", Name: "Apple Juice", Category: "Drinks", Stock: 4},
	{ID: "2", Name: "Pen", Category: "Stationery", Stock: 5},
	{ID: "3", Name: "Pineapple", Stock: 2},
	{ID: "4", Name: "Stapler"},
}

func names(ps []backend.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"name substring any case", "APP", []string{"Apple Juice", "Pineapple"}},
		{"category match", "drink", []string{"Apple Juice"}},
		{"category or name", "sta", []string{"Pen", "Stapler"}},
		{"inner space matches", "e j", []string{"Apple Juice"}},
		{"trailing space is significant", "juice ", []string{}},
		{"blank yields nothing", "   ", []string{}},
		{"empty yields nothing", "", []string{}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Match(products, tt.query)))
		})
	}
}

func TestMatchMissingCategoryNeverMatchesOnCategory(t *testing.T) {
	got := Match(staticSource{{ID: "9", Name: "Widget"}}, "drinks")
	assert.Empty(t, got)
}

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)

	var mu sync.Mutex
	var ran []int
	for i := 1; i <= 3; i++ {
		i := i
		d.Trigger(func() {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
		})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{3}, ran)
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Bool
	d.Trigger(func() { fired.Store(true) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestEngineCoalescesBurstIntoOneEvaluation(t *testing.T) {
	var observed []string
	var mu sync.Mutex
	e := NewEngine(products, DefaultDelay, func(q string, _ int) {
		mu.Lock()
		observed = append(observed, q)
		mu.Unlock()
	})

	e.Query("a")
	time.Sleep(30 * time.Millisecond)
	e.Query("ap")
	time.Sleep(30 * time.Millisecond)
	e.Query("app")

	assert.True(t, e.Results().Searching)

	require.Eventually(t, func() bool { return e.Evaluations() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(DefaultDelay + 100*time.Millisecond)

	assert.Equal(t, 1, e.Evaluations())

	r := e.Results()
	assert.Equal(t, "app", r.Query)
	assert.Equal(t, "app", r.Evaluated)
	assert.False(t, r.Searching)
	assert.Equal(t, []string{"Apple Juice", "Pineapple"}, names(r.Products))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"app"}, observed)
}

func TestEngineStaleQueryNeverOverwrites(t *testing.T) {
	e := NewEngine(products, 20*time.Millisecond, nil)

	for _, q := range []string{"p", "pe", "pen", "pine"} {
		e.Query(q)
	}

	require.Eventually(t, func() bool { return !e.Results().Searching }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	r := e.Results()
	assert.Equal(t, "pine", r.Evaluated)
	assert.Equal(t, []string{"Pineapple"}, names(r.Products))
}

func TestEngineRequeryAndClose(t *testing.T) {
	src := &swapSource{}
	src.set(staticSource{{ID: "1", Name: "Pen", Stock: 1}})
	e := NewEngine(src, 10*time.Millisecond, nil)

	e.Query("pen")
	require.Eventually(t, func() bool { return e.Evaluations() == 1 }, time.Second, 5*time.Millisecond)

	src.set(staticSource{{ID: "1", Name: "Pen", Stock: 1}, {ID: "2", Name: "Pen Refill", Stock: 3}})
	e.Requery()
	require.Eventually(t, func() bool { return e.Evaluations() == 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, e.Results().Products, 2)

	e.Query("x")
	e.Close()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 2, e.Evaluations())
	assert.False(t, e.Results().Searching)
}

// gatedSource blocks Products until release is closed.
type gatedSource struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSource) Products() []backend.Product {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return products
}

func TestEngineRunningEvaluationYieldsToNewerQuery(t *testing.T) {
	src := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEngine(src, 10*time.Millisecond, nil)

	e.Query("app")
	select {
	case <-src.entered:
	case <-time.After(time.Second):
		t.Fatal("evaluation of app never started")
	}

	queried := make(chan struct{})
	go func() {
		e.Query("pen")
		close(queried)
	}()

	require.Eventually(t, func() bool { return e.Results().Query == "pen" }, time.Second, time.Millisecond)
	close(src.release)
	<-queried

	r := e.Results()
	assert.Equal(t, "pen", r.Query)
	assert.Empty(t, r.Evaluated, "results for app must not surface under pen")
	assert.True(t, r.Searching)

	require.Eventually(t, func() bool { return !e.Results().Searching }, time.Second, 5*time.Millisecond)
	r = e.Results()
	assert.Equal(t, "pen", r.Evaluated)
	assert.Equal(t, []string{"Pen"}, names(r.Products))
	assert.Equal(t, 1, e.Evaluations())
}

type swapSource struct {
	mu sync.Mutex
	ps staticSource
}

func (s *swapSource) set(ps staticSource) {
	s.mu.Lock()
	s.ps = ps
	s.mu.Unlock()
}

func (s *swapSource) Products() []backend.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ps
}
