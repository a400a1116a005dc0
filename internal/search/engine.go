package search

import (
	"sync"
	"time"

	"MiniStoreConsole/internal/backend"
)

const DefaultDelay = 300 * time.Millisecond

// Source supplies the snapshot to search. catalog.Cache satisfies it.
type Source interface {
	Products() []backend.Product
}

// Results is what the search box shows. Query is the latest input; Evaluated
// is the query the products were computed for.
type Results struct {
	Query     string            `json:"query"`
	Evaluated string            `json:"evaluated"`
	Products  []backend.Product `json:"products"`
	Searching bool              `json:"searching"`
}

type Engine struct {
	source   Source
	debounce *Debouncer
	observe  func(query string, matches int)

	// inputMu orders Query calls so the recorded query and the scheduled
	// evaluation always agree.
	inputMu sync.Mutex

	mu          sync.Mutex
	query       string
	gen         uint64
	evaluated   string
	results     []backend.Product
	searching   bool
	evaluations int
}

// NewEngine builds an engine over source. A delay of zero or less uses DefaultDelay.
// observe, if set, is called after every evaluation.
func NewEngine(source Source, delay time.Duration, observe func(query string, matches int)) *Engine {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Engine{
		source:   source,
		debounce: NewDebouncer(delay),
		observe:  observe,
		results:  []backend.Product{},
	}
}

// Query records the operator's input and schedules an evaluation.
func (e *Engine) Query(q string) {
	e.inputMu.Lock()
	defer e.inputMu.Unlock()

	e.mu.Lock()
	e.query = q
	e.gen++
	gen := e.gen
	e.searching = true
	e.mu.Unlock()

	e.debounce.Trigger(func() { e.evaluate(q, gen) })
}

// Requery re-runs the current query, e.g. after the catalog was reloaded.
func (e *Engine) Requery() {
	e.mu.Lock()
	q := e.query
	e.mu.Unlock()

	e.Query(q)
}

// evaluate publishes only if no newer query arrived while it ran.
func (e *Engine) evaluate(q string, gen uint64) {
	matches := Match(e.source.Products(), q)

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}
	e.evaluated = q
	e.results = matches
	e.searching = false
	e.evaluations++
	e.mu.Unlock()

	if e.observe != nil {
		e.observe(q, len(matches))
	}
}

func (e *Engine) Results() Results {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Results{
		Query:     e.query,
		Evaluated: e.evaluated,
		Products:  append([]backend.Product(nil), e.results...),
		Searching: e.searching,
	}
}

// Evaluations counts result sets computed so far.
func (e *Engine) Evaluations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluations
}

// Close cancels any pending evaluation.
func (e *Engine) Close() {
	if e.debounce.Cancel() {
		e.mu.Lock()
		e.searching = false
		e.mu.Unlock()
	}
}
