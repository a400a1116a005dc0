package console

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"MiniStoreConsole/internal/backend"
)

const namespace = "console"

// Metrics counts sale-desk activity. A nil *Metrics records nothing.
type Metrics struct {
	Checkouts    *prometheus.CounterVec
	CatalogLoads *prometheus.CounterVec
	Searches     prometheus.Counter
	Sessions     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"}),
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog loads by outcome",
		}, []string{"outcome"}),
		Searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_evaluations_total",
			Help:      "Debounced search evaluations",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Signed-in operator workspaces",
		}),
	}

	reg.MustRegister(m.Checkouts, m.CatalogLoads, m.Searches, m.Sessions)
	return m
}

func (m *Metrics) observeCheckout(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeCatalogLoad(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, backend.ErrAuthExpired):
		outcome = "auth_expired"
	case err != nil:
		outcome = "error"
	}
	m.CatalogLoads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeSearch(string, int) {
	if m == nil {
		return
	}
	m.Searches.Inc()
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}
