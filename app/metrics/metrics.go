package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Production outcomes, used as the "outcome" label.
const (
	OutcomeCommitted    = "committed"
	OutcomeInvalid      = "invalid_input"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	productionRuns     *prometheus.CounterVec
	unitsProduced      prometheus.Counter
	suggestionDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		productionRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factory",
			Name:      "production_requests_total",
			Help:      "Production requests by outcome.",
		}, []string{"outcome"}),
		unitsProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: "factory",
			Name:      "units_produced_total",
			Help:      "Product units committed by production runs.",
		}),
		suggestionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "factory",
			Name:      "suggestion_duration_seconds",
			Help:      "Time spent computing production suggestions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factory",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "method", "code"}),
	}
}

func (m *Metrics) ObserveProduction(outcome string, units int64) {
	if m == nil {
		return
	}
	m.productionRuns.WithLabelValues(outcome).Inc()
	if units > 0 {
		m.unitsProduced.Add(float64(units))
	}
}

func (m *Metrics) ObserveSuggestion(strategy string, started time.Time) {
	if m == nil {
		return
	}
	m.suggestionDuration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
}

// Route counts requests served by h under its route pattern, so path ids do
// not explode label cardinality.
func (m *Metrics) Route(pattern string, h http.Handler) http.Handler {
	if m == nil {
		return h
	}
	counter := m.httpRequests.MustCurryWith(prometheus.Labels{"route": pattern})
	return promhttp.InstrumentHandlerCounter(counter, h)
}
