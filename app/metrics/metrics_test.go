package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveProduction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveProduction(OutcomeCommitted, 5)
	m.ObserveProduction(OutcomeCommitted, 2)
	m.ObserveProduction(OutcomeInsufficient, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.productionRuns.WithLabelValues(OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.productionRuns.WithLabelValues(OutcomeInsufficient)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.unitsProduced))
}

func TestObserveSuggestion(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSuggestion("greedy", time.Now().Add(-10*time.Millisecond))

	assert.Equal(t, 1, testutil.CollectAndCount(m.suggestionDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveProduction(OutcomeCommitted, 1)
		m.ObserveSuggestion("highest-value", time.Now())
	})

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, m.Route("GET /health", next))
}

func TestRoute(t *testing.T) {
	m := New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.Handle("GET /materials/{id}", m.Route("GET /materials/{id}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	mux.Handle("POST /materials", m.Route("POST /materials", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/materials/1", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/materials/2", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/materials", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /materials/{id}", "get", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST /materials", "post", "201")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpRequests))
}
