package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/factoryops/inventory/app/logging"
	"github.com/factoryops/inventory/app/materials"
	"github.com/factoryops/inventory/app/metrics"
	"github.com/factoryops/inventory/app/production"
	"github.com/factoryops/inventory/app/products"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Materials  *materials.MaterialHandler
	Products   *products.ProductHandler
	Production *production.ProductionHandler
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	// Gatherer exposes /metrics when set.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

type Server struct {
	srv *http.Server
}

func New(h Handlers, opts Options) *Server {
	return &Server{srv: &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// NewHandler builds the routed handler with its middleware chain.
func NewHandler(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, opts.Metrics.Route(pattern, fn))
	}

	route("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	route("GET /production-suggestion", h.Production.HandleSuggest)
	route("GET /production-suggestion/export", h.Production.HandleExport)
	route("POST /production-suggestion/produce/{productId}", h.Production.HandleProduce)
	route("GET /production-runs", h.Production.HandleListRuns)

	route("GET /materials", h.Materials.HandleGetAll)
	route("POST /materials", h.Materials.HandleCreate)
	route("GET /materials/{id}", h.Materials.HandleGet)
	route("PUT /materials/{id}", h.Materials.HandleUpdate)
	route("DELETE /materials/{id}", h.Materials.HandleDelete)
	route("GET /materials/{id}/movements", h.Materials.HandleMovements)

	route("GET /products", h.Products.HandleGetAll)
	route("POST /products", h.Products.HandleCreate)
	route("GET /products/{id}", h.Products.HandleGet)
	route("PUT /products/{id}", h.Products.HandleUpdate)
	route("DELETE /products/{id}", h.Products.HandleDelete)
	route("POST /products/{id}/materials", h.Products.HandleAddMaterial)
	route("DELETE /products/{id}/materials/{materialId}", h.Products.HandleRemoveMaterial)

	var handler http.Handler = mux
	handler = newCORS(opts.AllowedOrigins).Handler(handler)
	if opts.Log != nil {
		handler = logging.Middleware(opts.Log, handler)
	}
	return handler
}

func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
