package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/factoryops/inventory/app/config"
	"github.com/factoryops/inventory/app/database"
	"github.com/factoryops/inventory/app/events"
	"github.com/factoryops/inventory/app/logging"
	"github.com/factoryops/inventory/app/materials"
	"github.com/factoryops/inventory/app/metrics"
	"github.com/factoryops/inventory/app/production"
	"github.com/factoryops/inventory/app/products"
	"github.com/factoryops/inventory/app/server"
	"github.com/factoryops/inventory/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)
	if cfg.UsesDefaultDSN() {
		log.Warn("DATABASE_DSN not set, using local default")
	}

	if err := database.Migrate(cfg.Database.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	db, err := database.Open(cfg.Database.DSN, log)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("db handle failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()
	log.Info("db connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reg      *prometheus.Registry
		gatherer prometheus.Gatherer
		m        *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	publisher := events.New(cfg.KafkaBrokers(), log)
	defer func() { _ = publisher.Close() }()
	notifier := events.NewNotifier(publisher, cfg.Kafka.Topic)

	materialsRepo := models.NewMaterialsRepository(db)
	productsRepo := models.NewProductsRepository(db)
	stock := models.NewStockStore(db, cfg.Stock.LockTimeout)

	planner := production.NewPlanner(productsRepo, stock, m)
	executor := production.NewExecutor(productsRepo, stock, notifier, m, log.With("component", "production"))

	srv := server.New(server.Handlers{
		Materials:  materials.NewMaterialHandler(materialsRepo),
		Products:   products.NewProductHandler(productsRepo),
		Production: production.NewProductionHandler(planner, executor, stock),
	}, server.Options{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.CORSOrigins(),
		Gatherer:       gatherer,
		Metrics:        m,
		Log:            log,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "kafka", len(cfg.KafkaBrokers()) > 0)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("graceful shutdown complete")
}
