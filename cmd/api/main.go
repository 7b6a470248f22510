package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/meatshare/orderbook-backend/api/routes"
	"github.com/meatshare/orderbook-backend/api/templates"
	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/export"
	"github.com/meatshare/orderbook-backend/internal/orders"
	"github.com/meatshare/orderbook-backend/internal/parties"
	"github.com/meatshare/orderbook-backend/internal/settings"
	"github.com/meatshare/orderbook-backend/pkg/auth/session"
	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/db"
	"github.com/meatshare/orderbook-backend/pkg/logger"
	"github.com/meatshare/orderbook-backend/pkg/metrics"
	"github.com/meatshare/orderbook-backend/pkg/migrate"
	"github.com/meatshare/orderbook-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "orderbook"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "orderbook",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	closeAll := func() {
		err := multierr.Combine(redisClient.Close(), dbClient.Close())
		if err != nil {
			logg.Error(context.Background(), "error closing dependencies", err)
		}
	}
	defer closeAll()

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(cfg.Catalog, catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		parties.NewRepository(dbClient.DB()),
		catalogSvc,
		settingsSvc,
		cfg.Pin,
		cfg.FeatureFlags.RequirePin,
		validator.New(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	tmpl, err := templates.New()
	if err != nil {
		logg.Error(context.Background(), "failed to parse templates", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting orderbook server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Templates:   tmpl,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Registry:    registry,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Orders:      ordersSvc,
			Catalog:     catalogSvc,
			Settings:    settingsSvc,
			PDF:         export.NewRenderer(),
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server stopped unexpectedly", err)
			closeAll()
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
