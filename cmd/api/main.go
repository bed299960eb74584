package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/jmkoster/stockroom-backend/api/routes"
	"github.com/jmkoster/stockroom-backend/internal/auth"
	"github.com/jmkoster/stockroom-backend/internal/catalog"
	order "github.com/jmkoster/stockroom-backend/internal/orders"
	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	product "github.com/jmkoster/stockroom-backend/internal/products"
	user "github.com/jmkoster/stockroom-backend/internal/users"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/instance"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/metrics"
	"github.com/jmkoster/stockroom-backend/pkg/migrate"
	"github.com/jmkoster/stockroom-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	userRepo := user.NewRepository(dbClient.DB())
	permRepo := permission.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	productRepo := product.NewRepository(dbClient.DB())
	orderRepo := order.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, cfg.Auth)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	permService, err := permission.NewService(permRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create permission service", err)
		os.Exit(1)
	}

	userService, err := user.NewService(userRepo, permRepo, dbClient, cfg.Auth)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(productRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := order.NewService(orderRepo, productRepo, dbClient, cfg.Orders)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			metricsHandler,
			authService,
			permService,
			userService,
			catalogService,
			productService,
			orderService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		var errs error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = multierr.Append(errs, err)
		}
		if err := redisClient.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
		if err := dbClient.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
		if errs != nil {
			logg.Error(ctx, "shutdown finished with errors", errs)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")

	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			closeErr := multierr.Combine(err, redisClient.Close(), dbClient.Close())
			logg.Error(ctx, "api server stopped unexpectedly", closeErr)
			os.Exit(1)
		}
	}
}
