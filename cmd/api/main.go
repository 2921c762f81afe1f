package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sportshoplabs/sportshop-backend/api/routes"
	"github.com/sportshoplabs/sportshop-backend/internal/cart"
	"github.com/sportshoplabs/sportshop-backend/internal/catalog"
	"github.com/sportshoplabs/sportshop-backend/internal/discounts"
	"github.com/sportshoplabs/sportshop-backend/internal/invoices"
	"github.com/sportshoplabs/sportshop-backend/internal/orders"
	"github.com/sportshoplabs/sportshop-backend/internal/payments"
	"github.com/sportshoplabs/sportshop-backend/internal/reviews"
	"github.com/sportshoplabs/sportshop-backend/internal/users"
	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
	"github.com/sportshoplabs/sportshop-backend/pkg/metrics"
	"github.com/sportshoplabs/sportshop-backend/pkg/migrate"
	"github.com/sportshoplabs/sportshop-backend/pkg/redis"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	discountRepo := discounts.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	catalogService, err := catalog.NewService(catalogRepo, cfg.Site)
	requireService(logg, "catalog", err)

	discountService, err := discounts.NewService(discountRepo)
	requireService(logg, "discounts", err)

	cartService, err := cart.NewService(cartRepo, catalogRepo, discountRepo)
	requireService(logg, "cart", err)

	orderService, err := orders.NewService(orderRepo, dbClient, catalogRepo, discountRepo)
	requireService(logg, "orders", err)

	paymentService, err := payments.NewService(paymentRepo, orderRepo)
	requireService(logg, "payments", err)

	reviewService, err := reviews.NewService(reviewRepo, catalogRepo)
	requireService(logg, "reviews", err)

	userService, err := users.NewService(userRepo, catalogRepo, redisClient, cfg.Password, cfg.JWT, cfg.AuthRateLimit)
	requireService(logg, "users", err)

	invoiceRenderer, err := invoices.NewRenderer(cfg.Invoice, logg)
	requireService(logg, "invoices", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, registry, httpMetrics,
			catalogService, discountService, cartService, orderService,
			paymentService, reviewService, userService, invoiceRenderer,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
