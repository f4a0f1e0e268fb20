package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biju-kart/internal/cart"
	"biju-kart/internal/config"
	"biju-kart/internal/coupon"
	"biju-kart/internal/database"
	"biju-kart/internal/handler"
	"biju-kart/internal/payment"
	"biju-kart/internal/repository"
	"biju-kart/internal/router"
	"biju-kart/internal/service"
	"biju-kart/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("store", cfg.Store.Backend).Msg("starting biju-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	snapshots, closeStore, err := newStore(ctx, cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart store: %w", err)
	}
	defer closeStore()

	coupons, err := newCouponService(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon service: %w", err)
	}
	defer coupons.Close()

	carts := cart.NewProvider(snapshots, coupons, cart.ProviderOptions{
		KeyPrefix: cfg.Cart.KeyPrefix,
		Pricing: cart.Pricing{
			FreeShippingAbove: cfg.Cart.FreeShippingAbove,
			FlatShippingFee:   cfg.Cart.FlatShippingFee,
		},
	}, logger)

	if ttl := cfg.Cart.IdleTTL(); ttl > 0 {
		go carts.RunEviction(ctx, cfg.Cart.EvictInterval(), ttl)
	}

	gateway := payment.NewSimulatedGateway(payment.GatewayConfig{
		Latency:       cfg.Payment.Latency(),
		StatusLatency: cfg.Payment.StatusLatency(),
	}, logger)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	cartService := service.NewCartService(carts, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, carts, gateway, logger)

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newStore opens the configured cart snapshot backend.
func newStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case store.BackendMemory:
		logger.Warn().Msg("cart snapshots are kept in memory and lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	case store.BackendRedis:
		client, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.Store.TTL(), logger), func() { _ = client.Close() }, nil

	case store.BackendMongo:
		client, err := store.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store.NewMongoStore(collection, logger), closeFn, nil

	case store.BackendPostgres:
		return store.NewPostgresStore(pool, logger), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// newCouponService builds the coupon service, reading policy files from S3
// first when enabled and from the local file system otherwise.
func newCouponService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (coupon.Service, error) {
	fileLoader := coupon.NewFileLoader(logger)

	var s3Loader coupon.Loader
	if cfg.S3.Enabled {
		loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else if len(cfg.Coupon.Files) > 0 {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)

	return coupon.NewService(ctx, &coupon.ServiceConfig{
		FilePaths: cfg.Coupon.Files,
		Latency:   cfg.Coupon.Latency(),
	}, loader, logger)
}
