package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/migrate"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate.Apply(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	// Post-commit notifications
	notifier, closeNotifier := buildNotifier(cfg.Notify, notificationRepo, logger)
	defer closeNotifier()

	broadcaster := notify.NewBroadcaster(notifier, cfg.Notify.Timeout, logger)

	verifier := payment.NewHMACVerifier(cfg.Payment.Secret)

	// Services
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, productRepo, cartRepo, verifier, broadcaster, logger)
	paymentService := service.NewPaymentService(orderRepo, verifier, cfg.Payment.GatewayName, broadcaster, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, broadcaster, logger)
	notificationService := service.NewNotificationService(notificationRepo)

	mux := router.New(router.Handlers{
		Health:       handler.NewHealthHandler(pool, logger),
		Product:      handler.NewProductHandler(productService, logger),
		Checkout:     handler.NewCheckoutHandler(checkoutService, logger),
		Payment:      handler.NewPaymentHandler(paymentService, logger),
		Cart:         handler.NewCartHandler(cartService, logger),
		Order:        handler.NewOrderHandler(orderService, logger),
		Notification: handler.NewNotificationHandler(notificationService, logger),
	}, router.Auth{
		APIKey:    cfg.Auth.APIKey,
		JWTSecret: cfg.Auth.JWTSecret,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("gateway", cfg.Payment.GatewayName).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

		// Requests are drained, so no new events can be published.
		if err := broadcaster.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("pending notifications abandoned")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// buildNotifier assembles the enabled notification channels. The returned
// func releases broker connections.
func buildNotifier(cfg config.NotifyConfig, store repository.NotificationRepository, logger zerolog.Logger) (notify.Notifier, func()) {
	fanout := notify.Fanout{notify.NewLogNotifier(logger)}
	var closers []func() error

	if cfg.StoreEnabled {
		fanout = append(fanout, notify.NewStoreNotifier(store))
	}

	if cfg.RedisEnabled {
		client := notify.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		fanout = append(fanout, notify.NewRedisNotifier(client, cfg.RedisChannel))
		closers = append(closers, client.Close)
		logger.Info().Str("addr", cfg.RedisAddr).Str("channel", cfg.RedisChannel).Msg("redis notifications enabled")
	}

	if cfg.KafkaEnabled {
		kn := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		fanout = append(fanout, kn)
		closers = append(closers, kn.Close)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka notifications enabled")
	}

	return fanout, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn().Err(err).Msg("failed to close notifier")
			}
		}
	}
}
