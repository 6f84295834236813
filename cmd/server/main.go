package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/odds-gateway-service/internal/auth"
	"github.com/cypherlabdev/odds-gateway-service/internal/cache"
	"github.com/cypherlabdev/odds-gateway-service/internal/config"
	httpHandler "github.com/cypherlabdev/odds-gateway-service/internal/handler/http"
	"github.com/cypherlabdev/odds-gateway-service/internal/messaging"
	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
	"github.com/cypherlabdev/odds-gateway-service/internal/service"
	"github.com/cypherlabdev/odds-gateway-service/internal/stream"
	"github.com/cypherlabdev/odds-gateway-service/internal/upstream"
	"github.com/cypherlabdev/odds-gateway-service/pkg/transformer"
)

// snapshotPublisher is a service.Publisher that holds resources
type snapshotPublisher interface {
	service.Publisher
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting odds-gateway-service")

	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	// Create cache store
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cache store")
	}
	defer store.Close()

	sportCache := cache.NewFreshnessCache(
		cache.FreshnessConfig{Name: "sport", Window: cfg.Cache.SportWindow, FetchTimeout: cfg.Stream.FetchTimeout},
		store, m, logger,
	)
	eventCache := cache.NewFreshnessCache(
		cache.FreshnessConfig{Name: "event", Window: cfg.Cache.EventWindow, FetchTimeout: cfg.Stream.FetchTimeout},
		store, m, logger,
	)

	// Create snapshot publisher
	var publisher snapshotPublisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = messaging.NewKafkaPublisher(
			messaging.KafkaPublisherConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
			},
			m,
			logger,
		)
	}
	defer publisher.Close()

	// Create upstream client
	client := upstream.NewClient(
		upstream.ClientConfig{
			Headers:      cfg.Upstream.Headers,
			APIKey:       cfg.Upstream.APIKey,
			APIKeyHeader: cfg.Upstream.APIKeyHeader,
			Timeout:      cfg.Upstream.Timeout,
		},
		m,
		logger,
	)

	// Create odds service layer
	oddsService := service.NewOddsService(
		client,
		sportCache,
		eventCache,
		transformer.NewTransformer(logger),
		publisher,
		&cfg.Upstream,
		logger,
	)
	logger.Info().Str("upstream", cfg.Upstream.BaseURL).Msg("odds service initialized")

	// Create auth service
	users, err := auth.NewFileUserStore(cfg.Auth.UsersFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load user directory")
	}
	authService, err := auth.NewService(
		auth.Config{
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
			MaxDevices: cfg.Auth.MaxDevices,
		},
		users,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth service")
	}

	// Create stream engine
	engine := stream.NewEngine(
		stream.Config{
			SportInterval: cfg.Stream.SportInterval,
			EventInterval: cfg.Stream.EventInterval,
			FetchTimeout:  cfg.Stream.FetchTimeout,
		},
		oddsService,
		m,
		logger,
	)

	// Setup HTTP routes
	router := httpHandler.NewRouter(httpHandler.RouterConfig{
		Odds:        httpHandler.NewOddsHandler(oddsService, logger),
		Auth:        httpHandler.NewAuthHandler(authService, logger),
		Health:      httpHandler.NewHealthHandler(store, logger),
		WebSocket:   httpHandler.NewWebSocketHandler(engine, cfg.Server.CORSOrigins, logger),
		Gate:        authService,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, logger)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Hijacked WebSocket connections are not tracked by the server
	engine.Shutdown()

	logger.Info().Msg("shutdown complete")
}

// configPath returns the config file location, overridable for deployments
func configPath() string {
	if path := os.Getenv("ODDS_GATEWAY_CONFIG"); path != "" {
		return path
	}
	return "config/config.yaml"
}

// newStore builds the cache backend selected by cache.backend
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Store, error) {
	if cfg.Cache.Backend != "redis" {
		logger.Info().Msg("using in-memory cache store")
		return cache.NewMemoryStore(), nil
	}

	store := cache.NewRedisStore(
		cache.RedisStoreConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
		logger,
	)

	// Test Redis connection
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	return store, nil
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "odds-gateway").Logger()
}
