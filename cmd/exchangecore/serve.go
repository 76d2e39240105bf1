package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyfcoding/exchangecore/internal/clientio/infrastructure/httpapi"
	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	"github.com/wyfcoding/exchangecore/internal/marketdata/infrastructure/kafkaingest"
	"github.com/wyfcoding/exchangecore/internal/marketdata/infrastructure/rediscache"
	risk "github.com/wyfcoding/exchangecore/internal/risk/domain"
	venuedomain "github.com/wyfcoding/exchangecore/internal/venue/domain"
	"github.com/wyfcoding/exchangecore/internal/venue/infrastructure/grpcgateway"
	"github.com/wyfcoding/exchangecore/pkg/cache"
	"github.com/wyfcoding/exchangecore/pkg/config"
	"github.com/wyfcoding/exchangecore/pkg/grpcclient"
	"github.com/wyfcoding/exchangecore/pkg/logger"
	"github.com/wyfcoding/exchangecore/pkg/metrics"
	"github.com/wyfcoding/exchangecore/pkg/mq"
	"github.com/wyfcoding/exchangecore/pkg/ratelimit"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the matching/risk/dispatch services and the client-facing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(_ context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "starting exchangecore",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment,
		"front_mode", cfg.FrontMode())

	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "failed to start metrics HTTP server", "error", err)
		}
	}

	engine := matching.NewEngine()
	guard := risk.NewGuard()

	marketData, redisCache, err := buildMarketData(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize market-data cache", "error", err)
	}
	if redisCache != nil {
		defer redisCache.Close()
	}
	if cfg.Kafka.Brokers != nil && marketData != nil {
		go runMarketDataIngestion(ctx, cfg, marketData)
	}

	// marketData is a concrete *rediscache.Cache; converting it straight to
	// the MarketDataProvider interface when nil would produce a non-nil
	// interface wrapping a nil pointer, breaking the coordinator's
	// marketData == nil guard. mdProvider stays a true nil interface when
	// no cache was built.
	var mdProvider dispatch.MarketDataProvider
	if marketData != nil {
		mdProvider = marketData
	}

	var venueGateway venuedomain.Gateway
	if cfg.FrontMode() {
		venueGateway, err = grpcgateway.Dial(grpcclient.ClientConfig{
			Target:            cfg.Venue.Target,
			ConnTimeout:       cfg.Venue.DialTimeout,
			RequestTimeout:    cfg.Venue.DialTimeout,
			MaxRetries:        cfg.Venue.MaxRetries,
			RetryDelay:        cfg.Venue.RetryBackoffMs,
			EnableKeepalive:   true,
			KeepaliveInterval: cfg.Venue.KeepaliveSecs,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to dial venue", "target", cfg.Venue.Target, "error", err)
		}
		defer venueGateway.Close()
	}

	var coordinator *dispatch.Coordinator
	if venueGateway != nil {
		coordinator = dispatch.New(engine, guard, httpapi.LogSink{}, venueGateway, mdProvider)
		go drainVenueResponses(ctx, coordinator, venueGateway)
	} else {
		coordinator = dispatch.New(engine, guard, httpapi.LogSink{}, nil, mdProvider)
	}

	go reportPendingMatches(ctx, coordinator, m)

	limiter, err := buildRateLimiter(cfg, redisCache)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize rate limiter", "error", err)
	}

	handler := httpapi.New(coordinator, m)
	router := httpapi.NewRouter(handler, limiter, cfg.RateLimit)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting http server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "shutting down exchangecore")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown error", "error", err)
	}
	logger.Info(ctx, "exchangecore stopped")
	return nil
}

// buildMarketData wires the Redis-backed reference-quote cache when Redis
// is configured. A zero-value RedisConfig (no host) means no market-data
// gate is wired and the engine runs with no crossing constraint.
func buildMarketData(ctx context.Context, cfg *config.Config) (*rediscache.Cache, *cache.RedisCache, error) {
	if cfg.Redis.Host == "" {
		return nil, nil, nil
	}
	redisCache, err := cache.New(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxPoolSize: cfg.Redis.MaxPoolSize,
		ConnTimeout: cfg.Redis.ConnTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return rediscache.New(redisCache), redisCache, nil
}

func runMarketDataIngestion(ctx context.Context, cfg *config.Config, store *rediscache.Cache) {
	consumer := mq.NewConsumer(mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
	}, cfg.Kafka.Topic)
	defer consumer.Close()

	ingest := kafkaingest.New(consumer, store)
	if err := ingest.Run(ctx); err != nil {
		logger.Error(ctx, "market-data ingestion stopped", "error", err)
	}
}

func drainVenueResponses(ctx context.Context, coordinator *dispatch.Coordinator, gateway venuedomain.Gateway) {
	for resp := range gateway.Responses() {
		coordinator.HandleVenueResponse(resp)
	}
}

func reportPendingMatches(ctx context.Context, coordinator *dispatch.Coordinator, m *metrics.Metrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.PendingMatchesActive.Set(float64(coordinator.PendingMatchCount()))
	}
}

func buildRateLimiter(cfg *config.Config, redisCache *cache.RedisCache) (ratelimit.RateLimiter, error) {
	if !cfg.RateLimit.Enabled || redisCache == nil {
		return nil, nil
	}
	return ratelimit.NewRedisRateLimiter(redisCache.Client()), nil
}
