package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/consumer"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("search server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting search server", "port", cfg.Server.Port, "default_status", cfg.Search.DefaultStatus)
	m := metrics.New(nil)
	engine, err := indexer.NewEngine(cfg.Search, indexer.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	checker := health.NewChecker()
	checker.Register("index", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents", engine.DocumentCount()),
		}
	})

	queryCache, redisClient := connectCache(ctx, cfg, m)
	if redisClient != nil {
		defer redisClient.Close()
		engine.AddInvalidator(queryCache)
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	if cfg.Source.Driver != "" {
		db, err := seedFromSource(ctx, cfg, engine)
		if err != nil {
			return err
		}
		defer db.Close()
		checker.Register("source", func(ctx context.Context) health.ComponentHealth {
			if err := db.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	aggregator := analytics.NewAggregator()
	var (
		analyticsWriter analytics.EventWriter
		ingestPublisher *publisher.Publisher
		ingestConsumer  *kafka.Consumer
	)
	kafkaEnabled := len(cfg.Kafka.Brokers) > 0
	if kafkaEnabled {
		analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer analyticsProducer.Close()
		analyticsWriter = analyticsProducer

		ingestProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
		defer ingestProducer.Close()
		ingestPublisher = publisher.New(ingestProducer)

		ingestConsumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, consumer.HandleMessage(engine))
		slog.Info("kafka enabled", "brokers", cfg.Kafka.Brokers, "ingest_topic", cfg.Kafka.Topics.DocumentIngest)
	} else {
		slog.Warn("no kafka brokers configured, streaming ingestion and event publishing disabled")
	}
	collector := analytics.NewCollector(analyticsWriter, aggregator, analytics.CollectorOptions{
		BufferSize:    cfg.Analytics.BufferSize,
		BatchSize:     cfg.Analytics.BatchSize,
		FlushInterval: cfg.Analytics.FlushInterval,
	})
	collector.Start(ctx)
	defer collector.Close()

	mux := http.NewServeMux()
	handler.New(engine, queryCache, collector).Register(mux)
	analytics.NewHandler(aggregator).Register(mux)
	if ingestPublisher != nil {
		mux.HandleFunc("POST /api/v1/ingest", ingesthandler.New(ingestPublisher).Ingest)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("search server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if ingestConsumer != nil {
		g.Go(func() error {
			return ingestConsumer.Start(gctx)
		})
	}
	return g.Wait()
}

// connectCache returns a nil cache when Redis is not configured or cannot
// be reached; searches then go straight to the engine.
func connectCache(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*cache.QueryCache, *pkgredis.Client) {
	if cfg.Redis.Addr == "" {
		slog.Info("redis not configured, search caching disabled")
		return nil, nil
	}
	var client *pkgredis.Client
	err := resilience.Retry(ctx, "redis-connect", resilience.RetryConfig{MaxAttempts: 3}, func(ctx context.Context) error {
		var err error
		client, err = pkgredis.NewClient(ctx, cfg.Redis)
		return err
	})
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		return nil, nil
	}
	breaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     10 * time.Second,
	})
	slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	return cache.New(cache.WithBreaker(client, breaker), cfg.Redis.CacheTTL, m), client
}

// seedFromSource loads the configured SQL table into engine. Connection
// failures are fatal; rejected rows are not.
func seedFromSource(ctx context.Context, cfg *config.Config, engine *indexer.Engine) (*database.Client, error) {
	var db *database.Client
	err := resilience.Retry(ctx, "source-connect", resilience.RetryConfig{}, func(ctx context.Context) error {
		var err error
		db, err = database.New(ctx, cfg.Source.Driver, cfg.SourceDSN(), cfg.Postgres)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s source: %w", cfg.Source.Driver, err)
	}
	src, err := source.New(db, cfg.Source.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := src.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	stats, err := src.Load(ctx, engine)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seeding from source: %w", err)
	}
	slog.Info("index seeded", "driver", cfg.Source.Driver, "loaded", stats.Loaded, "rejected", stats.Rejected)
	return db, nil
}
