package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"AraDetector/internal/domain/models"
	"AraDetector/internal/domain/repository"
	"AraDetector/internal/handler/api"
	internalrepo "AraDetector/internal/repository"
	"AraDetector/internal/service/cache"
	servicemetrics "AraDetector/internal/service/metrics"
	"AraDetector/internal/service/ratelimit"
	"AraDetector/internal/services/marketdata"
	"AraDetector/internal/services/scoring"
	"AraDetector/internal/usecase"
	pkgch "AraDetector/pkg/clickhouse"
	"AraDetector/pkg/config"
	xhttp "AraDetector/pkg/http"
	pkgkafka "AraDetector/pkg/kafka"
	applogger "AraDetector/pkg/logger"
	"AraDetector/pkg/metrics"
	"AraDetector/pkg/server"
	"AraDetector/pkg/sqldb"
	"AraDetector/pkg/util"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", "ara-detector"), applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	servicemetrics.Register()
	return metrics.New()
}

// ProvideMarketData creates the rate-limited market data client.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) (repository.MarketData, error) {
	limiter := ratelimit.New(cfg.MarketData.RPS, cfg.MarketData.Burst)
	client, err := marketdata.New(cfg, limiter, l)
	if err != nil {
		return nil, fmt.Errorf("market data client: %w", err)
	}
	return client, nil
}

// ProvideEngine creates the scoring engine.
func ProvideEngine() *scoring.Engine {
	return scoring.NewEngine()
}

func ProvideEvaluator(md repository.MarketData, engine *scoring.Engine, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.AraEvaluator {
	return usecase.NewAraEvaluator(md, engine, m, l, usecase.EvaluatorOptions{
		Workers:         cfg.Evaluator.Workers,
		HistorySessions: cfg.Evaluator.HistorySessions,
		LookbackDays:    cfg.Evaluator.LookbackDays,
	})
}

// ProvideResultStore opens the configured store and ensures its schema.
func ProvideResultStore(cfg *config.Config, l *applogger.Logger) (repository.ResultStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	var store repository.ResultStore
	switch cfg.Storage.Driver {
	case "none":
		return internalrepo.NoopResultStore{}, func() {}, nil
	case "clickhouse":
		ch := cfg.Storage.ClickHouse
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithMaxConnections(cfg.Storage.MaxOpenConns, cfg.Storage.MaxIdleConns),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
			pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewCHResultStore(client, l)
	default:
		db, err := sqldb.Open(ctx, sqldb.Config{
			Driver:          cfg.Storage.Driver,
			DSN:             cfg.Storage.DSN,
			MaxOpenConns:    cfg.Storage.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s store: %w", cfg.Storage.Driver, err)
		}
		store = internalrepo.NewSQLResultStore(db, 0, l)
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("result store schema: %w", err)
	}
	return store, closer(l, "result store", store), nil
}

// ProvideAlertPublisher creates the Kafka publisher, or a no-op one when alerts are disabled.
func ProvideAlertPublisher(cfg *config.Config, l *applogger.Logger) (repository.AlertPublisher, func(), error) {
	if !cfg.Alerts.Enabled {
		return internalrepo.NoopAlertPublisher{}, func() {}, nil
	}
	a := cfg.Alerts
	level, err := models.ParseAlertLevel(a.MinLevel)
	if err != nil {
		return nil, nil, err
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(a.Brokers),
		pkgkafka.WithCompression(a.Compression),
		pkgkafka.WithRequiredAcks(a.RequiredAcks),
		pkgkafka.WithBatching(a.Producer.BatchSize, a.Producer.BatchBytes, a.Producer.Linger),
		pkgkafka.WithTimeouts(a.Producer.WriteTimeout, a.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(a.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaAlertPublisher(producer, a.Topic, level, l)
	return pub, closer(l, "alert publisher", pub), nil
}

// ProvideCache creates the results cache: Redis when enabled, in-process otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	r := cfg.Cache.Redis
	if !r.Enabled {
		return cache.NewTTLCache(), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:      r.Addr,
		Password:  r.Password,
		DB:        r.DB,
		KeyPrefix: r.KeyPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	return rc, closer(l, "cache", rc), nil
}

// closer returns a Wire cleanup func that closes c and logs the failure.
func closer(l *applogger.Logger, name string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			l.Warn(name+" close error", applogger.Error(err))
		}
	}
}

// ProvideScanUseCase creates the watchlist scan; saved dates evict the results cache.
func ProvideScanUseCase(
	md repository.MarketData,
	ev *usecase.AraEvaluator,
	store repository.ResultStore,
	pub repository.AlertPublisher,
	results *usecase.ResultsUseCase,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.WatchlistScanUseCase {
	return usecase.NewWatchlistScanUseCase(md, ev, store, pub, m, l, util.MarketZone(cfg.Market.UTCOffsetHours)).
		NotifyOnSave(results)
}

func ProvideResultsUseCase(store repository.ResultStore, c cache.BytesCache, cfg *config.Config, l *applogger.Logger) *usecase.ResultsUseCase {
	return usecase.NewResultsUseCase(store, c, cfg.Cache.TTL, l)
}

// ProvideHTTPHandler creates the API handler with its per-client rate limiter.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	ev *usecase.AraEvaluator,
	scan *usecase.WatchlistScanUseCase,
	results *usecase.ResultsUseCase,
) *api.AraDetectorHandler {
	limiter := ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
	return api.NewAraDetectorHandler(l, ev, scan, results, limiter)
}

// ProvideHTTPServer creates the Echo server with the API routes registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.AraDetectorHandler) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	ev *usecase.AraEvaluator,
	scan *usecase.WatchlistScanUseCase,
) *server.App {
	return server.New(cfg, l, srv, ev, scan)
}
