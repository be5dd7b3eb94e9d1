package di

import (
	"context"
	"fmt"
	"time"

	"Aegis/internal/alerts"
	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/handler/api"
	internalrepo "Aegis/internal/repository"
	"Aegis/internal/scoring"
	"Aegis/internal/service/fred"
	"Aegis/internal/signals"
	"Aegis/internal/usecase"
	"Aegis/internal/velocity"
	"Aegis/pkg/cache"
	pkgch "Aegis/pkg/clickhouse"
	"Aegis/pkg/config"
	xhttp "Aegis/pkg/http"
	pkgkafka "Aegis/pkg/kafka"
	applogger "Aegis/pkg/logger"
	"Aegis/pkg/metrics"
	"Aegis/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideCache creates the series cache: layered memory over redis when
// redis is configured, in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
	), nil
}

// ProvideSeriesSource creates the FRED-backed series source.
func ProvideSeriesSource(cfg *config.Config, c cache.Service, l *applogger.Logger) domrepo.SeriesSource {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.FRED.Timeout))
	return fred.New(cfg, hc, c, l)
}

// ProvideVelocity creates the velocity calculator.
func ProvideVelocity(src domrepo.SeriesSource, l *applogger.Logger) *velocity.Calculator {
	return velocity.New(src, l)
}

// ProvideSnapshotBuilder creates the indicator snapshot builder.
func ProvideSnapshotBuilder(cfg *config.Config, vel *velocity.Calculator, m domrepo.Metrics, l *applogger.Logger) *usecase.SnapshotBuilder {
	return usecase.NewSnapshotBuilder(cfg, vel, m, l)
}

// ProvideAggregator creates the score aggregator.
func ProvideAggregator(cfg *config.Config, l *applogger.Logger) *scoring.Aggregator {
	return scoring.NewAggregator(cfg, l)
}

// ProvideSignalEngine creates the warning detector set.
func ProvideSignalEngine(cfg *config.Config, l *applogger.Logger) *signals.Engine {
	return signals.NewEngine(cfg, l)
}

// ProvideDecider creates the alert decision policy.
func ProvideDecider(cfg *config.Config, l *applogger.Logger) *alerts.Decider {
	return alerts.NewDecider(cfg, l)
}

// ProvideResultStore creates the ClickHouse result store and its schema.
func ProvideResultStore(chClient *pkgch.Client, cfg *config.Config) (domrepo.ResultStore, error) {
	store := internalrepo.NewClickHouseResultStore(
		chClient.DB(),
		cfg.ClickHouse.Database+".risk_scores",
		cfg.ClickHouse.Database+".risk_indicators",
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store schema: %w", err)
	}
	return store, nil
}

// ProvideAlertSink creates the Kafka alert sink.
func ProvideAlertSink(producer *pkgkafka.Producer, cfg *config.Config) domrepo.AlertSink {
	return internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.Topic)
}

// ProvideCycle creates the assessment cycle use case.
func ProvideCycle(
	cfg *config.Config,
	builder *usecase.SnapshotBuilder,
	agg *scoring.Aggregator,
	engine *signals.Engine,
	decider *alerts.Decider,
	store domrepo.ResultStore,
	sink domrepo.AlertSink,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Cycle {
	return usecase.NewCycle(cfg, builder, agg, engine, decider, store, sink, m, l)
}

// ProvideHandler creates the API handler.
func ProvideHandler(l *applogger.Logger, cycle *usecase.Cycle, store domrepo.ResultStore) xhttp.Handler {
	return api.NewRiskEchoHandler(l, cycle, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	cycle *usecase.Cycle,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	sink domrepo.AlertSink,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, cycle, handler, chClient, sink, l)
}
