package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"ScalpPulse/internal/domain/repository"
	domsvc "ScalpPulse/internal/domain/service"
	"ScalpPulse/internal/handler/api"
	mid "ScalpPulse/internal/middleware"
	internalrepo "ScalpPulse/internal/repository"
	"ScalpPulse/internal/service/alphavantage"
	"ScalpPulse/internal/service/broker"
	svccache "ScalpPulse/internal/service/cache"
	"ScalpPulse/internal/service/marketdata"
	"ScalpPulse/internal/service/yahoo"
	"ScalpPulse/internal/services/analytics"
	"ScalpPulse/internal/usecase"
	pkgcache "ScalpPulse/pkg/cache"
	pkgch "ScalpPulse/pkg/clickhouse"
	"ScalpPulse/pkg/config"
	xhttp "ScalpPulse/pkg/http"
	pkgkafka "ScalpPulse/pkg/kafka"
	applogger "ScalpPulse/pkg/logger"
	"ScalpPulse/pkg/metrics"
	"ScalpPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	// Collect warn/error entries so /api/health can report them
	log.AddCollector(applogger.DefaultCollectionConfig())
	return log, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteCache creates the quote cache: layered memory+Redis when
// Redis is configured, in-process memory otherwise.
func ProvideQuoteCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideQuoteFetcher builds the provider chain: Alpha Vantage primary,
// Yahoo fallback.
func ProvideQuoteFetcher(cfg *config.Config, log *applogger.Logger, qc pkgcache.Service, m repository.Metrics) repository.QuoteFetcher {
	interval := repository.Interval(cfg.Quotes.Interval)
	if !repository.IsValidInterval(interval) {
		interval = repository.DefaultInterval()
	}

	providers := []repository.QuoteProvider{
		alphavantage.New(cfg.Quotes.AlphaVantage.APIKey, cfg.Quotes.AlphaVantage.BaseURL, interval, cfg.Quotes.Timeout),
		yahoo.New(cfg.Quotes.Yahoo.BaseURL, cfg.Quotes.Timeout),
	}

	return marketdata.NewFetcher(log, providers,
		marketdata.WithCache(qc, cfg.Quotes.CacheTTL),
		marketdata.WithTimeout(cfg.Quotes.Timeout),
		marketdata.WithMetrics(m),
	)
}

// ProvideIndicatorEngine creates the indicator calculator.
func ProvideIndicatorEngine() domsvc.IndicatorEngine {
	return analytics.NewEngine()
}

// ProvideSignalScorer creates the confidence scorer.
func ProvideSignalScorer() domsvc.SignalScorer {
	return analytics.NewScorer()
}

// ProvideBroker creates the paper broker used for trade previews.
func ProvideBroker(cfg *config.Config) domsvc.BrokerPreview {
	return broker.NewPaper(cfg.Broker.Equity, cfg.Broker.RiskFraction)
}

// ProvideSignalJournal creates the local JSON journal.
func ProvideSignalJournal(cfg *config.Config) repository.SignalJournal {
	return internalrepo.NewFileJournal(cfg.Journal.Path, cfg.Journal.MaxEntries)
}

// ProvideClickHouseClient creates a ClickHouse client when the archive is
// in play: clickhouse backend, or kafka backend with the consumer enabled.
// Returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != "clickhouse" && !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.SchemaStatements(table)...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSignalArchive creates the ClickHouse archive, or nil when no
// ClickHouse client is configured.
func ProvideSignalArchive(chClient *pkgch.Client, cfg *config.Config) repository.SignalArchive {
	if chClient == nil {
		return nil
	}
	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	return internalrepo.NewClickHouseArchive(chClient.DB(), table)
}

// ProvideKafkaProducer creates a Kafka producer for the kafka backend,
// nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher wraps the producer, or returns nil when the
// backend does not publish.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the archive-side consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaSignalsHandler registers the signals topic handler.
func ProvideKafkaSignalsHandler(archive repository.SignalArchive, m repository.Metrics, cfg *config.Config) *usecase.KafkaSignalsHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.Topic, archive, m)
}

// ProvideHub creates the WebSocket fan-out hub.
func ProvideHub(log *applogger.Logger) *api.Hub {
	return api.NewHub(log)
}

// ProvideSignalProcessor creates the backend router.
func ProvideSignalProcessor(
	pub repository.SignalPublisher,
	archive repository.SignalArchive,
	hub *api.Hub,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SignalProcessor {
	return usecase.NewSignalProcessor(pub, archive, hub, m, cfg.Backend.Type)
}

// ProvideSignalPipeline puts validation, throttling and retry buffering
// in front of the processor.
func ProvideSignalPipeline(proc *usecase.SignalProcessor, m repository.Metrics) *mid.SignalPipeline {
	return mid.NewSignalPipeline(proc, m)
}

// ProvideScalpUseCase creates the pipeline use case.
func ProvideScalpUseCase(
	fetcher repository.QuoteFetcher,
	engine domsvc.IndicatorEngine,
	scorer domsvc.SignalScorer,
	brk domsvc.BrokerPreview,
	journal repository.SignalJournal,
	pipeline *mid.SignalPipeline,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.ScalpUseCase {
	return usecase.NewScalpUseCase(fetcher, engine, scorer, brk, journal, pipeline, m, log, cfg.Quotes.Watchlist)
}

// ProvideSignalHistory creates the history reader over journal and archive.
func ProvideSignalHistory(journal repository.SignalJournal, archive repository.SignalArchive) *usecase.SignalHistory {
	return usecase.NewSignalHistory(journal, archive)
}

// ProvideWatchlistScanner creates the background scanner.
func ProvideWatchlistScanner(uc *usecase.ScalpUseCase, cfg *config.Config, log *applogger.Logger) *usecase.WatchlistScanner {
	return usecase.NewWatchlistScanner(uc, cfg.Quotes.Watchlist, cfg.Scanner.Interval, log)
}

// ProvideHTTPHandler creates the API handler with its response cache.
func ProvideHTTPHandler(
	log *applogger.Logger,
	uc *usecase.ScalpUseCase,
	history *usecase.SignalHistory,
	hub *api.Hub,
	archive repository.SignalArchive,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewScalpHandler(log, uc, history, hub)
	if cfg.Redis.Enabled {
		h.SetCache(svccache.NewRedisCache(svccache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(svccache.NewTTLCache())
	}
	if archive != nil {
		h.SetArchive(archive)
	}
	return h
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.WatchlistScanner,
	pipeline *mid.SignalPipeline,
	hub *api.Hub,
	proc *usecase.SignalProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *server.App {
	var mh pkgkafka.MessageHandler
	if consumer != nil && kh != nil {
		mh = kh
	}
	app := server.New(cfg, log, scanner, pipeline, hub, proc, consumer, mh, chClient)
	app.SetHTTPHandler(handler)
	return app
}
