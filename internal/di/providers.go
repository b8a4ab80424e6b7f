package di

import (
	"context"
	"fmt"
	"time"

	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/handler/api"
	"TradeSignal/internal/handler/ws"
	internalrepo "TradeSignal/internal/repository"
	"TradeSignal/internal/scheduler"
	"TradeSignal/internal/service/cache"
	"TradeSignal/internal/service/primary"
	"TradeSignal/internal/service/quotes"
	"TradeSignal/internal/service/ratelimit"
	"TradeSignal/internal/service/relay"
	"TradeSignal/internal/service/yahoo"
	"TradeSignal/internal/services/analysis"
	"TradeSignal/internal/usecase"
	pkgch "TradeSignal/pkg/clickhouse"
	"TradeSignal/pkg/config"
	xhttp "TradeSignal/pkg/http"
	pkgkafka "TradeSignal/pkg/kafka"
	applogger "TradeSignal/pkg/logger"
	"TradeSignal/pkg/metrics"
	"TradeSignal/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideIntervalLimiter creates the limiter shared by every outbound relay call.
func ProvideIntervalLimiter(cfg *config.Config) *ratelimit.IntervalLimiter {
	return ratelimit.NewInterval(cfg.RateLimit.MinInterval)
}

// ProvideFetcher creates the relay fetcher. Per-attempt timeouts come from
// the caller, so the HTTP client itself has no overall timeout.
func ProvideFetcher(cfg *config.Config, limiter *ratelimit.IntervalLimiter, l *applogger.Logger, m repository.Metrics) *relay.Fetcher {
	return relay.NewFetcher(
		xhttp.NewClient(xhttp.WithTimeout(0), xhttp.WithUserAgent(cfg.MarketData.UserAgent)),
		limiter,
		relay.WithLogger(l),
		relay.WithMetrics(m),
	)
}

// ProvideBytesCache uses Redis when enabled and an in-process TTL cache otherwise.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) cache.BytesCache {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache()
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   "tradesignal:",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// The read-through cache treats backend errors as misses.
		l.Warn("redis unreachable at startup", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
	}
	return rc
}

// ProvidePrimary returns nil when the primary service is disabled.
func ProvidePrimary(cfg *config.Config) repository.PrimaryPredictor {
	if !cfg.Primary.Enabled || cfg.Primary.BaseURL == "" {
		return nil
	}
	return primary.NewClient(primary.Config{
		BaseURL: cfg.Primary.BaseURL,
		Path:    cfg.Primary.Path,
		Timeout: cfg.Primary.Timeout,
	})
}

// ProvideHistory creates the regression-tier chart provider.
func ProvideHistory(cfg *config.Config, f *relay.Fetcher, c cache.BytesCache) repository.HistoryProvider {
	return yahoo.NewHistoryProvider(yahoo.Config{
		ChartURL: cfg.MarketData.ChartURL,
		Relays:   cfg.MarketData.Relays,
		Timeout:  cfg.MarketData.Timeout,
		CacheTTL: cfg.MarketData.CacheTTL,
	}, f, c)
}

// ProvideQuotes creates the synthetic-tier spot price provider.
func ProvideQuotes(cfg *config.Config, f *relay.Fetcher) repository.QuoteProvider {
	return quotes.NewProvider(quotes.Config{
		ForexURL:     cfg.Quotes.ForexURL,
		CryptoURL:    cfg.Quotes.CryptoURL,
		ForexRelays:  cfg.Quotes.ForexRelays,
		CryptoRelays: cfg.Quotes.CryptoRelays,
		Timeout:      cfg.Quotes.Timeout,
	}, f)
}

// ProvideCascade creates the three-tier cascade.
func ProvideCascade(
	cfg *config.Config,
	p repository.PrimaryPredictor,
	h repository.HistoryProvider,
	q repository.QuoteProvider,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.Cascade {
	opts := []usecase.CascadeOption{
		usecase.WithCascadeLogger(l),
		usecase.WithCascadeMetrics(m),
	}
	if cfg.Analysis.Seed != 0 {
		opts = append(opts, usecase.WithRandom(analysis.NewRandom(cfg.Analysis.Seed)))
	}
	return usecase.NewCascade(p, h, q, usecase.CascadeConfig{
		Window:           cfg.Analysis.Window,
		TradeZone:        cfg.Analysis.TradeZone,
		TargetZone:       cfg.Analysis.TargetZone,
		SyntheticPeriods: cfg.Analysis.SyntheticPeriods,
	}, opts...)
}

// ProvideSignalStore uses ClickHouse when enabled and an in-memory ring otherwise.
func ProvideSignalStore(cfg *config.Config, l *applogger.Logger) (repository.SignalStore, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NewMemoryStore(0), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	store, err := internalrepo.NewCHSignalStore(ctx, client, l)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideHub creates the WebSocket signal feed.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvidePublisher fans signals out to the WebSocket hub and, when enabled,
// to Kafka through a retry buffer.
func ProvidePublisher(cfg *config.Config, hub *ws.Hub, reg *prometheus.Registry, m repository.Metrics) (repository.SignalPublisher, error) {
	targets := []repository.SignalPublisher{hub}
	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
			pkgkafka.WithRegisterer(reg),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		kp := internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
		targets = append(targets, internalrepo.NewBufferedPublisher(kp, m))
	}
	return internalrepo.NewFanoutPublisher(targets...), nil
}

// ProvideSignalUseCase wraps the cascade with caching, persistence and publishing.
func ProvideSignalUseCase(
	cfg *config.Config,
	cascade *usecase.Cascade,
	store repository.SignalStore,
	pub repository.SignalPublisher,
	c cache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalUseCase {
	return usecase.NewSignalUseCase(cascade, store, pub, c, cfg.Cache.SignalTTL, m, l)
}

// ProvideMarketUseCase serves latest prices and indicators from the same
// providers the cascade uses.
func ProvideMarketUseCase(h repository.HistoryProvider, q repository.QuoteProvider, m repository.Metrics, l *applogger.Logger) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(h, q, m, l)
}

// ProvideScanner creates the batch scanner.
func ProvideScanner(cfg *config.Config, uc *usecase.SignalUseCase, l *applogger.Logger) *usecase.Scanner {
	return usecase.NewScanner(uc, cfg.Scan.Workers, cfg.Scan.Timeout, l)
}

// ProvideScheduler registers the periodic scan when enabled.
func ProvideScheduler(cfg *config.Config, sc *usecase.Scanner, l *applogger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(sc, cfg.Assets, cfg.Scan.AssetClasses, cfg.Scan.Timeframe, l)
	if cfg.Scan.Enabled {
		if err := s.Register(cfg.Scan.Cron); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ProvideAPIHandler creates the REST handler.
func ProvideAPIHandler(cfg *config.Config, uc *usecase.SignalUseCase, sc *usecase.Scanner, mk *usecase.MarketUseCase, l *applogger.Logger) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l, uc, sc, mk, cfg.Assets)
}

// ProvideHTTPServer creates the Echo server with every handler registered.
func ProvideHTTPServer(
	cfg *config.Config,
	h *api.SignalsEchoHandler,
	hub *ws.Hub,
	reg *prometheus.Registry,
	l *applogger.Logger,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithRateLimit(ratelimit.New(), cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec),
	}
	if cfg.Server.CORS {
		opts = append(opts, xhttp.WithCORS(cfg.Server.CORSOrigins...))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, reg, cfg.Metrics.Path, cfg.Server.SlowThreshold))
	}
	return xhttp.NewServer([]xhttp.Handler{h, hub}, opts...)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	store repository.SignalStore,
	pub repository.SignalPublisher,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, srv, sched, store, pub, l)
}
