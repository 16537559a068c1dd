package marketdata

import (
	"context"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	"ScalpPulse/pkg/cache"
	"ScalpPulse/pkg/logger"
)

// Fetcher tries providers in order and returns the first valid quote.
// It deliberately swallows provider errors: a fetch miss is an expected
// market condition, not a pipeline failure.
type Fetcher struct {
	providers []drepo.QuoteProvider
	cache     cache.Service
	cacheTTL  time.Duration
	timeout   time.Duration
	metrics   drepo.Metrics
	log       *logger.Logger
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithCache enables short-lived quote caching to spare provider rate limits.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// WithTimeout bounds each provider attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithMetrics(m drepo.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher creates a failover fetcher over providers, tried in order.
func NewFetcher(log *logger.Logger, providers []drepo.QuoteProvider, opts ...Option) *Fetcher {
	f := &Fetcher{
		providers: providers,
		timeout:   10 * time.Second,
		log:       log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns a validated quote for ticker, or nil when every provider
// fails. Errors are logged and counted, never returned.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) *models.Quote {
	if q := f.cached(ctx, ticker); q != nil {
		return q
	}

	for _, p := range f.providers {
		start := time.Now()
		q, err := f.tryProvider(ctx, p, ticker)
		if f.metrics != nil {
			f.metrics.RecordLatency("quote_fetch", time.Since(start).Seconds())
		}
		if err != nil {
			f.log.Warn("quote provider failed",
				logger.String("provider", p.Name()),
				logger.String("ticker", ticker),
				logger.Error(err))
			if f.metrics != nil {
				f.metrics.RecordError("quote_fetch_" + p.Name())
			}
			continue
		}
		if !q.Valid() {
			f.log.Warn("quote failed validation",
				logger.String("provider", p.Name()),
				logger.String("ticker", ticker),
				logger.Any("quote", q))
			if f.metrics != nil {
				f.metrics.RecordError("quote_invalid_" + p.Name())
			}
			continue
		}

		f.store(ctx, ticker, q)
		return q
	}

	f.log.Warn("all quote providers exhausted", logger.String("ticker", ticker))
	return nil
}

func (f *Fetcher) tryProvider(ctx context.Context, p drepo.QuoteProvider, ticker string) (*models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return p.Quote(ctx, ticker)
}

func (f *Fetcher) cached(ctx context.Context, ticker string) *models.Quote {
	if f.cache == nil {
		return nil
	}
	var q models.Quote
	if err := f.cache.Get(ctx, quoteKey(ticker), &q); err != nil {
		return nil
	}
	if !q.Valid() {
		return nil
	}
	return &q
}

func (f *Fetcher) store(ctx context.Context, ticker string, q *models.Quote) {
	if f.cache == nil || f.cacheTTL <= 0 {
		return
	}
	if err := f.cache.Set(ctx, quoteKey(ticker), q, f.cacheTTL); err != nil {
		// cache trouble never blocks a fetch
		f.log.Debug("quote cache write failed",
			logger.String("ticker", ticker), logger.Error(err))
	}
}

func quoteKey(ticker string) string {
	return cache.GenerateKey("quote", ticker)
}

var _ drepo.QuoteFetcher = (*Fetcher)(nil)
