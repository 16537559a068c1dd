package repository

import (
	"context"

	"ScalpPulse/internal/domain/models"
)

// QuoteProvider fetches a quote for a ticker from one upstream feed.
// Implementations return an error on any failure, including incomplete
// payloads; failover across providers is the caller's concern.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, ticker string) (*models.Quote, error)
}

// QuoteFetcher is the failover facade over providers. A nil quote means
// "no quote this cycle"; no error is surfaced.
type QuoteFetcher interface {
	Fetch(ctx context.Context, ticker string) *models.Quote
}

// SignalJournal persists generated signals to a bounded local log.
type SignalJournal interface {
	Append(entry *models.SignalLogEntry) error
	Recent(limit int) ([]models.SignalLogEntry, error)
}

// SignalArchive stores signals in a queryable backend.
type SignalArchive interface {
	Store(ctx context.Context, entry *models.SignalLogEntry) error
	Recent(ctx context.Context, ticker string, limit int) ([]models.SignalLogEntry, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher emits generated signals to a message bus.
type SignalPublisher interface {
	Publish(ctx context.Context, entry *models.SignalLogEntry) error
	Close() error
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordSignal(ticker, signalType string)
	RecordNoSignal(reason string)
	RecordError(kind string)
	RecordConfidence(ticker string, score float64)
	RecordLatency(op string, seconds float64)
}
