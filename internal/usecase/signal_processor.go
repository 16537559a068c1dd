package usecase

import (
	"context"
	"fmt"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
)

// Broadcaster mirrors generated signals to live subscribers (WebSocket).
// Implementations must never block.
type Broadcaster interface {
	Broadcast(entry *models.SignalLogEntry)
}

// SignalProcessor routes a generated signal to the configured backend
// and mirrors it to live subscribers.
type SignalProcessor struct {
	pub     drepo.SignalPublisher
	archive drepo.SignalArchive
	hub     Broadcaster
	metrics drepo.Metrics
	backend string
}

// NewSignalProcessor creates a processor for backend ("kafka" or
// "clickhouse"). hub may be nil when no live feed is wired.
func NewSignalProcessor(
	pub drepo.SignalPublisher,
	archive drepo.SignalArchive,
	hub Broadcaster,
	metrics drepo.Metrics,
	backend string,
) *SignalProcessor {
	return &SignalProcessor{
		pub:     pub,
		archive: archive,
		hub:     hub,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes one signal entry. The hub mirror happens regardless of
// backend errors; subscribers see what was generated, not what landed.
func (p *SignalProcessor) Process(ctx context.Context, entry *models.SignalLogEntry) error {
	if entry == nil {
		return fmt.Errorf("signal entry is nil")
	}

	if p.hub != nil {
		p.hub.Broadcast(entry)
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, entry)
	case "clickhouse":
		err = p.archive.Store(ctx, entry)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("route")
		return fmt.Errorf("route signal: %w", err)
	}

	p.metrics.RecordLatency("route", time.Since(start).Seconds())
	return nil
}

// Close closes the routing resources.
func (p *SignalProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
