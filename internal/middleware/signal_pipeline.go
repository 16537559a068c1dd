package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ScalpPulse/internal/domain/models"
	domrepo "ScalpPulse/internal/domain/repository"
)

// Proc is the minimal downstream interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, entry *models.SignalLogEntry) error
}

// SignalPipeline sits between signal generation and the routing backend.
// It validates, throttles per ticker, and buffers entries when the
// backend is unavailable, retrying with backoff from a background flusher.
type SignalPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.SignalLogEntry
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type PipelineOption func(*SignalPipeline)

// WithMaxRPS caps accepted entries per second per ticker.
func WithMaxRPS(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewSignalPipeline creates a pipeline in front of proc.
func NewSignalPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *SignalPipeline {
	p := &SignalPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   5, // a scalp pipeline emits far fewer signals than ticks
		bufSize:  256,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.SignalLogEntry, p.bufSize)
	return p
}

// Start launches background flushing of buffered entries. A stopped
// pipeline can be started again; each Start gets a fresh stop channel.
func (p *SignalPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			case entry := <-p.bufCh:
				if entry == nil {
					continue
				}
				if err := p.proc.Process(ctx, entry); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- entry:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop halts the background flusher.
func (p *SignalPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an entry, buffering on
// downstream errors.
func (p *SignalPipeline) Process(ctx context.Context, entry *models.SignalLogEntry) error {
	start := time.Now()
	if err := validateEntry(entry); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(entry.Signal.Ticker, start) {
		// throttled; drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, entry); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- entry:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEntry(entry *models.SignalLogEntry) error {
	if entry == nil {
		return fmt.Errorf("entry nil")
	}
	if entry.Signal.Ticker == "" {
		return fmt.Errorf("ticker empty")
	}
	if entry.Signal.EntryPrice <= 0 {
		return fmt.Errorf("entry price invalid")
	}
	if entry.Signal.ConfidenceScore < 0 || entry.Signal.ConfidenceScore > 100 {
		return fmt.Errorf("confidence out of range")
	}
	return nil
}

func (p *SignalPipeline) allow(ticker string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[ticker]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[ticker] = now
		return true
	}
	return false
}
