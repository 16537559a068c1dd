package usecase

import (
	"context"
	"sync"
	"time"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/pkg/logger"
)

// WatchlistScanner runs the scalp pipeline over the configured watchlist
// on a fixed interval. Each ticker is evaluated independently; a failing
// ticker never stalls the sweep.
type WatchlistScanner struct {
	uc       *ScalpUseCase
	interval time.Duration
	tickers  []string
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

func NewWatchlistScanner(uc *ScalpUseCase, tickers []string, interval time.Duration, log *logger.Logger) *WatchlistScanner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &WatchlistScanner{
		uc:       uc,
		interval: interval,
		tickers:  tickers,
		log:      log,
	}
}

// Start launches the scan loop. Safe to call once.
func (s *WatchlistScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	go s.loop(ctx)
	s.log.Info("watchlist scanner started",
		logger.Int("tickers", len(s.tickers)),
		logger.Duration("interval", s.interval))
	return nil
}

// Stop halts the scan loop.
func (s *WatchlistScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.cancel()
	s.log.Info("watchlist scanner stopped")
}

func (s *WatchlistScanner) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *WatchlistScanner) sweep(ctx context.Context) {
	start := time.Now()
	generated := 0
	for _, t := range s.tickers {
		if ctx.Err() != nil {
			return
		}
		res, _ := s.uc.Run(ctx, t)
		if res.Status == models.StatusSignalGenerated {
			generated++
		}
	}
	s.log.Debug("watchlist sweep complete",
		logger.Int("tickers", len(s.tickers)),
		logger.Int("signals", generated),
		logger.Duration("took", time.Since(start)))
}
