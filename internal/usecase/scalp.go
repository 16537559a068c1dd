package usecase

import (
	"context"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	domsvc "ScalpPulse/internal/domain/service"
	"ScalpPulse/pkg/logger"
)

// Router forwards a generated signal to the routing backend. Usually the
// SignalPipeline wrapping a SignalProcessor.
type Router interface {
	Process(ctx context.Context, entry *models.SignalLogEntry) error
}

// ScalpUseCase runs the full pipeline for one ticker or the watchlist:
// fetch quote, derive indicators, score, preview sizing, persist.
// It never returns an error; every failure renders as a status.
type ScalpUseCase struct {
	fetcher   drepo.QuoteFetcher
	engine    domsvc.IndicatorEngine
	scorer    domsvc.SignalScorer
	broker    domsvc.BrokerPreview
	journal   drepo.SignalJournal
	router    Router
	metrics   drepo.Metrics
	log       *logger.Logger
	watchlist []string
}

func NewScalpUseCase(
	fetcher drepo.QuoteFetcher,
	engine domsvc.IndicatorEngine,
	scorer domsvc.SignalScorer,
	broker domsvc.BrokerPreview,
	journal drepo.SignalJournal,
	router Router,
	metrics drepo.Metrics,
	log *logger.Logger,
	watchlist []string,
) *ScalpUseCase {
	return &ScalpUseCase{
		fetcher:   fetcher,
		engine:    engine,
		scorer:    scorer,
		broker:    broker,
		journal:   journal,
		router:    router,
		metrics:   metrics,
		log:       log,
		watchlist: watchlist,
	}
}

// Run evaluates ticker, or scans the watchlist when ticker is empty.
// The PersistOutcome reports journaling/routing separately from the
// computed result; persistence failures never change the result.
func (uc *ScalpUseCase) Run(ctx context.Context, ticker string) (*models.ScalpResult, models.PersistOutcome) {
	if ticker == "" {
		return uc.scan(ctx)
	}
	return uc.runOne(ctx, ticker)
}

// scan walks the watchlist and returns the first qualifying signal.
func (uc *ScalpUseCase) scan(ctx context.Context) (*models.ScalpResult, models.PersistOutcome) {
	for _, t := range uc.watchlist {
		if ctx.Err() != nil {
			break
		}
		res, outcome := uc.runOne(ctx, t)
		if res.Status == models.StatusSignalGenerated {
			return res, outcome
		}
	}
	uc.metrics.RecordNoSignal("no_opportunities")
	return &models.ScalpResult{
		Status:    models.StatusNoOpportunities,
		Timestamp: time.Now().UTC(),
	}, models.PersistOutcome{}
}

func (uc *ScalpUseCase) runOne(ctx context.Context, ticker string) (*models.ScalpResult, models.PersistOutcome) {
	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("scalp_run", time.Since(start).Seconds())
	}()

	q := uc.fetcher.Fetch(ctx, ticker)
	if q == nil {
		uc.metrics.RecordNoSignal("no_quote")
		return noSignal(), models.PersistOutcome{}
	}

	ind := uc.engine.Compute(q)
	sig := uc.scorer.Score(q, ind)
	if sig == nil {
		uc.metrics.RecordNoSignal("below_threshold")
		return noSignal(), models.PersistOutcome{}
	}

	uc.metrics.RecordSignal(sig.Ticker, string(sig.SignalType))
	uc.metrics.RecordConfidence(sig.Ticker, float64(sig.ConfidenceScore))

	status := uc.broker.Status()
	preview := uc.broker.Preview(sig)

	entry := &models.SignalLogEntry{
		Timestamp:    sig.Timestamp,
		Signal:       *sig,
		BrokerStatus: &status,
		TradePreview: &preview,
	}
	outcome := uc.persist(ctx, entry)

	uc.log.Info("scalp signal generated",
		logger.String("ticker", sig.Ticker),
		logger.String("type", string(sig.SignalType)),
		logger.Int("confidence", sig.ConfidenceScore),
		logger.Bool("journaled", outcome.Journaled),
		logger.Bool("routed", outcome.Routed))

	return &models.ScalpResult{
		Status:       models.StatusSignalGenerated,
		Signal:       sig,
		TradePreview: &preview,
		BrokerStatus: &status,
		Timestamp:    time.Now().UTC(),
	}, outcome
}

// persist journals and routes best-effort; both failures are recorded,
// neither is surfaced.
func (uc *ScalpUseCase) persist(ctx context.Context, entry *models.SignalLogEntry) models.PersistOutcome {
	var outcome models.PersistOutcome

	if err := uc.journal.Append(entry); err != nil {
		outcome.JournalErr = err
		uc.metrics.RecordError("journal_append")
		uc.log.Error("journal append failed",
			logger.String("ticker", entry.Signal.Ticker), logger.Error(err))
	} else {
		outcome.Journaled = true
	}

	if uc.router != nil {
		if err := uc.router.Process(ctx, entry); err != nil {
			outcome.RouteErr = err
			uc.log.Warn("signal routing failed",
				logger.String("ticker", entry.Signal.Ticker), logger.Error(err))
		} else {
			outcome.Routed = true
		}
	}
	return outcome
}

func noSignal() *models.ScalpResult {
	return &models.ScalpResult{
		Status:    models.StatusNoSignal,
		Timestamp: time.Now().UTC(),
	}
}
