package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/internal/repository"
	"ScalpPulse/internal/service/broker"
	"ScalpPulse/internal/services/analytics"
	"ScalpPulse/pkg/logger"
)

type stubFetcher struct {
	quotes map[string]*models.Quote
}

func (s *stubFetcher) Fetch(_ context.Context, ticker string) *models.Quote {
	return s.quotes[ticker]
}

type captureRouter struct {
	entries []*models.SignalLogEntry
	err     error
}

func (r *captureRouter) Process(_ context.Context, entry *models.SignalLogEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

type failJournal struct{ err error }

func (j *failJournal) Append(*models.SignalLogEntry) error { return j.err }
func (j *failJournal) Recent(int) ([]models.SignalLogEntry, error) {
	return nil, nil
}

type noopMetrics struct {
	noSignals map[string]int
}

func (m *noopMetrics) RecordSignal(string, string)    {}
func (m *noopMetrics) RecordError(string)             {}
func (m *noopMetrics) RecordConfidence(string, float64) {}
func (m *noopMetrics) RecordLatency(string, float64)  {}
func (m *noopMetrics) RecordNoSignal(reason string) {
	if m.noSignals == nil {
		m.noSignals = make(map[string]int)
	}
	m.noSignals[reason]++
}

func strongQuote(ticker string) *models.Quote {
	// clears the confidence gate with a LONG direction
	return &models.Quote{
		Ticker: ticker, Price: 199, Open: 150, High: 200, Low: 150,
		Volume: 5_000_000, Timestamp: time.Now(), Source: "test",
	}
}

func flatQuote(ticker string) *models.Quote {
	// mid-range, trend 0: never a signal
	return &models.Quote{
		Ticker: ticker, Price: 150, Open: 149, High: 152, Low: 148,
		Volume: 2_000_000, Timestamp: time.Now(), Source: "test",
	}
}

func newTestUseCase(t *testing.T, fetcher *stubFetcher, router Router, watchlist []string) (*ScalpUseCase, *noopMetrics) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	journal := repository.NewFileJournal(filepath.Join(t.TempDir(), "signals.json"), 0)
	metrics := &noopMetrics{}
	uc := NewScalpUseCase(
		fetcher,
		analytics.NewEngine(),
		analytics.NewScorer(),
		broker.NewPaper(25_000, 0.01),
		journal,
		router,
		metrics,
		log,
		watchlist,
	)
	return uc, metrics
}

func TestRunGeneratesSignal(t *testing.T) {
	router := &captureRouter{}
	uc, _ := newTestUseCase(t, &stubFetcher{quotes: map[string]*models.Quote{
		"TSLA": strongQuote("TSLA"),
	}}, router, nil)

	res, outcome := uc.Run(context.Background(), "TSLA")

	assert.Equal(t, models.StatusSignalGenerated, res.Status)
	require.NotNil(t, res.Signal)
	assert.Equal(t, models.SignalLong, res.Signal.SignalType)
	require.NotNil(t, res.BrokerStatus)
	assert.Equal(t, "paper", res.BrokerStatus.Mode)
	require.NotNil(t, res.TradePreview)
	assert.Positive(t, res.TradePreview.Quantity)

	assert.True(t, outcome.Journaled)
	assert.True(t, outcome.Routed)
	require.Len(t, router.entries, 1)
	assert.Equal(t, "TSLA", router.entries[0].Signal.Ticker)
}

func TestRunNoSignalBelowThreshold(t *testing.T) {
	router := &captureRouter{}
	uc, metrics := newTestUseCase(t, &stubFetcher{quotes: map[string]*models.Quote{
		"AAPL": flatQuote("AAPL"),
	}}, router, nil)

	res, outcome := uc.Run(context.Background(), "AAPL")

	assert.Equal(t, models.StatusNoSignal, res.Status)
	assert.Nil(t, res.Signal)
	assert.False(t, outcome.Journaled)
	assert.Empty(t, router.entries)
	assert.Equal(t, 1, metrics.noSignals["below_threshold"])
}

func TestRunUpstreamUnavailable(t *testing.T) {
	uc, metrics := newTestUseCase(t, &stubFetcher{quotes: nil}, &captureRouter{}, nil)

	res, _ := uc.Run(context.Background(), "GONE")

	assert.Equal(t, models.StatusNoSignal, res.Status)
	assert.Equal(t, 1, metrics.noSignals["no_quote"])
}

func TestRunEmptyTickerScansWatchlist(t *testing.T) {
	router := &captureRouter{}
	uc, _ := newTestUseCase(t, &stubFetcher{quotes: map[string]*models.Quote{
		"AAPL": flatQuote("AAPL"),
		"TSLA": strongQuote("TSLA"),
	}}, router, []string{"AAPL", "TSLA", "NVDA"})

	res, outcome := uc.Run(context.Background(), "")

	assert.Equal(t, models.StatusSignalGenerated, res.Status)
	require.NotNil(t, res.Signal)
	assert.Equal(t, "TSLA", res.Signal.Ticker, "first qualifying ticker wins")
	assert.True(t, outcome.Journaled)
}

func TestRunEmptyWatchlistNoOpportunities(t *testing.T) {
	uc, metrics := newTestUseCase(t, &stubFetcher{quotes: map[string]*models.Quote{
		"AAPL": flatQuote("AAPL"),
	}}, &captureRouter{}, []string{"AAPL"})

	res, _ := uc.Run(context.Background(), "")

	assert.Equal(t, models.StatusNoOpportunities, res.Status)
	assert.Nil(t, res.Signal)
	assert.Equal(t, 1, metrics.noSignals["no_opportunities"])
}

func TestRunJournalFailureDoesNotAffectResult(t *testing.T) {
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	router := &captureRouter{}
	uc := NewScalpUseCase(
		&stubFetcher{quotes: map[string]*models.Quote{"TSLA": strongQuote("TSLA")}},
		analytics.NewEngine(),
		analytics.NewScorer(),
		broker.NewPaper(25_000, 0.01),
		&failJournal{err: errors.New("disk full")},
		router,
		&noopMetrics{},
		log,
		nil,
	)

	res, outcome := uc.Run(context.Background(), "TSLA")

	assert.Equal(t, models.StatusSignalGenerated, res.Status)
	assert.False(t, outcome.Journaled)
	assert.ErrorContains(t, outcome.JournalErr, "disk full")
	assert.True(t, outcome.Routed, "routing proceeds despite journal failure")
}

func TestRunRouteFailureCaptured(t *testing.T) {
	router := &captureRouter{err: errors.New("broker down")}
	uc, _ := newTestUseCase(t, &stubFetcher{quotes: map[string]*models.Quote{
		"TSLA": strongQuote("TSLA"),
	}}, router, nil)

	res, outcome := uc.Run(context.Background(), "TSLA")

	assert.Equal(t, models.StatusSignalGenerated, res.Status)
	assert.True(t, outcome.Journaled)
	assert.False(t, outcome.Routed)
	assert.ErrorContains(t, outcome.RouteErr, "broker down")
}
