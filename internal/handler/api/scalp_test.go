package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/internal/repository"
	"ScalpPulse/internal/service/broker"
	svccache "ScalpPulse/internal/service/cache"
	"ScalpPulse/internal/services/analytics"
	"ScalpPulse/internal/usecase"
	"ScalpPulse/pkg/logger"
)

type fixedFetcher struct {
	quotes map[string]*models.Quote
}

func (f *fixedFetcher) Fetch(_ context.Context, ticker string) *models.Quote {
	return f.quotes[ticker]
}

type handlerMetrics struct{}

func (handlerMetrics) RecordSignal(string, string)      {}
func (handlerMetrics) RecordNoSignal(string)            {}
func (handlerMetrics) RecordError(string)               {}
func (handlerMetrics) RecordConfidence(string, float64) {}
func (handlerMetrics) RecordLatency(string, float64)    {}

// envelope mirrors the APIResponse shape for decoding in assertions.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T, quotes map[string]*models.Quote) (*echo.Echo, *repository.FileJournal) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	journal := repository.NewFileJournal(filepath.Join(t.TempDir(), "signals.json"), 0)
	uc := usecase.NewScalpUseCase(
		&fixedFetcher{quotes: quotes},
		analytics.NewEngine(),
		analytics.NewScorer(),
		broker.NewPaper(25_000, 0.01),
		journal,
		nil,
		handlerMetrics{},
		log,
		nil,
	)
	history := usecase.NewSignalHistory(journal, nil)

	h := NewScalpHandler(log, uc, history, NewHub(log))
	h.SetCache(svccache.NewTTLCache())

	e := echo.New()
	h.RegisterRoutes(e)
	return e, journal
}

func strongTestQuote(ticker string) *models.Quote {
	return &models.Quote{
		Ticker: ticker, Price: 199, Open: 150, High: 200, Low: 150,
		Volume: 5_000_000, Timestamp: time.Now(), Source: "test",
	}
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestScalpEndpointGeneratesSignal(t *testing.T) {
	e, _ := newTestHandler(t, map[string]*models.Quote{"TSLA": strongTestQuote("TSLA")})

	rec := doGet(e, "/api/scalp?ticker=TSLA")

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var res models.ScalpResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.StatusSignalGenerated, res.Status)
	require.NotNil(t, res.Signal)
	assert.Equal(t, "TSLA", res.Signal.Ticker)
	assert.Equal(t, models.SignalLong, res.Signal.SignalType)
}

func TestScalpEndpointNoSignalOnMissingQuote(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	rec := doGet(e, "/api/scalp?ticker=GONE")

	require.Equal(t, http.StatusOK, rec.Code, "upstream failure is a status, not an HTTP error")
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var res models.ScalpResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.StatusNoSignal, res.Status)
	assert.Nil(t, res.Signal)
}

func TestScalpEndpointServesCachedResult(t *testing.T) {
	quotes := map[string]*models.Quote{"TSLA": strongTestQuote("TSLA")}
	e, journal := newTestHandler(t, quotes)

	require.Equal(t, http.StatusOK, doGet(e, "/api/scalp?ticker=TSLA").Code)
	require.Equal(t, http.StatusOK, doGet(e, "/api/scalp?ticker=TSLA").Code)

	entries, err := journal.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "second request hits the response cache, pipeline runs once")
}

func TestScalpEndpointRateLimited(t *testing.T) {
	e, _ := newTestHandler(t, map[string]*models.Quote{"TSLA": strongTestQuote("TSLA")})

	limited := false
	for i := 0; i < 10; i++ {
		if doGet(e, "/api/scalp?ticker=TSLA").Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst beyond the bucket capacity gets 429")
}

func TestScalpEndpointRejectsOverlongTicker(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	rec := doGet(e, "/api/scalp?ticker=WAYTOOLONGTICKER")

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestRecentSignalsEndpoint(t *testing.T) {
	e, journal := newTestHandler(t, nil)
	now := time.Now().UTC()
	for _, ticker := range []string{"TSLA", "NVDA"} {
		require.NoError(t, journal.Append(&models.SignalLogEntry{
			Timestamp: now,
			Signal: models.TradeSignal{
				Ticker: ticker, SignalType: models.SignalLong,
				EntryPrice: 100, ConfidenceScore: 80, Timestamp: now,
			},
		}))
	}

	rec := doGet(e, "/api/signals/recent?limit=10&ticker=NVDA")

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var list struct {
		Rows  []models.SignalLogEntry `json:"rows"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "NVDA", list.Rows[0].Signal.Ticker)
}

func TestRecentSignalsRejectsBadSource(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	rec := doGet(e, "/api/signals/recent?source=postgres")

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil)

	rec := doGet(e, "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var health struct {
		Status     string                     `json:"status"`
		Components map[string]componentHealth `json:"components"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Components["journal"].Status)
	assert.Equal(t, "ok", health.Components["ws_feed"].Status)
	assert.NotContains(t, health.Components, "archive")
}
