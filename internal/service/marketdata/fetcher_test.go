package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	"ScalpPulse/pkg/cache"
	"ScalpPulse/pkg/logger"
)

type stubProvider struct {
	name  string
	q     *models.Quote
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Quote(_ context.Context, _ string) (*models.Quote, error) {
	s.calls++
	return s.q, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func validQuote(ticker string) *models.Quote {
	return &models.Quote{
		Ticker:    ticker,
		Price:     150,
		Open:      149,
		High:      152,
		Low:       148,
		Volume:    2_000_000,
		Timestamp: time.Now(),
		Source:    "stub",
	}
}

func TestFetchFailover(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("rate limited")}
	secondary := &stubProvider{name: "secondary", q: validQuote("AAPL")}

	f := NewFetcher(testLogger(t), []drepo.QuoteProvider{primary, secondary})
	q := f.Fetch(context.Background(), "AAPL")

	require.NotNil(t, q)
	assert.Equal(t, "stub", q.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFetchRejectsInconsistentQuote(t *testing.T) {
	bad := validQuote("AAPL")
	bad.Price = 200 // above high
	primary := &stubProvider{name: "primary", q: bad}
	secondary := &stubProvider{name: "secondary", q: validQuote("AAPL")}

	f := NewFetcher(testLogger(t), []drepo.QuoteProvider{primary, secondary})
	q := f.Fetch(context.Background(), "AAPL")

	require.NotNil(t, q)
	assert.Equal(t, 1, secondary.calls)
}

func TestFetchAllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	secondary := &stubProvider{name: "secondary", err: errors.New("down")}

	f := NewFetcher(testLogger(t), []drepo.QuoteProvider{primary, secondary})
	assert.Nil(t, f.Fetch(context.Background(), "AAPL"))
}

func TestFetchUsesCache(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	provider := &stubProvider{name: "primary", q: validQuote("AAPL")}
	f := NewFetcher(testLogger(t), []drepo.QuoteProvider{provider},
		WithCache(mem, time.Minute))

	first := f.Fetch(context.Background(), "AAPL")
	second := f.Fetch(context.Background(), "AAPL")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, provider.calls, "second fetch should come from cache")
	assert.Equal(t, first.Price, second.Price)
}
