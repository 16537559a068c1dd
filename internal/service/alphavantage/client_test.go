package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "ScalpPulse/internal/domain/repository"
)

const intradayPayload = `{
  "Meta Data": {
    "1. Information": "Intraday (1min) open, high, low, close prices and volume",
    "2. Symbol": "AAPL"
  },
  "Time Series (1min)": {
    "2026-08-31 15:58:00": {
      "1. open": "149.10", "2. high": "149.90", "3. low": "148.80",
      "4. close": "149.50", "5. volume": "120000"
    },
    "2026-08-31 15:59:00": {
      "1. open": "149.50", "2. high": "150.20", "3. low": "149.30",
      "4. close": "150.00", "5. volume": "98000"
    }
  }
}`

func TestQuoteParsesLatestBar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_INTRADAY", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1min", r.URL.Query().Get("interval"))
		w.Write([]byte(intradayPayload))
	}))
	defer srv.Close()

	c := New("demo-key", srv.URL, drepo.Interval1Min, 5*time.Second)
	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, 150.00, q.Price)
	assert.Equal(t, 150.20, q.High)
	assert.Equal(t, 149.30, q.Low)
	assert.Equal(t, 149.50, q.Open)
	assert.Equal(t, int64(98000), q.Volume)
	assert.Equal(t, "alphavantage", q.Source)
	assert.True(t, q.Valid())
}

func TestQuoteRateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Please slow down."}`))
	}))
	defer srv.Close()

	c := New("demo-key", srv.URL, drepo.Interval1Min, 5*time.Second)
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream said")
}

func TestQuoteMissingAPIKey(t *testing.T) {
	// must fail fast, never touch the network
	c := New("", "http://127.0.0.1:1", drepo.Interval1Min, time.Second)
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestQuoteMalformedSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Meta Data": {}}`))
	}))
	defer srv.Close()

	c := New("demo-key", srv.URL, drepo.Interval1Min, 5*time.Second)
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no time series")
}
