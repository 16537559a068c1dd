package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartPayload = `{
  "chart": {
    "result": [{
      "meta": {
        "symbol": "TSLA",
        "regularMarketPrice": 199.0,
        "regularMarketTime": 1756735140
      },
      "timestamp": [1756734900, 1756734960, 1756735020, 1756735080],
      "indicators": {
        "quote": [{
          "open":   [150.0, null, 180.0, 198.0],
          "high":   [155.0, null, 200.0, 199.5],
          "low":    [150.0, null, 178.0, 197.0],
          "close":  [154.0, null, 199.0, 198.5],
          "volume": [2000000, null, 1500000, 1500000]
        }]
      }
    }],
    "error": null
  }
}`

func TestQuoteAggregatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		w.Write([]byte(chartPayload))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	q, err := c.Quote(context.Background(), "TSLA")
	require.NoError(t, err)

	assert.Equal(t, "TSLA", q.Ticker)
	assert.Equal(t, 199.0, q.Price)   // meta price wins
	assert.Equal(t, 200.0, q.High)    // session max, nulls skipped
	assert.Equal(t, 150.0, q.Low)     // session min
	assert.Equal(t, 150.0, q.Open)    // first valid bar
	assert.Equal(t, int64(5_000_000), q.Volume)
	assert.Equal(t, "yahoo", q.Source)
	assert.True(t, q.Valid())
}

func TestNewAppendsChartPathToBareHost(t *testing.T) {
	cases := []struct {
		name    string
		baseURL func(srvURL string) string
	}{
		{"host only", func(u string) string { return u }},
		{"host with trailing slash", func(u string) string { return u + "/" }},
		{"full chart endpoint", func(u string) string { return u + "/v8/finance/chart" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(chartPayload))
			}))
			defer srv.Close()

			c := New(tc.baseURL(srv.URL), 5*time.Second)
			_, err := c.Quote(context.Background(), "TSLA")
			require.NoError(t, err)
			assert.Equal(t, "/v8/finance/chart/TSLA", gotPath)
		})
	}
}

func TestQuoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestQuoteAllBarsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
		  "chart": {"result": [{
		    "meta": {"symbol": "HALT", "regularMarketPrice": 10.0},
		    "timestamp": [1756734900],
		    "indicators": {"quote": [{
		      "open": [null], "high": [null], "low": [null],
		      "close": [null], "volume": [null]
		    }]}
		  }], "error": null}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Quote(context.Background(), "HALT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid bars")
}

func TestQuoteWidensRangeToLivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
		  "chart": {"result": [{
		    "meta": {"symbol": "GAP", "regularMarketPrice": 210.0},
		    "timestamp": [1756734900],
		    "indicators": {"quote": [{
		      "open": [200.0], "high": [205.0], "low": [199.0],
		      "close": [204.0], "volume": [100000]
		    }]}
		  }], "error": null}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	q, err := c.Quote(context.Background(), "GAP")
	require.NoError(t, err)
	assert.Equal(t, 210.0, q.High)
	assert.True(t, q.Valid())
}
