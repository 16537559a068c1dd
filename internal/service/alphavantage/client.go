package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	pkghttp "ScalpPulse/pkg/http"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Client is the primary QuoteProvider, backed by the Alpha Vantage
// intraday time series endpoint.
type Client struct {
	apiKey   string
	baseURL  string
	interval drepo.Interval
	http     *pkghttp.Client
}

// New creates a new Alpha Vantage quote provider. An empty apiKey is
// allowed; Quote then fails fast so the fetcher falls through.
func New(apiKey, baseURL string, interval drepo.Interval, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		interval: interval,
		http:     pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return "alphavantage" }

// bar is one OHLCV entry. Alpha Vantage serializes every number as a string.
type bar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Quote fetches the intraday series and returns the most recent bar.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("alphavantage: api key not configured")
	}

	var payload map[string]json.RawMessage
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_INTRADAY"},
			"symbol":     {ticker},
			"interval":   {string(c.interval)},
			"outputsize": {"compact"},
			"apikey":     {c.apiKey},
		},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", ticker, err)
	}

	// The API reports problems as 200s with a message field.
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := payload[key]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, fmt.Errorf("alphavantage %s: upstream said: %s", ticker, msg)
		}
	}

	series, err := timeSeries(payload)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", ticker, err)
	}

	latestTS, latest, err := latestBar(series)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", ticker, err)
	}

	q, err := latest.toQuote(ticker, latestTS)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", ticker, err)
	}
	return q, nil
}

// timeSeries finds the series object. The key embeds the interval
// ("Time Series (1min)"), so match on prefix.
func timeSeries(payload map[string]json.RawMessage) (map[string]bar, error) {
	for key, raw := range payload {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		var series map[string]bar
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("decode series: %w", err)
		}
		return series, nil
	}
	return nil, fmt.Errorf("no time series in response")
}

// latestBar picks the newest entry. Keys are "2006-01-02 15:04:05" so
// lexical order is chronological order.
func latestBar(series map[string]bar) (string, bar, error) {
	var latest string
	for ts := range series {
		if ts > latest {
			latest = ts
		}
	}
	if latest == "" {
		return "", bar{}, fmt.Errorf("empty time series")
	}
	return latest, series[latest], nil
}

func (b bar) toQuote(ticker, ts string) (*models.Quote, error) {
	open, err := strconv.ParseFloat(b.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parse open %q: %w", b.Open, err)
	}
	high, err := strconv.ParseFloat(b.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parse high %q: %w", b.High, err)
	}
	low, err := strconv.ParseFloat(b.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parse low %q: %w", b.Low, err)
	}
	price, err := strconv.ParseFloat(b.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parse close %q: %w", b.Close, err)
	}
	volume, err := strconv.ParseInt(b.Volume, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse volume %q: %w", b.Volume, err)
	}

	when, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		when = time.Now().UTC()
	}

	return &models.Quote{
		Ticker:    ticker,
		Price:     price,
		Open:      open,
		High:      high,
		Low:       low,
		Volume:    volume,
		Timestamp: when,
		Source:    "alphavantage",
	}, nil
}

var _ drepo.QuoteProvider = (*Client)(nil)
