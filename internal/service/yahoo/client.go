package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	pkghttp "ScalpPulse/pkg/http"
)

const (
	chartPath      = "/v8/finance/chart"
	defaultBaseURL = "https://query1.finance.yahoo.com" + chartPath
)

// Client is the fallback QuoteProvider, backed by the Yahoo chart endpoint.
// Needs no API key, so it is always eligible.
type Client struct {
	baseURL string
	http    *pkghttp.Client
}

// New accepts either the full chart endpoint or a bare host; the chart
// path is appended when missing so a host-only configuration still works.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, chartPath) {
		baseURL += chartPath
	}
	return &Client{
		baseURL: baseURL,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return "yahoo" }

// chartResponse is the v8 chart schema, trimmed to what we read.
// Indicator arrays use pointers because the API emits nulls for gaps.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the day's intraday bars and folds them into one snapshot:
// session high/low/volume around the live regular market price.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.baseURL, ticker),
		QueryParams: map[string][]string{
			"interval":       {"1m"},
			"range":          {"1d"},
			"includePrePost": {"false"},
		},
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; scalppulse/1.0)",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: api error %s: %s",
			ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty result", ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: no quote indicators", ticker)
	}
	bars := result.Indicators.Quote[0]

	var (
		open, high, low float64
		volume          float64
		haveOpen        bool
		haveRange       bool
	)
	for i := range result.Timestamp {
		if i < len(bars.Open) && bars.Open[i] != nil && !haveOpen {
			open = *bars.Open[i]
			haveOpen = true
		}
		if i < len(bars.High) && bars.High[i] != nil {
			if !haveRange || *bars.High[i] > high {
				high = *bars.High[i]
			}
		}
		if i < len(bars.Low) && bars.Low[i] != nil {
			if !haveRange || *bars.Low[i] < low {
				low = *bars.Low[i]
			}
		}
		if i < len(bars.High) && bars.High[i] != nil && i < len(bars.Low) && bars.Low[i] != nil {
			haveRange = true
		}
		if i < len(bars.Volume) && bars.Volume[i] != nil {
			volume += *bars.Volume[i]
		}
	}
	if !haveOpen || !haveRange {
		return nil, fmt.Errorf("yahoo %s: no valid bars in session", ticker)
	}

	price := result.Meta.RegularMarketPrice
	if price == 0 {
		price = lastClose(bars.Close)
	}
	if price == 0 {
		return nil, fmt.Errorf("yahoo %s: no market price", ticker)
	}

	// The live price can sit a tick outside the bar range; widen so the
	// quote passes consistency checks.
	if price > high {
		high = price
	}
	if price < low {
		low = price
	}

	when := time.Now().UTC()
	if result.Meta.RegularMarketTime > 0 {
		when = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
	}

	return &models.Quote{
		Ticker:    ticker,
		Price:     price,
		Open:      open,
		High:      high,
		Low:       low,
		Volume:    int64(volume),
		Timestamp: when,
		Source:    "yahoo",
	}, nil
}

func lastClose(closes []*float64) float64 {
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return *closes[i]
		}
	}
	return 0
}

var _ drepo.QuoteProvider = (*Client)(nil)
