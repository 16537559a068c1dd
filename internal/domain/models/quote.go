package models

import "time"

// Quote is a single point-in-time market snapshot for a ticker.
// It is ephemeral: created per fetch, never persisted.
type Quote struct {
	Ticker    string
	Price     float64
	Open      float64
	High      float64
	Low       float64
	Volume    int64
	Timestamp time.Time
	Source    string // upstream feed that supplied the quote (provenance only)
}

// Valid reports whether the quote is complete and internally consistent.
// Upstream feeds do not enforce low <= price <= high, so we do.
func (q *Quote) Valid() bool {
	if q == nil || q.Ticker == "" {
		return false
	}
	if q.Price <= 0 || q.High <= 0 || q.Low <= 0 || q.Open <= 0 {
		return false
	}
	if q.Volume < 0 {
		return false
	}
	if q.Low > q.Price || q.Price > q.High {
		return false
	}
	return true
}

// IndicatorSet holds the five per-quote indicators, derived 1:1 from a Quote.
type IndicatorSet struct {
	Momentum      float64 // position of price within the high-low range, 0..100
	VolumeSurge   float64 // volume vs fixed baseline, percent, unbounded above
	Volatility    float64 // (high-low)/price, percent
	TrendStrength float64 // signed distance from the high/low midpoint, -100..100
	Liquidity     float64 // dollar volume vs fixed baseline, clamped to 100
}
