package analytics

import (
	domsvc "ScalpPulse/internal/domain/service"

	"ScalpPulse/internal/domain/models"
)

// Fixed normalization baselines. These are documented simplifications
// carried over from the strategy definition, not adaptive historical
// averages; see FixedVolumeBaseline naming.
const (
	FixedVolumeBaseline       = 1_000_000.0  // shares
	FixedDollarVolumeBaseline = 10_000_000.0 // dollars
)

// Engine computes the five per-quote indicators from a single snapshot.
// No historical series is used anywhere.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compute derives the indicator set. Pure; a well-formed quote always
// yields a fully populated set.
func (e *Engine) Compute(q *models.Quote) models.IndicatorSet {
	spread := q.High - q.Low

	var momentum float64
	if spread > 0 {
		momentum = (q.Price - q.Low) / spread * 100
	}

	volumeSurge := float64(q.Volume) / FixedVolumeBaseline * 100

	var volatility float64
	if q.Price > 0 {
		volatility = spread / q.Price * 100
	}

	liquidity := float64(q.Volume) * q.Price / FixedDollarVolumeBaseline * 100
	if liquidity > 100 {
		liquidity = 100
	}

	return models.IndicatorSet{
		Momentum:      momentum,
		VolumeSurge:   volumeSurge,
		Volatility:    volatility,
		TrendStrength: trendStrength(q),
		Liquidity:     liquidity,
	}
}

// trendStrength measures where price sits relative to the midpoint of the
// high/low range, signed, normalized to [-100, 100].
func trendStrength(q *models.Quote) float64 {
	mid := (q.High + q.Low) / 2
	if q.Price > mid {
		den := q.High - mid
		if den == 0 {
			return 0
		}
		return (q.Price - mid) / den * 100
	}
	den := mid - q.Low
	if den == 0 {
		return 0
	}
	return (mid - q.Price) / den * -100
}

var _ domsvc.IndicatorEngine = (*Engine)(nil)
