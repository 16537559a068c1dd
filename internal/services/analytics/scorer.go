package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ScalpPulse/internal/domain/models"
	domsvc "ScalpPulse/internal/domain/service"
)

// ConfidenceThreshold is the go/no-go gate on the averaged factor scores.
const ConfidenceThreshold = 75.0

// Fixed exit/stop distances. Policy constants, not risk-calibrated.
const (
	longExitPct  = 1.005
	longStopPct  = 0.997
	shortExitPct = 0.995
	shortStopPct = 1.003
)

// Scorer maps an indicator set to a trade signal using fixed piecewise
// scoring rules. The rules are policy decisions and are reproduced as-is.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

type factorScore struct {
	name  string
	score int
}

// Score returns a signal when confidence clears the threshold and the
// direction rules agree. Nil is the normal no-setup outcome.
func (s *Scorer) Score(q *models.Quote, ind models.IndicatorSet) *models.TradeSignal {
	factors := scoreFactors(ind)

	sum := 0
	for _, f := range factors {
		sum += f.score
	}
	confidence := float64(sum) / float64(len(factors))
	if confidence < ConfidenceThreshold {
		return nil
	}

	var direction models.SignalType
	switch {
	case ind.TrendStrength > 20 && ind.Momentum > 60:
		direction = models.SignalLong
	case ind.TrendStrength < -20 && ind.Momentum < 40:
		direction = models.SignalShort
	default:
		// confident but directionless; no signal
		return nil
	}

	entry := q.Price
	var exit, stop float64
	if direction == models.SignalLong {
		exit = entry * longExitPct
		stop = entry * longStopPct
	} else {
		exit = entry * shortExitPct
		stop = entry * shortStopPct
	}

	reward := math.Abs(exit - entry)
	risk := math.Abs(entry - stop)

	return &models.TradeSignal{
		Ticker:          q.Ticker,
		EntryPrice:      entry,
		ExitTarget:      exit,
		StopLoss:        stop,
		ConfidenceScore: int(math.Round(confidence)),
		SignalType:      direction,
		Timestamp:       time.Now().UTC(),
		Reasoning:       reasoning(ind, factors),
		RiskRewardRatio: reward / risk,
	}
}

func scoreFactors(ind models.IndicatorSet) []factorScore {
	return []factorScore{
		{"momentum", momentumScore(ind.Momentum)},
		{"volume", volumeScore(ind.VolumeSurge)},
		{"volatility", volatilityScore(ind.Volatility)},
		{"trend", trendScore(ind.TrendStrength)},
		{"liquidity", liquidityScore(ind.Liquidity)},
	}
}

func momentumScore(m float64) int {
	switch {
	case m > 70 || m < 30:
		return 90
	case m > 60 || m < 40:
		return 70
	default:
		return 40
	}
}

func volumeScore(surge float64) int {
	switch {
	case surge > 150:
		return 95
	case surge > 120:
		return 80
	case surge > 100:
		return 60
	default:
		return 30
	}
}

func volatilityScore(v float64) int {
	switch {
	case v >= 0.5 && v <= 2.0:
		return 90
	case v >= 0.3 && v <= 3.0:
		return 70
	default:
		return 30
	}
}

func trendScore(t float64) int {
	a := math.Abs(t)
	switch {
	case a > 50:
		return 90
	case a > 30:
		return 75
	case a > 15:
		return 60
	default:
		return 40
	}
}

func liquidityScore(l float64) int {
	switch {
	case l > 80:
		return 95
	case l > 60:
		return 80
	case l > 40:
		return 65
	default:
		return 40
	}
}

// reasoning renders the indicator values plus the two strongest factors.
// Deterministic: ties keep the fixed factor order.
func reasoning(ind models.IndicatorSet, factors []factorScore) string {
	ranked := make([]factorScore, len(factors))
	copy(ranked, factors)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	return fmt.Sprintf(
		"momentum=%.1f volume_surge=%.1f%% volatility=%.2f%% trend=%.1f liquidity=%.1f; strongest factors: %s, %s",
		ind.Momentum, ind.VolumeSurge, ind.Volatility, ind.TrendStrength, ind.Liquidity,
		ranked[0].name, ranked[1].name,
	)
}

var _ domsvc.SignalScorer = (*Scorer)(nil)
