package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
)

func TestScoreConfidenceBoundary(t *testing.T) {
	s := NewScorer()
	q := quote(150, 152, 148, 149, 2_000_000)

	// factor scores 70+95+70+75+65 = 375, average exactly 75 -> signal
	at := models.IndicatorSet{
		Momentum:      65,
		VolumeSurge:   160,
		Volatility:    2.5,
		TrendStrength: 35,
		Liquidity:     50,
	}
	sig := s.Score(q, at)
	require.NotNil(t, sig)
	assert.Equal(t, 75, sig.ConfidenceScore)
	assert.Equal(t, models.SignalLong, sig.SignalType)

	// drop liquidity one tier: 70 average, below the gate
	below := at
	below.Liquidity = 30
	assert.Nil(t, s.Score(q, below))
}

func TestScoreDirectionless(t *testing.T) {
	// high confidence but neither direction rule fires
	s := NewScorer()
	ind := models.IndicatorSet{
		Momentum:      20, // factor 90, but too low for LONG
		VolumeSurge:   200,
		Volatility:    1.0,
		TrendStrength: 10, // too weak for either side
		Liquidity:     90,
	}
	assert.Nil(t, s.Score(quote(50, 51, 49, 50, 2_000_000), ind))
}

func TestScoreDirectionExclusive(t *testing.T) {
	// LONG needs momentum>60, SHORT needs momentum<40: provably disjoint,
	// but sweep anyway in case the rules drift.
	for trend := -100.0; trend <= 100.0; trend += 5 {
		for momentum := 0.0; momentum <= 100.0; momentum += 5 {
			long := trend > 20 && momentum > 60
			short := trend < -20 && momentum < 40
			require.False(t, long && short,
				"trend=%v momentum=%v satisfied both directions", trend, momentum)
		}
	}
}

func TestScoreLongSignal(t *testing.T) {
	s := NewScorer()
	e := NewEngine()

	q := quote(199, 200, 150, 150, 5_000_000)
	q.Ticker = "TSLA"
	sig := s.Score(q, e.Compute(q))
	require.NotNil(t, sig)

	assert.Equal(t, "TSLA", sig.Ticker)
	assert.Equal(t, models.SignalLong, sig.SignalType)
	assert.Equal(t, 80, sig.ConfidenceScore)
	assert.InDelta(t, 199*1.005, sig.ExitTarget, 1e-9)
	assert.InDelta(t, 199*0.997, sig.StopLoss, 1e-9)
	assert.InDelta(t, 0.005/0.003, sig.RiskRewardRatio, 1e-9)
	assert.Positive(t, sig.RiskRewardRatio)
	assert.True(t, strings.HasSuffix(sig.Reasoning, "strongest factors: volume, liquidity"),
		"reasoning was %q", sig.Reasoning)
}

func TestScoreShortSignal(t *testing.T) {
	s := NewScorer()
	e := NewEngine()

	q := quote(100.5, 110, 100, 108, 2_000_000)
	sig := s.Score(q, e.Compute(q))
	require.NotNil(t, sig)

	assert.Equal(t, models.SignalShort, sig.SignalType)
	assert.InDelta(t, 100.5*0.995, sig.ExitTarget, 1e-9)
	assert.InDelta(t, 100.5*1.003, sig.StopLoss, 1e-9)
	assert.Positive(t, sig.RiskRewardRatio)
}

func TestScoreMidRangeNoSignal(t *testing.T) {
	// balanced quote: trend 0, no direction regardless of sub-scores
	s := NewScorer()
	e := NewEngine()

	q := quote(150, 152, 148, 149, 2_000_000)
	q.Ticker = "AAPL"
	assert.Nil(t, s.Score(q, e.Compute(q)))
}

func TestFactorTables(t *testing.T) {
	cases := []struct {
		name string
		fn   func(float64) int
		in   float64
		want int
	}{
		{"momentum high", momentumScore, 75, 90},
		{"momentum low", momentumScore, 25, 90},
		{"momentum lean", momentumScore, 65, 70},
		{"momentum flat", momentumScore, 50, 40},
		{"volume surge", volumeScore, 151, 95},
		{"volume mild", volumeScore, 110, 60},
		{"volume quiet", volumeScore, 80, 30},
		{"volatility sweet", volatilityScore, 1.0, 90},
		{"volatility edge", volatilityScore, 2.5, 70},
		{"volatility wild", volatilityScore, 9.0, 30},
		{"trend strong", trendScore, -60, 90},
		{"trend soft", trendScore, 20, 60},
		{"liquidity deep", liquidityScore, 95, 95},
		{"liquidity thin", liquidityScore, 10, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fn(tc.in))
		})
	}
}
