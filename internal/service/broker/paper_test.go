package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ScalpPulse/internal/domain/models"
)

func TestPaperStatus(t *testing.T) {
	p := NewPaper(25_000, 0.01)
	st := p.Status()

	assert.True(t, st.Connected)
	assert.Equal(t, "paper", st.Mode)
	assert.Equal(t, 25_000.0, st.BuyingPower)
}

func TestPaperPreviewSizesByRisk(t *testing.T) {
	p := NewPaper(25_000, 0.01)
	sig := &models.TradeSignal{
		Ticker:     "TSLA",
		EntryPrice: 200,
		ExitTarget: 201,   // +0.5%
		StopLoss:   199.4, // -0.3%
		SignalType: models.SignalLong,
	}

	pv := p.Preview(sig)
	// risk budget 250, risk/share 0.60 -> 416 shares; notional fits equity? no:
	// 416*200 = 83200 > 25000, so buying power caps at 125 shares.
	assert.Equal(t, int64(125), pv.Quantity)
	assert.Equal(t, 25_000.0, pv.Notional)
	assert.InDelta(t, 125*0.6, pv.RiskAmount, 1e-9)
	assert.InDelta(t, 125*1.0, pv.RewardAmount, 1e-9)
}

func TestPaperPreviewNilSignal(t *testing.T) {
	p := NewPaper(25_000, 0.01)
	assert.Zero(t, p.Preview(nil))
}
