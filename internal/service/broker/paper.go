package broker

import (
	"math"

	"ScalpPulse/internal/domain/models"
	domsvc "ScalpPulse/internal/domain/service"
)

// Paper sizes trades against a configured account without placing orders.
// All arithmetic, no I/O; Connected is always true for the paper account.
type Paper struct {
	equity       float64
	riskFraction float64
}

// NewPaper creates a paper broker with the given account equity and
// per-trade risk fraction (e.g. 0.01 risks 1% of equity per trade).
func NewPaper(equity, riskFraction float64) *Paper {
	return &Paper{equity: equity, riskFraction: riskFraction}
}

func (p *Paper) Status() models.BrokerStatus {
	return models.BrokerStatus{
		Connected:   true,
		Mode:        "paper",
		BuyingPower: p.equity,
	}
}

// Preview sizes a position so the stop-loss distance risks at most the
// configured fraction of equity, capped by buying power.
func (p *Paper) Preview(sig *models.TradeSignal) models.TradePreview {
	if sig == nil || sig.EntryPrice <= 0 {
		return models.TradePreview{}
	}

	riskPerShare := math.Abs(sig.EntryPrice - sig.StopLoss)
	rewardPerShare := math.Abs(sig.ExitTarget - sig.EntryPrice)

	var qty int64
	if riskPerShare > 0 {
		qty = int64(p.equity * p.riskFraction / riskPerShare)
	}
	if maxQty := int64(p.equity / sig.EntryPrice); qty > maxQty {
		qty = maxQty
	}
	if qty < 0 {
		qty = 0
	}

	return models.TradePreview{
		Quantity:     qty,
		Notional:     float64(qty) * sig.EntryPrice,
		RiskAmount:   float64(qty) * riskPerShare,
		RewardAmount: float64(qty) * rewardPerShare,
	}
}

var _ domsvc.BrokerPreview = (*Paper)(nil)
