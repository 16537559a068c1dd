package service

import "ScalpPulse/internal/domain/models"

// IndicatorEngine derives the per-quote indicator set. Pure: two calls on
// the same quote yield identical results.
type IndicatorEngine interface {
	Compute(q *models.Quote) models.IndicatorSet
}

// SignalScorer maps indicators to a confidence score and, when the score
// and direction rules allow, a trade signal. A nil signal is the normal
// "no qualifying setup" outcome, not an error.
type SignalScorer interface {
	Score(q *models.Quote, ind models.IndicatorSet) *models.TradeSignal
}

// BrokerPreview produces account state and trade sizing previews.
type BrokerPreview interface {
	Status() models.BrokerStatus
	Preview(sig *models.TradeSignal) models.TradePreview
}
