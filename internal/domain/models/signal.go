package models

import "time"

// SignalType is the trade direction of a generated signal.
type SignalType string

const (
	SignalLong  SignalType = "LONG"
	SignalShort SignalType = "SHORT"
)

// Pipeline result statuses. These are the only caller-visible outcomes;
// upstream failures and low-confidence runs render the same way.
const (
	StatusSignalGenerated = "SIGNAL_GENERATED"
	StatusNoSignal        = "NO_SIGNAL"
	StatusNoOpportunities = "NO_OPPORTUNITIES"
)

// TradeSignal is the immutable output of the scorer.
type TradeSignal struct {
	Ticker          string     `json:"ticker"`
	EntryPrice      float64    `json:"entry_price"`
	ExitTarget      float64    `json:"exit_target"`
	StopLoss        float64    `json:"stop_loss"`
	ConfidenceScore int        `json:"confidence_score"`
	SignalType      SignalType `json:"signal_type"`
	Timestamp       time.Time  `json:"timestamp"`
	Reasoning       string     `json:"reasoning"`
	RiskRewardRatio float64    `json:"risk_reward_ratio"`
}

// BrokerStatus is a snapshot of the (paper) broker account.
type BrokerStatus struct {
	Connected   bool    `json:"connected"`
	Mode        string  `json:"mode"` // "paper"
	BuyingPower float64 `json:"buying_power"`
}

// TradePreview sizes a prospective trade against account equity.
// Preview only; no order is ever placed.
type TradePreview struct {
	Quantity     int64   `json:"quantity"`
	Notional     float64 `json:"notional"`
	RiskAmount   float64 `json:"risk_amount"`
	RewardAmount float64 `json:"reward_amount"`
}

// SignalLogEntry is the journal/archive record for one generated signal.
type SignalLogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Signal       TradeSignal   `json:"signal"`
	BrokerStatus *BrokerStatus `json:"broker_status,omitempty"`
	TradePreview *TradePreview `json:"trade_preview,omitempty"`
}

// ScalpResult is the caller-facing outcome of one pipeline run.
type ScalpResult struct {
	Status       string        `json:"status"`
	Signal       *TradeSignal  `json:"signal,omitempty"`
	TradePreview *TradePreview `json:"trade_preview,omitempty"`
	BrokerStatus *BrokerStatus `json:"broker_status,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PersistOutcome separates "signal computed" from "signal persisted".
// Persistence is best-effort and never changes the computed result.
type PersistOutcome struct {
	Journaled  bool
	JournalErr error
	Routed     bool
	RouteErr   error
}
