package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
)

// ClickHouseArchive implements SignalArchive on a ClickHouse table.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates the archive over db, writing to table.
func NewClickHouseArchive(db *sql.DB, table string) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, table: table}
}

// SchemaStatements returns the idempotent DDL for the signal archive.
func SchemaStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime64(3),
			ticker LowCardinality(String),
			signal_type LowCardinality(String),
			entry_price Float64,
			exit_target Float64,
			stop_loss Float64,
			confidence_score UInt8,
			risk_reward_ratio Float64,
			reasoning String,
			broker_mode LowCardinality(String) DEFAULT '',
			preview_quantity Int64 DEFAULT 0,
			preview_notional Float64 DEFAULT 0
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (ticker, ts)`, table),
	}
}

func (a *ClickHouseArchive) Store(ctx context.Context, entry *models.SignalLogEntry) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(ts, ticker, signal_type, entry_price, exit_target, stop_loss,
		 confidence_score, risk_reward_ratio, reasoning,
		 broker_mode, preview_quantity, preview_notional)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.table)

	var brokerMode string
	if entry.BrokerStatus != nil {
		brokerMode = entry.BrokerStatus.Mode
	}
	var previewQty int64
	var previewNotional float64
	if entry.TradePreview != nil {
		previewQty = entry.TradePreview.Quantity
		previewNotional = entry.TradePreview.Notional
	}

	s := entry.Signal
	_, err := a.db.ExecContext(ctx, q,
		entry.Timestamp,
		s.Ticker,
		string(s.SignalType),
		s.EntryPrice,
		s.ExitTarget,
		s.StopLoss,
		uint8(s.ConfidenceScore),
		s.RiskRewardRatio,
		s.Reasoning,
		brokerMode,
		previewQty,
		previewNotional,
	)
	if err != nil {
		return fmt.Errorf("archive store: %w", err)
	}
	return nil
}

// Recent returns the newest signals, optionally filtered by ticker,
// in chronological order.
func (a *ClickHouseArchive) Recent(ctx context.Context, ticker string, limit int) ([]models.SignalLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	q := fmt.Sprintf(`SELECT ts, ticker, signal_type, entry_price, exit_target,
		stop_loss, confidence_score, risk_reward_ratio, reasoning
		FROM %s`, a.table)
	args := []interface{}{}
	if ticker != "" {
		q += " WHERE ticker = ?"
		args = append(args, ticker)
	}
	q += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	var entries []models.SignalLogEntry
	for rows.Next() {
		var (
			e          models.SignalLogEntry
			ts         time.Time
			signalType string
			confidence uint8
		)
		if err := rows.Scan(&ts, &e.Signal.Ticker, &signalType,
			&e.Signal.EntryPrice, &e.Signal.ExitTarget, &e.Signal.StopLoss,
			&confidence, &e.Signal.RiskRewardRatio, &e.Signal.Reasoning); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		e.Timestamp = ts
		e.Signal.Timestamp = ts
		e.Signal.SignalType = models.SignalType(signalType)
		e.Signal.ConfidenceScore = int(confidence)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest-last to match the journal's ordering
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (a *ClickHouseArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseArchive) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

var _ drepo.SignalArchive = (*ClickHouseArchive)(nil)
