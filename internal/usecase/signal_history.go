package usecase

import (
	"context"
	"time"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
)

// SignalHistory serves recent signals from either the local journal or
// the ClickHouse archive.
type SignalHistory struct {
	journal drepo.SignalJournal
	archive drepo.SignalArchive
}

func NewSignalHistory(journal drepo.SignalJournal, archive drepo.SignalArchive) *SignalHistory {
	return &SignalHistory{journal: journal, archive: archive}
}

// Recent returns up to limit entries in chronological order. source is
// "archive" or "journal" (default). The archive filters by ticker in the
// query; the journal is small enough to filter here. A non-zero since
// drops entries older than it.
func (s *SignalHistory) Recent(ctx context.Context, source, ticker string, limit int, since time.Time) ([]models.SignalLogEntry, error) {
	if source == "archive" && s.archive != nil {
		entries, err := s.archive.Recent(ctx, ticker, limit)
		if err != nil {
			return nil, err
		}
		return filterSince(entries, since), nil
	}

	entries, err := s.journal.Recent(limit)
	if err != nil {
		return nil, err
	}
	if ticker != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Signal.Ticker == ticker {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return filterSince(entries, since), nil
}

func filterSince(entries []models.SignalLogEntry, since time.Time) []models.SignalLogEntry {
	if since.IsZero() {
		return entries
	}
	filtered := entries[:0:0]
	for _, e := range entries {
		if !e.Timestamp.Before(since) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
