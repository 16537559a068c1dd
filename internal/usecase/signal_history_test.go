package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/internal/repository"
)

func newTestHistory(t *testing.T) (*SignalHistory, *repository.FileJournal) {
	t.Helper()
	journal := repository.NewFileJournal(filepath.Join(t.TempDir(), "signals.json"), 0)
	return NewSignalHistory(journal, nil), journal
}

func journalEntry(ticker string, ts time.Time) *models.SignalLogEntry {
	e := signalEntry(ticker)
	e.Timestamp = ts
	e.Signal.Timestamp = ts
	return e
}

func TestHistoryJournalSource(t *testing.T) {
	h, journal := newTestHistory(t)
	now := time.Now().UTC()
	require.NoError(t, journal.Append(journalEntry("TSLA", now.Add(-2*time.Minute))))
	require.NoError(t, journal.Append(journalEntry("NVDA", now.Add(-time.Minute))))

	entries, err := h.Recent(context.Background(), "journal", "", 10, time.Time{})

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "TSLA", entries[0].Signal.Ticker, "chronological order")
}

func TestHistoryJournalTickerFilter(t *testing.T) {
	h, journal := newTestHistory(t)
	now := time.Now().UTC()
	require.NoError(t, journal.Append(journalEntry("TSLA", now)))
	require.NoError(t, journal.Append(journalEntry("NVDA", now)))

	entries, err := h.Recent(context.Background(), "journal", "NVDA", 10, time.Time{})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NVDA", entries[0].Signal.Ticker)
}

func TestHistorySinceFilter(t *testing.T) {
	h, journal := newTestHistory(t)
	now := time.Now().UTC()
	require.NoError(t, journal.Append(journalEntry("TSLA", now.Add(-time.Hour))))
	require.NoError(t, journal.Append(journalEntry("TSLA", now)))

	entries, err := h.Recent(context.Background(), "journal", "", 10, now.Add(-time.Minute))

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, now, entries[0].Timestamp, time.Second)
}

func TestHistoryArchiveSource(t *testing.T) {
	arc := &stubArchive{}
	arc.entries = append(arc.entries, signalEntry("TSLA"), signalEntry("NVDA"))
	h := NewSignalHistory(repository.NewFileJournal(filepath.Join(t.TempDir(), "signals.json"), 0), arc)

	entries, err := h.Recent(context.Background(), "archive", "NVDA", 10, time.Time{})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NVDA", entries[0].Signal.Ticker)
}

func TestHistoryArchiveSourceFallsBackToJournal(t *testing.T) {
	h, journal := newTestHistory(t)
	require.NoError(t, journal.Append(signalEntry("TSLA")))

	// no archive wired: archive source reads the journal
	entries, err := h.Recent(context.Background(), "archive", "", 10, time.Time{})

	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
