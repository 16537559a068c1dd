package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
)

// DefaultJournalCap bounds the journal file; the oldest entries roll off.
const DefaultJournalCap = 1000

// FileJournal persists signals as a single JSON array on disk. Appends
// rewrite the whole file under a mutex, so concurrent writers cannot lose
// each other's entries. Fine at the 1000-entry cap; not a general WAL.
type FileJournal struct {
	path string
	cap  int
	mu   sync.Mutex
}

// NewFileJournal creates a journal at path with the given cap
// (DefaultJournalCap when cap <= 0).
func NewFileJournal(path string, cap int) *FileJournal {
	if cap <= 0 {
		cap = DefaultJournalCap
	}
	return &FileJournal{path: path, cap: cap}
}

// Append adds entry to the journal, dropping the oldest entries past cap.
func (j *FileJournal) Append(entry *models.SignalLogEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := j.readLocked()
	entries = append(entries, *entry)
	if len(entries) > j.cap {
		entries = entries[len(entries)-j.cap:]
	}
	return j.writeLocked(entries)
}

// Recent returns up to limit entries, oldest first. A missing or corrupt
// file reads as empty; the journal heals on the next append.
func (j *FileJournal) Recent(limit int) ([]models.SignalLogEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := j.readLocked()
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (j *FileJournal) readLocked() []models.SignalLogEntry {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil
	}
	var entries []models.SignalLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

func (j *FileJournal) writeLocked(entries []models.SignalLogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("journal dir: %w", err)
		}
	}

	// Write-then-rename so readers never see a half-written array.
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

var _ drepo.SignalJournal = (*FileJournal)(nil)
