package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScalpPulse/internal/domain/models"
)

type stubProc struct {
	mu      sync.Mutex
	entries []*models.SignalLogEntry
	failN   int
}

func (p *stubProc) Process(_ context.Context, entry *models.SignalLogEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failN > 0 {
		p.failN--
		return errors.New("backend unavailable")
	}
	p.entries = append(p.entries, entry)
	return nil
}

func (p *stubProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

type pipelineMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *pipelineMetrics) RecordSignal(string, string)      {}
func (m *pipelineMetrics) RecordNoSignal(string)            {}
func (m *pipelineMetrics) RecordConfidence(string, float64) {}
func (m *pipelineMetrics) RecordLatency(string, float64)    {}
func (m *pipelineMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func (m *pipelineMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func pipelineEntry(ticker string) *models.SignalLogEntry {
	return &models.SignalLogEntry{
		Timestamp: time.Now().UTC(),
		Signal: models.TradeSignal{
			Ticker:          ticker,
			SignalType:      models.SignalLong,
			EntryPrice:      199,
			ConfidenceScore: 80,
			Timestamp:       time.Now().UTC(),
		},
	}
}

func TestPipelineForwardsValidEntry(t *testing.T) {
	proc := &stubProc{}
	p := NewSignalPipeline(proc, &pipelineMetrics{})

	err := p.Process(context.Background(), pipelineEntry("TSLA"))

	require.NoError(t, err)
	assert.Equal(t, 1, proc.count())
}

func TestPipelineRejectsInvalidEntries(t *testing.T) {
	proc := &stubProc{}
	m := &pipelineMetrics{}
	p := NewSignalPipeline(proc, m)

	cases := []struct {
		name  string
		entry *models.SignalLogEntry
	}{
		{"nil entry", nil},
		{"empty ticker", &models.SignalLogEntry{Signal: models.TradeSignal{EntryPrice: 1, ConfidenceScore: 80}}},
		{"zero price", &models.SignalLogEntry{Signal: models.TradeSignal{Ticker: "TSLA", ConfidenceScore: 80}}},
		{"confidence out of range", &models.SignalLogEntry{Signal: models.TradeSignal{Ticker: "TSLA", EntryPrice: 1, ConfidenceScore: 150}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, p.Process(context.Background(), tc.entry))
		})
	}
	assert.Equal(t, 0, proc.count())
	assert.Equal(t, len(cases), m.errorCount("pipeline_validate"))
}

func TestPipelineThrottlesPerTicker(t *testing.T) {
	proc := &stubProc{}
	m := &pipelineMetrics{}
	p := NewSignalPipeline(proc, m, WithMaxRPS(1))

	require.NoError(t, p.Process(context.Background(), pipelineEntry("TSLA")))
	require.NoError(t, p.Process(context.Background(), pipelineEntry("TSLA")))
	require.NoError(t, p.Process(context.Background(), pipelineEntry("NVDA")))

	assert.Equal(t, 2, proc.count(), "second TSLA entry inside the window is dropped")
	assert.Equal(t, 1, m.errorCount("pipeline_throttle"))
}

func TestPipelineBuffersAndFlushesOnBackendRecovery(t *testing.T) {
	proc := &stubProc{failN: 1}
	m := &pipelineMetrics{}
	p := NewSignalPipeline(proc, m, WithBufferSize(8))

	err := p.Process(context.Background(), pipelineEntry("TSLA"))
	require.Error(t, err, "first attempt fails and the entry is buffered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	require.Eventually(t, func() bool {
		return proc.count() == 1
	}, 3*time.Second, 20*time.Millisecond, "buffered entry is flushed once the backend recovers")
}

func TestPipelineRestartsAfterStop(t *testing.T) {
	proc := &stubProc{failN: 1}
	p := NewSignalPipeline(proc, &pipelineMetrics{}, WithBufferSize(8))

	ctx := context.Background()
	p.Start(ctx)
	p.Stop()
	p.Start(ctx)
	defer p.Stop()

	err := p.Process(ctx, pipelineEntry("TSLA"))
	require.Error(t, err, "first attempt fails and the entry is buffered")

	require.Eventually(t, func() bool {
		return proc.count() == 1
	}, 3*time.Second, 20*time.Millisecond, "the restarted flusher drains the buffer")
}
