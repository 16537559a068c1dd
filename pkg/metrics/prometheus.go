package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal   *prometheus.CounterVec
	noSignalsTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	confidence     *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalppulse_signals_total",
				Help: "Total number of generated trade signals",
			},
			[]string{"ticker", "type"},
		),
		noSignalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalppulse_no_signal_total",
				Help: "Pipeline runs that produced no signal, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalppulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scalppulse_last_confidence_score",
				Help: "Last confidence score per ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scalppulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal records a generated signal.
func (r *Recorder) RecordSignal(ticker, signalType string) {
	r.signalsTotal.WithLabelValues(ticker, signalType).Inc()
}

// RecordNoSignal records a run that produced no signal.
func (r *Recorder) RecordNoSignal(reason string) {
	r.noSignalsTotal.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordConfidence records the last confidence score for a ticker.
func (r *Recorder) RecordConfidence(ticker string, score float64) {
	r.confidence.WithLabelValues(ticker).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
