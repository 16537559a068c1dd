package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ScalpPulse/internal/domain/models"
	domrepo "ScalpPulse/internal/domain/repository"
	pkgkafka "ScalpPulse/pkg/kafka"
)

// KafkaSignalsHandler consumes published signals and writes them to the
// archive. This is the archive path when the routing backend is kafka.
type KafkaSignalsHandler struct {
	topic   string
	archive domrepo.SignalArchive
	metrics domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, archive domrepo.SignalArchive, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

// Handle unmarshals one SignalLogEntry and stores it.
func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var entry models.SignalLogEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !entry.Timestamp.IsZero() {
		h.metrics.RecordLatency("signal_e2e", time.Since(entry.Timestamp).Seconds())
	}

	start := time.Now()
	err := h.archive.Store(ctx, &entry)
	h.metrics.RecordLatency("archive_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
