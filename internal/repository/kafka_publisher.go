package repository

import (
	"context"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	pkgkafka "ScalpPulse/pkg/kafka"
)

// KafkaSignalPublisher emits generated signals to a Kafka topic,
// keyed by ticker so one ticker's signals stay ordered.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, entry *models.SignalLogEntry) error {
	return p.producer.Publish(ctx, p.topic, []byte(entry.Signal.Ticker), entry)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ drepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
