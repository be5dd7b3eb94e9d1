package repository

import (
	"context"
	"fmt"

	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
	pkgkafka "Aegis/pkg/kafka"
)

// KafkaAlertSink publishes alert decisions to a Kafka topic for the external
// notification consumer. The message key is the as-of date so replays of the
// same date compact to one alert.
type KafkaAlertSink struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertSink(producer *pkgkafka.Producer, topic string) domrepo.AlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) Publish(ctx context.Context, d *models.AlertDecision) error {
	key := []byte(d.AsOf.Format("2006-01-02"))
	if err := s.producer.Publish(ctx, s.topic, key, d); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (s *KafkaAlertSink) Close() error {
	return s.producer.Close()
}
