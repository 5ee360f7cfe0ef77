package repository

import (
	"context"
	"fmt"

	"AraDetector/internal/domain/models"
	pkgkafka "AraDetector/pkg/kafka"
	applogger "AraDetector/pkg/logger"
)

// AlertProducer is the part of *kafka.Producer the alert publisher uses.
type AlertProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaAlertPublisher sends results at or above MinLevel to a topic, keyed by instrument.
type KafkaAlertPublisher struct {
	producer AlertProducer
	topic    string
	minLevel models.AlertLevel
	l        *applogger.Logger
}

func NewKafkaAlertPublisher(p AlertProducer, topic string, minLevel models.AlertLevel, l *applogger.Logger) *KafkaAlertPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	if minLevel.Rank() < 0 {
		minLevel = models.AlertHigh
	}
	return &KafkaAlertPublisher{producer: p, topic: topic, minLevel: minLevel, l: l}
}

// Publish returns how many results were eligible and written. A write failure reports zero.
func (p *KafkaAlertPublisher) Publish(ctx context.Context, results []models.ScoreResult) (int, error) {
	msgs := make([]pkgkafka.Message, 0, len(results))
	for _, r := range results {
		if !r.AlertLevel.AtLeast(p.minLevel) {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(r.Instrument), Value: r})
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return 0, fmt.Errorf("publish alerts: %w", err)
	}
	p.l.Info("alerts published",
		applogger.String("topic", p.topic),
		applogger.String("min_level", string(p.minLevel)),
		applogger.Int("count", len(msgs)),
	)
	return len(msgs), nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
