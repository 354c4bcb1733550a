// Package kafka publishes audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"veripass/internal/platform/kafka/producer"
	audit "veripass/pkg/platform/audit"
)

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Sink implements audit.Store by publishing each event to a topic. Events are
// keyed by subject so all events about one claim land on the same partition.
// Reading the log back is a consumer concern, not the sink's.
type Sink struct {
	producer Producer
	topic    string
}

// NewSink constructs a Kafka-backed audit sink.
func NewSink(p Producer, topic string) *Sink {
	return &Sink{producer: p, topic: topic}
}

// Append publishes the event as a JSON record.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// ListRecent always returns an empty slice; the topic is write-only here.
func (s *Sink) ListRecent(_ context.Context, _ int) ([]audit.Event, error) {
	return nil, nil
}
