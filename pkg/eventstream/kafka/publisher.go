// Package kafka implements an eventstream.Publisher backed by a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/eventstream"
)

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses. At least one is
	// required.
	Brokers []string

	// Topic is the destination topic. Required.
	Topic string

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Publisher writes memory mutation events to a Kafka topic. Events are
// keyed by EventID so replays and compaction keep one record per event.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher: topic is required")
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafkago.LeastBytes{},
	}

	return &Publisher{
		writer: writer,
		logger: cfg.Logger,
	}, nil
}

// Publish serializes the event as JSON and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.EventID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("writing event to kafka: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
