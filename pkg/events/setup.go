// Package events publishes document status transitions to Kafka so other
// systems can follow ingestion progress. Publishing is optional and best
// effort: a broker outage never blocks or fails the pipeline.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// StatusEvent is emitted once per document status transition.
type StatusEvent struct {
	DocID      string    `json:"doc_id"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ChunkCount int       `json:"chunk_count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher writes status events to a Kafka topic, keyed by document id so
// transitions for one document stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger Logger
}

func NewPublisher(cfg Config, logger Logger) *Publisher {
	if !cfg.Enabled {
		logger.Info("status event publishing disabled", nil)
		return &Publisher{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("status event publishing enabled", nil, map[string]interface{}{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	})
	return &Publisher{writer: writer, logger: logger}
}

// Publish emits one status event. Failures are logged and swallowed.
func (p *Publisher) Publish(ctx context.Context, event StatusEvent) {
	if p.writer == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode status event", err, map[string]interface{}{
			"doc_id": event.DocID,
		})
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DocID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("failed to publish status event", err, map[string]interface{}{
			"doc_id": event.DocID,
			"status": event.Status,
		})
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close event writer: %w", err)
	}
	return nil
}
