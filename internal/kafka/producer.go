package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/init-51/FinInsight/internal/executor"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes job lifecycle events to a Kafka topic, keyed by job id
// so events for one job stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer for job events
func NewProducer(brokers []string, topic, clientID string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: clientID,
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// PublishJobEvent sends one terminal job transition to the events topic
func (p *Producer) PublishJobEvent(ctx context.Context, event executor.JobEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal job event",
			zap.String("jobID", event.JobID),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.JobID),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish job event",
			zap.String("jobID", event.JobID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Job event published",
		zap.String("jobID", event.JobID),
		zap.String("status", string(event.Status)))

	return nil
}

// Close closes the underlying Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
