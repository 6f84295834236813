package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
)

// Publish outcomes
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher mirrors freshly fetched snapshots to a Kafka topic
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "odds_snapshots"
}

// NewKafkaPublisher creates an asynchronous Kafka publisher.
// Delivery failures are reported through logs and metrics, never to the caller.
func NewKafkaPublisher(config KafkaPublisherConfig, m *metrics.Metrics, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		topic:   config.Topic,
		metrics: m,
		logger:  logger.With().Str("component", "kafka_publisher").Logger(),
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   p.completed,
	}

	p.logger.Info().
		Strs("brokers", config.Brokers).
		Str("topic", config.Topic).
		Msg("kafka publisher configured")

	return p
}

// Publish queues one snapshot keyed by its cache key
func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		p.metrics.SnapshotsPublished.WithLabelValues(outcomeError).Inc()
		return fmt.Errorf("failed to publish snapshot %s: %w", key, err)
	}
	return nil
}

// completed is called by the writer once a batch is delivered or given up on
func (p *KafkaPublisher) completed(messages []kafka.Message, err error) {
	if err != nil {
		p.metrics.SnapshotsPublished.WithLabelValues(outcomeError).Add(float64(len(messages)))
		p.logger.Error().
			Err(err).
			Int("messages", len(messages)).
			Str("topic", p.topic).
			Msg("failed to deliver snapshots")
		return
	}

	p.metrics.SnapshotsPublished.WithLabelValues(outcomeOK).Add(float64(len(messages)))
	p.logger.Debug().
		Int("messages", len(messages)).
		Msg("delivered snapshots")
}

// Close flushes pending messages and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every snapshot. Used when Kafka is disabled.
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	return nil
}

// Close does nothing
func (NopPublisher) Close() error {
	return nil
}
