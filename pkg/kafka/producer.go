package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicPrefix is the standard prefix for all storefront Kafka topics.
const TopicPrefix = "storefront"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig returns sensible defaults for the Kafka producer.
// Writes are asynchronous so a slow broker never delays the caller.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
}

// Producer wraps the kafka-go writer for publishing events.
type Producer struct {
	writer  *kafka.Writer
	brokers []string
	async   bool
	logger  *slog.Logger
}

// NewProducer creates a new Kafka producer. The writer connects lazily on the
// first publish.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Producer{
		brokers: cfg.Brokers,
		async:   cfg.Async,
		logger:  logger,
	}

	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	if cfg.Async {
		p.writer.Completion = p.completed
	}

	return p
}

// completed reports the outcome of asynchronously written batches.
func (p *Producer) completed(messages []kafka.Message, err error) {
	for _, msg := range messages {
		countDelivery(msg.Topic, 1, err)
	}
	if err != nil {
		p.logger.Error("failed to deliver events",
			slog.Int("messages", len(messages)),
			slog.String("error", err.Error()),
		)
	}
}

// message builds the wire record for event. Events are keyed by aggregate
// id so one aggregate stays ordered within a partition.
func message(topic string, event *Event) (kafka.Message, error) {
	data, err := event.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{Topic: topic, Key: []byte(event.AggregateID), Value: data}
	for _, h := range [][2]string{
		{"event_type", event.EventType},
		{"source", event.Source},
		{"correlation_id", event.CorrelationID},
	} {
		if h[1] != "" {
			msg.Headers = append(msg.Headers, kafka.Header{Key: h[0], Value: []byte(h[1])})
		}
	}
	return msg, nil
}

// Publish writes event to topic. In async mode a nil error only means the
// event was queued; delivery is counted by the completion callback.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := message(topic, event)
	if err != nil {
		return err
	}

	ctx, span := startPublishSpan(ctx, &msg, event.EventType)
	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	publishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	endPublishSpan(span, err)

	if err != nil || !p.async {
		countDelivery(topic, 1, err)
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", event.EventType),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// Ping succeeds when any configured broker answers a metadata request.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers dials brokers in order and returns nil on the first that
// answers. Otherwise every dial error is joined into the result.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	var errs []error
	for _, addr := range brokers {
		if err := pingBroker(ctx, addr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", errors.Join(errs...))
}

func pingBroker(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	_, err = conn.Brokers()
	return err
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
