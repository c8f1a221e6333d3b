package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// Consumer reads analysis requests from one topic within a consumer group
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
	// MaxWait bounds how long a fetch waits for MinBytes to accumulate
	MaxWait time.Duration
	// ReplayFromStart makes a new group begin at the oldest retained request
	// instead of the newest
	ReplayFromStart bool
}

// readerConfig fills defaults. Requests are small JSON documents answered
// interactively, so fetches return as soon as one is available.
func readerConfig(cfg ConsumerConfig) kafka.ReaderConfig {
	if cfg.MinBytes <= 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10e6
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = time.Second
	}

	start := kafka.LastOffset
	if cfg.ReplayFromStart {
		start = kafka.FirstOffset
	}

	return kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: start,
	}
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg ConsumerConfig) *Consumer {
	rc := readerConfig(cfg)
	log := logger.Get().Component("kafka_consumer").With("topic", cfg.Topic)

	log.Infow("Kafka consumer created",
		"brokers", cfg.Brokers,
		"group_id", cfg.GroupID,
		"replay_from_start", cfg.ReplayFromStart,
	)

	return &Consumer{
		reader: kafka.NewReader(rc),
		log:    log,
	}
}

// ReadMessageWithShutdownCheck returns ctx.Err() without touching the broker
// once shutdown was requested, and maps read errors caused by cancellation
// back to ctx.Err().
func (c *Consumer) ReadMessageWithShutdownCheck(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	default:
	}

	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		return kafka.Message{}, errors.Wrapf(err, "read %s", c.reader.Config().Topic)
	}
	return msg, nil
}

// Close leaves the group and closes the reader
func (c *Consumer) Close() error {
	c.log.Infow("Closing Kafka consumer")
	return c.reader.Close()
}
