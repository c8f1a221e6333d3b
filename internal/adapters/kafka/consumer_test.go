package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderConfig(t *testing.T) {
	t.Run("defaults favour fresh requests", func(t *testing.T) {
		rc := readerConfig(ConsumerConfig{
			Brokers: []string{"broker:9092"},
			GroupID: "insideredge",
			Topic:   TopicOptionsFlowRequests,
		})
		assert.Equal(t, kafka.LastOffset, rc.StartOffset)
		assert.Equal(t, 1, rc.MinBytes)
		assert.Equal(t, 10_000_000, rc.MaxBytes)
		assert.Equal(t, time.Second, rc.MaxWait)
		assert.Equal(t, TopicOptionsFlowRequests, rc.Topic)
	})

	t.Run("replay and overrides", func(t *testing.T) {
		rc := readerConfig(ConsumerConfig{
			Topic:           TopicOptionsFlowRequests,
			MinBytes:        1024,
			MaxWait:         250 * time.Millisecond,
			ReplayFromStart: true,
		})
		assert.Equal(t, kafka.FirstOffset, rc.StartOffset)
		assert.Equal(t, 1024, rc.MinBytes)
		assert.Equal(t, 250*time.Millisecond, rc.MaxWait)
	})
}

func TestConsumer_ReadAfterShutdown(t *testing.T) {
	c := NewConsumer(ConsumerConfig{
		Brokers: []string{"127.0.0.1:1"},
		GroupID: "insideredge-test",
		Topic:   TopicOptionsFlowRequests,
	})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadMessageWithShutdownCheck(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
