package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"healthmon/internal/config"
	"healthmon/internal/metrics"
	"healthmon/internal/models"
	"healthmon/pkg/redisx"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReadingHandler processes one consumed reading.
type ReadingHandler interface {
	HandleReading(ctx context.Context, reading models.Reading) error
}

// StreamConsumer pulls readings from the vitals stream via a consumer
// group and hands them to the monitor.
type StreamConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	handler     ReadingHandler
	logger      *zap.Logger
}

// NewStreamConsumer creates a stream consumer.
func NewStreamConsumer(cfg *config.Config, redisClient *redis.Client, handler ReadingHandler, logger *zap.Logger) *StreamConsumer {
	return &StreamConsumer{
		config:      cfg,
		redisClient: redisClient,
		handler:     handler,
		logger:      logger,
	}
}

// Start creates the consumer group and runs the consume loop until ctx
// is done, backing off exponentially on read failures.
func (c *StreamConsumer) Start(ctx context.Context) error {
	stream := c.config.Monitor.Stream
	group := c.config.Monitor.ConsumerGroup

	if err := redisx.CreateConsumerGroup(ctx, c.redisClient, stream, group); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}

	c.logger.Info("stream consumer started",
		zap.String("stream", stream),
		zap.String("consumer_group", group),
		zap.String("consumer_name", c.config.Monitor.ConsumerName),
	)

	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeBatch(ctx); err != nil {
				c.logger.Error("failed to consume vitals stream",
					zap.Error(err),
					zap.Duration("backoff", backoff),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoff):
					backoff *= 2
					if backoff > maxBackoff {
						backoff = maxBackoff
					}
				}
				continue
			}
			backoff = time.Second
		}
	}
}

// consumeBatch reads one batch and processes each message, acking
// regardless of handler outcome so poison messages do not wedge the
// group.
func (c *StreamConsumer) consumeBatch(ctx context.Context) error {
	messages, err := redisx.ReadFromStream(
		ctx,
		c.redisClient,
		c.config.Monitor.Stream,
		c.config.Monitor.ConsumerGroup,
		c.config.Monitor.ConsumerName,
		int64(c.config.Monitor.BatchSize),
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("failed to process stream message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		if err := redisx.AckMessage(ctx, c.redisClient, c.config.Monitor.Stream, c.config.Monitor.ConsumerGroup, msg.ID); err != nil {
			c.logger.Error("failed to ack stream message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (c *StreamConsumer) processMessage(ctx context.Context, msg redisx.StreamMessage) error {
	reading, err := DecodeReading(msg.Values)
	if err != nil {
		return err
	}

	metrics.ReadingsConsumed.Inc()
	return c.handler.HandleReading(ctx, reading)
}

// DecodeReading extracts a Reading from stream message values, where
// the publisher stored it as JSON under "data".
func DecodeReading(values map[string]interface{}) (models.Reading, error) {
	raw, ok := values["data"]
	if !ok {
		return models.Reading{}, fmt.Errorf("stream message missing data field")
	}

	str, ok := raw.(string)
	if !ok {
		return models.Reading{}, fmt.Errorf("stream message data field is not a string")
	}

	var reading models.Reading
	if err := json.Unmarshal([]byte(str), &reading); err != nil {
		return models.Reading{}, fmt.Errorf("failed to unmarshal reading: %w", err)
	}
	return reading, nil
}
