package consumer

import (
	"context"
	"fmt"

	"healthmon/internal/models"
	"healthmon/pkg/redisx"

	"github.com/go-redis/redis/v8"
)

// StreamPublisher appends readings to the vitals stream. It is the
// producer side of the pipeline, used by the bridge queue and the
// simulator.
type StreamPublisher struct {
	redisClient *redis.Client
	stream      string
}

// NewStreamPublisher creates a publisher for the given stream.
func NewStreamPublisher(redisClient *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{
		redisClient: redisClient,
		stream:      stream,
	}
}

// PublishReading appends one reading to the stream.
func (p *StreamPublisher) PublishReading(ctx context.Context, reading models.Reading) error {
	if _, err := redisx.PublishJSONToStream(ctx, p.redisClient, p.stream, reading); err != nil {
		return fmt.Errorf("failed to publish reading to %s: %w", p.stream, err)
	}
	return nil
}
