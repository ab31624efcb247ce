package simulator

import (
	"context"
	"fmt"
	"time"

	"healthmon/pkg/redisx"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Publisher emits simulated readings onto the vitals stream at a fixed
// interval.
type Publisher struct {
	sim         *Simulator
	redisClient *redis.Client
	stream      string
	interval    time.Duration
	logger      *zap.Logger
}

// NewPublisher creates a publisher for one simulated device.
func NewPublisher(sim *Simulator, redisClient *redis.Client, stream string, interval time.Duration, logger *zap.Logger) *Publisher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		sim:         sim,
		redisClient: redisClient,
		stream:      stream,
		interval:    interval,
		logger:      logger,
	}
}

// Run emits readings until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			reading := p.sim.Next(now)
			id, err := redisx.PublishJSONToStream(ctx, p.redisClient, p.stream, reading)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to publish simulated reading: %w", err)
			}
			p.logger.Debug("published simulated reading",
				zap.String("message_id", id),
				zap.Time("timestamp", reading.Timestamp),
			)
		}
	}
}
