package bridge

import (
	"context"

	"healthmon/internal/metrics"
	"healthmon/internal/models"

	"go.uber.org/zap"
)

// Publisher forwards queued readings to the vitals stream.
type Publisher interface {
	PublishReading(ctx context.Context, reading models.Reading) error
}

// Queue is the bounded buffer between device pollers and the stream
// publisher. When full, the oldest reading is dropped so devices never
// block on a slow downstream.
type Queue struct {
	ch        chan models.Reading
	publisher Publisher
	logger    *zap.Logger
}

// NewQueue creates a queue with the given capacity (default 100).
func NewQueue(size int, publisher Publisher, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 100
	}
	return &Queue{
		ch:        make(chan models.Reading, size),
		publisher: publisher,
		logger:    logger,
	}
}

// Enqueue adds a reading without blocking, evicting the oldest queued
// reading when the buffer is full.
func (q *Queue) Enqueue(reading models.Reading) {
	for {
		select {
		case q.ch <- reading:
			return
		default:
			select {
			case dropped := <-q.ch:
				metrics.ReadingsDropped.Inc()
				q.logger.Warn("bridge queue full, dropping oldest reading",
					zap.String("device_id", dropped.DeviceID),
				)
			default:
			}
		}
	}
}

// Run consumes the queue and publishes readings until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case reading := <-q.ch:
			if err := q.publisher.PublishReading(ctx, reading); err != nil {
				q.logger.Error("failed to publish reading",
					zap.String("device_id", reading.DeviceID),
					zap.Error(err),
				)
			}
		}
	}
}

// Len reports the number of queued readings.
func (q *Queue) Len() int {
	return len(q.ch)
}
