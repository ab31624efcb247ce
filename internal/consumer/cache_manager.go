// Package consumer is the Redis plumbing of the monitor service: the
// vitals stream consumer, the stream publisher, and the UI-facing
// caches for the latest reading and recent alerts.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthmon/internal/config"
	"healthmon/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCacheMiss means the requested cache entry does not exist.
var ErrCacheMiss = errors.New("cache miss")

// CacheManager mirrors the latest reading and the recent alert set
// into Redis for the dashboard.
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager creates a cache manager.
func NewCacheManager(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// SetLatestReading caches the most recent reading with a TTL.
func (c *CacheManager) SetLatestReading(ctx context.Context, reading models.Reading) error {
	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	ttl := time.Duration(c.config.Monitor.Cache.LatestTTL) * time.Second
	if err := c.redisClient.Set(ctx, c.config.Monitor.Cache.LatestKey, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest reading cache: %w", err)
	}
	return nil
}

// GetLatestReading returns the cached reading, or ErrCacheMiss when no
// reading has arrived within the TTL.
func (c *CacheManager) GetLatestReading(ctx context.Context) (models.Reading, error) {
	val, err := c.redisClient.Get(ctx, c.config.Monitor.Cache.LatestKey).Result()
	if err != nil {
		if err == redis.Nil {
			return models.Reading{}, ErrCacheMiss
		}
		return models.Reading{}, fmt.Errorf("failed to get latest reading cache: %w", err)
	}

	var reading models.Reading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return models.Reading{}, fmt.Errorf("failed to unmarshal latest reading: %w", err)
	}
	return reading, nil
}

// UpdateAlertCache mirrors the recent alerts for the UI banner.
func (c *CacheManager) UpdateAlertCache(ctx context.Context, alerts []models.Alert) error {
	jsonData, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	ttl := time.Duration(c.config.Monitor.Cache.AlertsTTL) * time.Second
	if err := c.redisClient.Set(ctx, c.config.Monitor.Cache.AlertsKey, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set alert cache: %w", err)
	}

	c.logger.Debug("updated alert cache",
		zap.String("key", c.config.Monitor.Cache.AlertsKey),
		zap.Int("alert_count", len(alerts)),
	)
	return nil
}

// GetAlertCache returns the mirrored recent alerts, empty on miss.
func (c *CacheManager) GetAlertCache(ctx context.Context) ([]models.Alert, error) {
	val, err := c.redisClient.Get(ctx, c.config.Monitor.Cache.AlertsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert cache: %w", err)
	}

	var alerts []models.Alert
	if err := json.Unmarshal([]byte(val), &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}
	return alerts, nil
}
