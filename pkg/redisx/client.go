// Package redisx wraps the go-redis client and the Stream helpers the
// healthmon services use to move readings between processes.
package redisx

import (
	"context"

	"healthmon/pkg/config"

	"github.com/go-redis/redis/v8"
)

// NewClient creates a Redis client from shared config.
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the client.
func Close(client *redis.Client) error {
	return client.Close()
}
