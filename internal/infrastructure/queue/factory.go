package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Driver names
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// New builds the configured JobQueue and reports which driver is in use.
// With the redis driver, a nil or unreachable client falls back to memory
// when cfg.Fallback is set.
func New(ctx context.Context, cfg config.QueueConfig, client *redis.Client, logger *zap.Logger) (fulfillment.JobQueue, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Driver == DriverMemory {
		return NewMemoryQueue(cfg.BufferSize), DriverMemory, nil
	}

	err := ping(ctx, client)
	if err == nil {
		return NewRedisQueue(client, cfg.Name, cfg.BlockTimeout, logger), DriverRedis, nil
	}
	if !cfg.Fallback {
		return nil, "", fmt.Errorf("redis job queue unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, using in-memory job queue; queued jobs will not survive a restart",
		zap.Error(err))
	return NewMemoryQueue(cfg.BufferSize), DriverMemory, nil
}

func ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("no redis client configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
