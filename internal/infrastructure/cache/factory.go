package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when client answers PING,
// otherwise an in-memory store if fallback is allowed
func NewIdempotencyStore(ctx context.Context, client *redis.Client, fallback bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var err error
	if client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("Using Redis idempotency store")
			return NewRedisIdempotencyStore(client, ""), nil
		}
	} else {
		err = fmt.Errorf("no redis client configured")
	}

	if !fallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"redelivered jobs are only de-duplicated within this process",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(5 * time.Minute), nil
}
