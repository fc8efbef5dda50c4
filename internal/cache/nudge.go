// Package cache holds the Redis-backed caches.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/menticure/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NudgeCache stores computed check-in nudges per user with a TTL so the
// seven-day analysis is not recomputed on every poll.
type NudgeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewNudgeCache connects to Redis and verifies the connection.
func NewNudgeCache(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*NudgeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &NudgeCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func nudgeKey(userID string) string {
	return "nudge:" + userID
}

// Get returns the cached nudge for the user, or nil on a miss.
func (c *NudgeCache) Get(ctx context.Context, userID string) (*service.CheckInNudge, error) {
	raw, err := c.client.Get(ctx, nudgeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read nudge from cache: %w", err)
	}

	var nudge service.CheckInNudge
	if err := json.Unmarshal([]byte(raw), &nudge); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		c.logger.Warn("discarding unreadable cached nudge", zap.Error(err), zap.String("user_id", userID))
		return nil, nil
	}
	return &nudge, nil
}

// Set stores the nudge for the user under the configured TTL.
func (c *NudgeCache) Set(ctx context.Context, userID string, nudge *service.CheckInNudge) error {
	raw, err := json.Marshal(nudge)
	if err != nil {
		return fmt.Errorf("failed to encode nudge: %w", err)
	}
	if err := c.client.Set(ctx, nudgeKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write nudge to cache: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *NudgeCache) Close() error {
	return c.client.Close()
}
