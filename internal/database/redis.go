package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/config"
)

// NewRedisClient creates and validates a Redis client connection.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

// TemplateOptionCache keeps each user's template name options in Redis as
// a JSON array with a TTL.
type TemplateOptionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTemplateOptionCache creates a TemplateOptionCache.
func NewTemplateOptionCache(rdb *redis.Client, ttl time.Duration) *TemplateOptionCache {
	return &TemplateOptionCache{rdb: rdb, ttl: ttl}
}

// GetTemplateOptions returns the cached names; ok is false on a miss.
func (c *TemplateOptionCache) GetTemplateOptions(ctx context.Context, userID string) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.TemplateOptionsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, fmt.Errorf("decode template options: %w", err)
	}
	return names, true, nil
}

// SetTemplateOptions caches names for the configured TTL.
func (c *TemplateOptionCache) SetTemplateOptions(ctx context.Context, userID string, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.TemplateOptionsKey(userID), raw, c.ttl).Err()
}
