package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "securedeal/internal/platform/redis"
	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// RedisCache shares fetched source records across instances. Values are JSON;
// redis owns expiry.
type RedisCache struct {
	client *platformredis.Client
}

func NewRedisCache(client *platformredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func redisKey(source id.SourceKind, key string) string {
	return fmt.Sprintf("securedeal:gw:%s:%s", source, key)
}

func (c *RedisCache) Get(ctx context.Context, source id.SourceKind, key string) (models.Fields, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(source, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", source, err)
	}
	var fields models.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", source, err)
	}
	return fields, true, nil
}

func (c *RedisCache) Set(ctx context.Context, source id.SourceKind, key string, fields models.Fields, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", source, err)
	}
	if err := c.client.Set(ctx, redisKey(source, key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", source, err)
	}
	return nil
}
