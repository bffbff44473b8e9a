package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis_v9 "github.com/redis/go-redis/v9"

	"upload-service/internal/config"
	"upload-service/internal/models"
)

const outcomeKeyPrefix = "upload-outcome:"

// OutcomeCache keeps the most recent processing outcome per object key in
// Redis with a TTL. It is strictly best-effort: a nil cache or a Redis
// failure never affects the pipeline.
type OutcomeCache struct {
	client *redis_v9.Client
	ttl    time.Duration
}

// NewOutcomeCache connects to Redis; an empty address yields a disabled
// cache that accepts and returns nothing.
func NewOutcomeCache(cfg *config.RedisConfig) *OutcomeCache {
	if cfg.Address == "" {
		return &OutcomeCache{}
	}
	client := redis_v9.NewClient(&redis_v9.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &OutcomeCache{client: client, ttl: cfg.OutcomeTTL}
}

// SaveOutcome caches an outcome under its object key.
func (c *OutcomeCache) SaveOutcome(ctx context.Context, outcome *models.ProcessingOutcome) error {
	if c == nil || c.client == nil {
		return nil
	}
	val, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("error marshaling outcome: %w", err)
	}
	if err := c.client.Set(ctx, outcomeKeyPrefix+outcome.ObjectKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("error caching outcome: %w", err)
	}
	return nil
}

// GetOutcome returns the cached outcome for an object key, or nil on a miss.
func (c *OutcomeCache) GetOutcome(ctx context.Context, objectKey string) (*models.ProcessingOutcome, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, outcomeKeyPrefix+objectKey).Bytes()
	if err != nil {
		if err == redis_v9.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading cached outcome: %w", err)
	}
	var outcome models.ProcessingOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("error unmarshaling cached outcome: %w", err)
	}
	return &outcome, nil
}

// Delete drops the cached outcome for an object key.
func (c *OutcomeCache) Delete(ctx context.Context, objectKey string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, outcomeKeyPrefix+objectKey).Err(); err != nil {
		return fmt.Errorf("error deleting cached outcome: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *OutcomeCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
