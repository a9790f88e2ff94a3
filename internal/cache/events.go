package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	gatherly "gatherly-go"
	"gatherly-go/internal/logger"
)

const eventKeyPrefix = "event:"

// EventCache keeps fetched event metadata in Redis so schema and quote
// requests do not refetch the platform per hit.
type EventCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewEventCache wraps an existing Redis client.
func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{Client: client, TTL: ttl}
}

// Initialize connects to Redis and verifies the connection with a ping and a
// test write.
func Initialize(addr string, customLogger *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		if customLogger != nil {
			customLogger.Error("CACHE", fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		}
		return nil, err
	}

	if err := client.Set(ctx, eventKeyPrefix+"test", "test", 5*time.Second).Err(); err != nil {
		if customLogger != nil {
			customLogger.Error("CACHE", fmt.Sprintf("Failed to write test value to Redis: %v", err))
		}
		return nil, err
	}

	if customLogger != nil {
		customLogger.Info("CACHE", fmt.Sprintf("Connected to Redis at %s for event caching", addr))
	}
	return client, nil
}

// Get returns the cached event, or nil when the key is missing or expired.
func (c *EventCache) Get(ctx context.Context, eventID string) (*gatherly.Event, error) {
	if c == nil || c.Client == nil {
		return nil, nil
	}

	raw, err := c.Client.Get(ctx, eventKeyPrefix+eventID).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get event from Redis: %w", err)
	}

	var event gatherly.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached event: %w", err)
	}
	return &event, nil
}

// Set stores an event under its id for the cache TTL.
func (c *EventCache) Set(ctx context.Context, event *gatherly.Event) error {
	if c == nil || c.Client == nil || event == nil {
		return nil
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for cache: %w", err)
	}
	return c.Client.Set(ctx, eventKeyPrefix+event.ID, raw, c.TTL).Err()
}

// Invalidate drops a cached event.
func (c *EventCache) Invalidate(ctx context.Context, eventID string) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, eventKeyPrefix+eventID).Err()
}
