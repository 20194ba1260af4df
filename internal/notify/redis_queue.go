package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultDigestKey = "matching:digest_queue"

// RedisQueue is a Queue backed by a Redis list, so queued digests survive
// process restarts and are shared across instances.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisQueue constructs a RedisQueue on an existing client.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: defaultDigestKey}
}

// Enqueue implements Queue.
func (q *RedisQueue) Enqueue(ctx context.Context, item DigestItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal digest item: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue digest item: %w", err)
	}
	return nil
}

// Drain implements Queue: it atomically takes the whole list so concurrent
// flushers never double-send an item.
func (q *RedisQueue) Drain(ctx context.Context) ([]DigestItem, error) {
	pipe := q.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, q.key, 0, -1)
	pipe.Del(ctx, q.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to drain digest queue: %w", err)
	}

	raw := rangeCmd.Val()
	items := make([]DigestItem, 0, len(raw))
	for _, entry := range raw {
		var item DigestItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("failed to decode digest item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
