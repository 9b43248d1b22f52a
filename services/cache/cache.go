package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homely-khana/logger"

	"github.com/redis/go-redis/v9"
)

// Dashboard caches the per-user dashboard views ("next delivery" and
// "subscriptions"). Entries carry a bounded TTL as a backstop, so a missed
// invalidation self-heals instead of serving stale data forever.
//
// A nil client disables caching entirely; every lookup misses and every
// invalidation is a no-op. That keeps the engine runnable without Redis.
type Dashboard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboard(client *redis.Client, ttl time.Duration) *Dashboard {
	return &Dashboard{
		client: client,
		ttl:    ttl,
	}
}

// NextDeliveryKey returns the cache key for a user's next-delivery view.
func NextDeliveryKey(userID uint) string {
	return fmt.Sprintf("user:%d:next-delivery", userID)
}

// SubscriptionsKey returns the cache key for a user's subscriptions view.
func SubscriptionsKey(userID uint) string {
	return fmt.Sprintf("user:%d:subscriptions", userID)
}

// Get loads a cached value into dest. The bool reports a hit.
func (d *Dashboard) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if d == nil || d.client == nil {
		return false, nil
	}

	data, err := d.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value under key with the dashboard TTL.
func (d *Dashboard) Set(ctx context.Context, key string, value interface{}) error {
	if d == nil || d.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return d.client.Set(ctx, key, data, d.ttl).Err()
}

// InvalidateUser purges the user's cached dashboard views. It must only be
// called after the enclosing transaction has committed; invalidating earlier
// lets a concurrent reader repopulate the cache with pre-commit state.
// Failures are logged, never surfaced; the TTL is the backstop.
func (d *Dashboard) InvalidateUser(ctx context.Context, userID uint) {
	if d == nil || d.client == nil {
		return
	}

	keys := []string{NextDeliveryKey(userID), SubscriptionsKey(userID)}
	if err := d.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error(fmt.Sprintf("Failed to invalidate dashboard cache for user %d", userID), err)
	}
}
