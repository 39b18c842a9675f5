package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"budgetly/internal/core"
)

// AdviceCache stores purchase advice in Redis so repeat evaluations of the
// same product do not hit the rule engine and the refinement pipeline again.
// Redis being down is never fatal: every failure degrades to a cache miss.
type AdviceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAdviceCache(addr string, ttl time.Duration) (*AdviceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &AdviceCache{client: client, ttl: ttl}, nil
}

func adviceKey(uid, productName string, priceCents int64) string {
	return fmt.Sprintf("advice:%s:%s:%d", uid, productName, priceCents)
}

func (c *AdviceCache) Get(ctx context.Context, uid, productName string, priceCents int64) (core.PurchaseSuggestion, bool) {
	var zero core.PurchaseSuggestion
	if c == nil {
		return zero, false
	}

	val, err := c.client.Get(ctx, adviceKey(uid, productName, priceCents)).Result()
	if err == redis.Nil {
		return zero, false
	}
	if err != nil {
		slog.WarnContext(ctx, "Redis get failed, treating as miss", "error", err)
		return zero, false
	}

	var s core.PurchaseSuggestion
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		slog.WarnContext(ctx, "Cached advice is malformed, treating as miss", "error", err)
		return zero, false
	}
	return s, true
}

func (c *AdviceCache) Set(ctx context.Context, s core.PurchaseSuggestion) {
	if c == nil {
		return
	}

	body, err := json.Marshal(s)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal advice for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, adviceKey(s.UID, s.ProductName, s.Price.Cents), body, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Redis set failed", "error", err)
	}
}

// Invalidate drops every cached advice entry for a user. Called after ledger
// mutations because advice depends on current-month metrics.
func (c *AdviceCache) Invalidate(ctx context.Context, uid string) {
	if c == nil {
		return
	}

	pattern := fmt.Sprintf("advice:%s:*", uid)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.WarnContext(ctx, "Redis delete failed", "error", err, "key", iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "Redis scan failed", "error", err)
	}
}

func (c *AdviceCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
