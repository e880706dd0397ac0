// Package quotecache caches fare previews in redis and provides the
// advisory lock used when a trip's pricing snapshot is rewritten. The
// whole package degrades to a no-op when redis is not configured.
package quotecache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/farelane/farelane/internal/config"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	redis "github.com/redis/go-redis/v9"
)

const keyQuote = "quote:%s:%s:%s:%s"

type QuoteCache struct {
	enabled bool

	client *redis.Client
	locker *Locker
	ttl    time.Duration
}

func NewQuoteCache(cfg config.Config) *QuoteCache {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &QuoteCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	ttl := time.Duration(cfg.QuoteCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &QuoteCache{
		enabled: true,
		client:  client,
		locker:  NewLocker(client),
		ttl:     ttl,
	}
}

func (c *QuoteCache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *QuoteCache) Get(ctx context.Context, tenantID, tripID, fromStation, toStation string) (*pricingdomain.Result, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, quoteKey(tenantID, tripID, fromStation, toStation)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result pricingdomain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, tenantID, tripID, fromStation, toStation string, result *pricingdomain.Result) error {
	if !c.Enabled() || result == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quoteKey(tenantID, tripID, fromStation, toStation), raw, c.ttl).Err()
}

// InvalidateTrip drops every cached quote for the trip, any station pair
// included.
func (c *QuoteCache) InvalidateTrip(ctx context.Context, tenantID, tripID string) error {
	if !c.Enabled() {
		return nil
	}

	pattern := fmt.Sprintf("quote:%s:%s:*", strings.TrimSpace(tenantID), strings.TrimSpace(tripID))
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// TryLock takes the reapply lock for the trip. Callers must Release with
// the returned token.
func (c *QuoteCache) TryLock(ctx context.Context, tripID string, ttl time.Duration) (string, bool, error) {
	if !c.Enabled() {
		return "", true, nil
	}
	return c.locker.TryLock(ctx, "pricing:reapply:"+strings.TrimSpace(tripID), ttl)
}

func (c *QuoteCache) Release(ctx context.Context, tripID, token string) error {
	if !c.Enabled() {
		return nil
	}
	return c.locker.Release(ctx, "pricing:reapply:"+strings.TrimSpace(tripID), token)
}

func quoteKey(tenantID, tripID, fromStation, toStation string) string {
	return fmt.Sprintf(
		keyQuote,
		strings.TrimSpace(tenantID),
		strings.TrimSpace(tripID),
		strings.TrimSpace(fromStation),
		strings.TrimSpace(toStation),
	)
}
