// Package cache implements the namespaced key-value store of spec §4.2.
// It is explicitly non-authoritative: a missing backend must never fail
// a request. Read misses return (nil, false); write failures are logged
// at WARN and swallowed.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the port every other component depends on; the Redis-backed
// adapter lives in internal/infrastructure/cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// DeleteByPattern deletes every key sharing the given prefix, used by
	// the cache-invalidation outbox subscriber.
	DeleteByPattern(ctx context.Context, prefix string)
	// Incr atomically increments key (creating it at 1 with the given ttl
	// if absent) and returns the post-increment value. This is the
	// primitive the RateLimit middleware builds its sliding window on.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// TenantKey builds a tenant-namespaced cache key, per spec §4.2:
// "tenant:{tenant_id}:...".
func TenantKey(tenantID string, parts ...string) string {
	key := fmt.Sprintf("tenant:%s", tenantID)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// SubdomainKey builds the one key namespace exempt from tenant
// prefixing: the subdomain -> tenant id resolution cache.
func SubdomainKey(subdomain string) string {
	return fmt.Sprintf("tenant:subdomain:%s", subdomain)
}

// RateLimitKey builds the sliding-window counter key of spec §4.8:
// "rl:{tenant}:{route}:{user_or_ip}".
func RateLimitKey(tenantID, route, userOrIP string) string {
	return fmt.Sprintf("rl:%s:%s:%s", tenantID, route, userOrIP)
}
