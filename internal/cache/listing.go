// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go provides a Valkey-backed cache for public catalog listing
// responses. Listings are the hot read path and change only when staff
// write to the catalog, so every asset mutation invalidates the affected
// kind wholesale.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listingKeyPrefix is the Valkey key prefix for cached listings.
	listingKeyPrefix = "listing:"

	// DefaultListingTTL is how long a listing response stays cached.
	DefaultListingTTL = 5 * time.Minute
)

// ListingCache stores serialized listing responses in Valkey. A nil client
// disables it; every method degrades to a no-op cache miss, which keeps the
// callers free of nil checks when Valkey is not configured.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a listing cache backed by the given Valkey client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Key builds the cache key for one listing query. The kind leads so that
// invalidation can sweep a whole kind with a prefix scan.
func Key(kind, category, search string, limit, offset int) string {
	return fmt.Sprintf("%s:c=%s:q=%s:l=%d:o=%d", kind, category, search, limit, offset)
}

// Get retrieves a cached listing response. Returns false on miss.
func (lc *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if lc.client == nil {
		return nil, false
	}
	val, err := lc.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	return val, true
}

// Set stores a serialized listing response with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, key string, body []byte) {
	if lc.client == nil {
		return
	}
	if err := lc.client.Set(ctx, listingKeyPrefix+key, body, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateKind removes every cached listing for one asset kind by
// scanning for its prefix. Any write to an asset could change any page of
// its kind's listings, so the whole kind goes.
func (lc *ListingCache) InvalidateKind(ctx context.Context, kind string) {
	if lc.client == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+kind+":*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "kind", kind, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "kind", kind, "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("listing cache invalidated", "kind", kind, "deleted", deleted)
	}
}
