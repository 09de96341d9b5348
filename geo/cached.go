package geo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rental-estimator/cache"
)

// DefaultCacheTTL is how long lookup results are kept when no TTL is configured.
const DefaultCacheTTL = 30 * 24 * time.Hour

// CachedProvider memoises another Provider's successful lookups. Failed
// lookups are never cached.
type CachedProvider struct {
	next  Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps next with store. A non-positive ttl uses DefaultCacheTTL.
func NewCachedProvider(next Provider, store cache.Cache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{next: next, cache: store, ttl: ttl}
}

func (c *CachedProvider) Geocode(ctx context.Context, address string) (Coordinates, error) {
	key := "geo:v1:geocode:" + hashKey(strings.ToLower(strings.TrimSpace(address)))

	var coords Coordinates
	if c.load(ctx, key, &coords) {
		return coords, nil
	}

	coords, err := c.next.Geocode(ctx, address)
	if err != nil {
		return Coordinates{}, err
	}
	c.store(ctx, key, coords)
	return coords, nil
}

func (c *CachedProvider) Distance(ctx context.Context, from, to Coordinates) (int, error) {
	key := "geo:v1:distance:" + hashKey(fmt.Sprintf("%.6f,%.6f|%.6f,%.6f",
		from.Latitude, from.Longitude, to.Latitude, to.Longitude))

	var meters int
	if c.load(ctx, key, &meters) {
		return meters, nil
	}

	meters, err := c.next.Distance(ctx, from, to)
	if err != nil {
		return 0, err
	}
	c.store(ctx, key, meters)
	return meters, nil
}

func (c *CachedProvider) Nearby(ctx context.Context, center Coordinates, radiusMeters int, category string) ([]Place, error) {
	key := "geo:v1:nearby:" + hashKey(fmt.Sprintf("%.6f,%.6f|%d|%s",
		center.Latitude, center.Longitude, radiusMeters, category))

	var places []Place
	if c.load(ctx, key, &places) {
		return places, nil
	}

	places, err := c.next.Nearby(ctx, center, radiusMeters, category)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, places)
	return places, nil
}

func (c *CachedProvider) load(ctx context.Context, key string, out any) bool {
	payload, err := c.cache.Get(ctx, key)
	if err != nil || len(payload) == 0 {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

func (c *CachedProvider) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, payload, c.ttl)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
