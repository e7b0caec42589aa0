package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository decorates a Repository with a read-through Redis cache
// on FindByShortCode, keyed by short code. Writes are write-through: Save and
// TrackClick go to the authoritative store first and refresh the cache from
// the result, so a stale cache can only serve a slightly stale redirect
// target, never lose a click.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "mapping:",
		ttl:    ttl,
	}
}

// FindByShortCode checks the cache first and populates it on a miss.
func (r *RedisCacheRepository) FindByShortCode(ctx context.Context, code string) (*shortener.Mapping, error) {
	if mapping, err := r.getFromCache(ctx, code); err == nil {
		return mapping, nil
	}

	mapping, err := r.store.FindByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

// FindByOriginalURL always hits the authoritative store: dedup reuse must see
// the current active flag.
func (r *RedisCacheRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	return r.store.FindByOriginalURL(ctx, originalURL)
}

// ExistsByShortCode always hits the authoritative store. A cache miss says
// nothing about existence, and uniqueness checks must not trust a TTL.
func (r *RedisCacheRepository) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	return r.store.ExistsByShortCode(ctx, code)
}

// Save persists to the underlying store and refreshes the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, mapping *shortener.Mapping) error {
	if err := r.store.Save(ctx, mapping); err != nil {
		return err
	}

	r.cacheMapping(ctx, mapping)

	return nil
}

// TrackClick delegates to the authoritative store's atomic update and caches
// the updated mapping it returns.
func (r *RedisCacheRepository) TrackClick(ctx context.Context, code string, click shortener.Click) (*shortener.Mapping, error) {
	mapping, err := r.store.TrackClick(ctx, code, click)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code string) (*shortener.Mapping, error) {
	payload, err := r.client.Get(ctx, r.prefix+code).Bytes()
	if err != nil {
		return nil, err
	}

	var mapping shortener.Mapping
	if err := json.Unmarshal(payload, &mapping); err != nil {
		return nil, err
	}

	return &mapping, nil
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, mapping *shortener.Mapping) {
	payload, err := json.Marshal(mapping)
	if err != nil {
		return
	}

	// Cache failures are non-fatal; the store already has the truth.
	_ = r.client.Set(ctx, r.prefix+mapping.ShortCode, payload, r.ttl).Err()
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
