package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/storage"
)

// Source fetches the remote store configuration.
// Implementations must not mutate the returned record after handing it out.
type Source interface {
	StoreConfig(ctx context.Context, code string) (*Config, error)
}

// Cached wraps a Source and keeps each store's config in a storage.Store for ttl.
// A cache read or write failure degrades to a direct fetch, never to an error.
type Cached struct {
	next   Source
	store  storage.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached creates a caching Source.
func NewCached(next Source, store storage.Store, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{next: next, store: store, ttl: ttl, logger: logger}
}

func cacheKey(code string) string {
	return storage.Key("", "store-config:"+code)
}

// StoreConfig returns the cached config, fetching and caching it on miss.
func (c *Cached) StoreConfig(ctx context.Context, code string) (*Config, error) {
	data, err := c.store.Get(ctx, cacheKey(code))
	if err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err == nil {
			return &cfg, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cached store config",
			slog.String("store", code))
	} else if !errors.Is(err, storage.ErrNotFound) {
		c.logger.WarnContext(ctx, "store config cache read failed",
			slog.String("store", code),
			slog.String("error", err.Error()))
	}

	return c.Refresh(ctx, code)
}

// Refresh fetches the config from the underlying source and overwrites the cache.
// Used by the cache warmer.
func (c *Cached) Refresh(ctx context.Context, code string) (*Config, error) {
	cfg, err := c.next.StoreConfig(ctx, code)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cfg); err == nil {
		if err := c.store.Set(ctx, cacheKey(code), data, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "store config cache write failed",
				slog.String("store", code),
				slog.String("error", err.Error()))
		}
	}

	return cfg, nil
}

var _ Source = (*Cached)(nil)
