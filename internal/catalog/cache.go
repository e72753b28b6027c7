package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// CacheOptions configures a CachedGateway.
type CacheOptions struct {
	// Size is the maximum number of cached cards. Default: 2048
	Size int

	// TTL is how long a cached entry stays fresh. Default: 1 hour
	TTL time.Duration
}

// DefaultCacheOptions returns sensible defaults.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		Size: 2048,
		TTL:  time.Hour,
	}
}

// CachedGateway is a read-through cache in front of another Gateway.
// Only hits are cached: the catalog may lag newly added cards, so a miss is
// asked again on the next lookup.
type CachedGateway struct {
	next   Gateway
	cache  *expirable.LRU[string, CardMetadata]
	logger *zap.Logger
}

// NewCachedGateway wraps next with a bounded, expiring cache.
func NewCachedGateway(next Gateway, options CacheOptions, logger *zap.Logger) *CachedGateway {
	defaults := DefaultCacheOptions()
	if options.Size <= 0 {
		options.Size = defaults.Size
	}
	if options.TTL <= 0 {
		options.TTL = defaults.TTL
	}

	return &CachedGateway{
		next:   next,
		cache:  expirable.NewLRU[string, CardMetadata](options.Size, nil, options.TTL),
		logger: logger,
	}
}

// GetCardMetadata implements Gateway.
func (c *CachedGateway) GetCardMetadata(ctx context.Context, baseID string) (CardMetadata, bool, error) {
	if meta, ok := c.cache.Get(baseID); ok {
		return meta, true, nil
	}

	meta, found, err := c.next.GetCardMetadata(ctx, baseID)
	if err != nil || !found {
		return meta, found, err
	}

	c.cache.Add(baseID, meta)
	if c.logger != nil {
		c.logger.Debug("cached card metadata",
			zap.String("base_id", baseID),
			zap.Int("cache_len", c.cache.Len()),
		)
	}

	return meta, true, nil
}

// Invalidate drops one cached entry.
func (c *CachedGateway) Invalidate(baseID string) {
	c.cache.Remove(baseID)
}

// Purge drops every cached entry.
func (c *CachedGateway) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached entries.
func (c *CachedGateway) Len() int {
	return c.cache.Len()
}
