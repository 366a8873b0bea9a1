package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

// SnapshotCache stores serialized hazard lists. Get returns a nil slice and a
// nil error on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource wraps a Source with a SnapshotCache. Only successful,
// non-empty results are stored, so synthetic stand-ins (which the catalog
// produces after the source) never reach the cache.
type CachedSource struct {
	inner  Source
	cache  SnapshotCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource creates a cache decorator around a hazard source.
func NewCachedSource(inner Source, cache SnapshotCache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedSource) Hazards(ctx context.Context, hours uint) (Result, error) {
	key := fmt.Sprintf("hazards:v1:%d", hours)

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("hazard cache read failed", "key", key, "error", err)
	} else if data != nil {
		var hazards []domain.Hazard
		if err := json.Unmarshal(data, &hazards); err == nil && len(hazards) > 0 {
			return Result{Success: true, Hazards: hazards, Cached: true}, nil
		}
	}

	res, err := c.inner.Hazards(ctx, hours)
	if err != nil || !res.Success || len(res.Hazards) == 0 {
		return res, err
	}

	data, err = json.Marshal(res.Hazards)
	if err != nil {
		return res, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("hazard cache write failed", "key", key, "error", err)
	}
	return res, nil
}
