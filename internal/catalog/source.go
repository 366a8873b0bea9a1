package catalog

import (
	"context"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

// Result is what a hazard source reported for one query.
type Result struct {
	Success bool
	Hazards []domain.Hazard

	// Cached is set by CachedSource when the result was served from cache.
	Cached bool
}

// Source returns hazards reported within the last hours.
type Source interface {
	Hazards(ctx context.Context, hours uint) (Result, error)
}
