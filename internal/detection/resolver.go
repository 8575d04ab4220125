package detection

import (
	"errors"

	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"
)

// ErrNoActiveModel signals that no active model exists for a detection type;
// callers fall back to the system default threshold with no model attribution.
var ErrNoActiveModel = errors.New("no active model for detection type")

// ModelSource is the registry query the resolver depends on.
type ModelSource interface {
	LatestActiveByType(t models.ModelType) (*models.AIModel, error)
}

// Resolver maps a detection type to its currently active model, caching
// snapshots with bounded staleness.
type Resolver struct {
	source ModelSource
	cache  *ModelCache
}

func NewResolver(source ModelSource, cache *ModelCache) *Resolver {
	return &Resolver{source: source, cache: cache}
}

// Resolve returns the active model for the type, from cache when fresh.
func (r *Resolver) Resolve(t models.ModelType) (*models.AIModel, error) {
	if model, ok := r.cache.Get(t); ok {
		return model, nil
	}

	model, err := r.source.LatestActiveByType(t)
	if err != nil {
		if errors.Is(err, repositories.ErrModelNotFound) {
			return nil, ErrNoActiveModel
		}
		return nil, err
	}

	r.cache.Set(t, model)
	return model, nil
}

// Invalidate drops the cached snapshot for a type.
func (r *Resolver) Invalidate(t models.ModelType) {
	r.cache.Invalidate(t)
}
