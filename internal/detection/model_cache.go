package detection

import (
	"sync"
	"time"

	"bordersense/surveillance/internal/models"
)

// ModelCache holds a per-type snapshot of the active model so the pipeline
// does not hit the registry on every event. Entries expire after the TTL and
// are invalidated eagerly when the retraining controller promotes a version,
// so stale reads are bounded. The cache is never used for correctness
// decisions, only to avoid repeated registry queries.
type ModelCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[models.ModelType]*cacheEntry
}

type cacheEntry struct {
	model    *models.AIModel
	cachedAt time.Time
}

// NewModelCache creates a cache with the given TTL. The clock is injectable
// for deterministic tests; pass nil to use time.Now.
func NewModelCache(ttl time.Duration, now func() time.Time) *ModelCache {
	if now == nil {
		now = time.Now
	}
	return &ModelCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[models.ModelType]*cacheEntry),
	}
}

// Get returns the cached snapshot for a type if it has not expired.
func (c *ModelCache) Get(t models.ModelType) (*models.AIModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[t]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.cachedAt) >= c.ttl {
		return nil, false
	}
	return entry.model, true
}

// Set stores a snapshot for a type with cachedAt = now.
func (c *ModelCache) Set(t models.ModelType, model *models.AIModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[t] = &cacheEntry{model: model, cachedAt: c.now()}
}

// Invalidate drops the snapshot for a type. Called on model updates and
// version promotions.
func (c *ModelCache) Invalidate(t models.ModelType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, t)
}

// size returns the number of cached snapshots.
func (c *ModelCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
