package detection

import (
	"testing"
	"time"

	"bordersense/surveillance/internal/models"
)

// fakeClock is an adjustable time source for TTL tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time          { return c.current }
func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func TestModelCacheHitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewModelCache(5*time.Minute, clock.now)

	model := &models.AIModel{ID: "m1", Type: models.ModelTypeObjectDetection}
	cache.Set(models.ModelTypeObjectDetection, model)

	clock.advance(4 * time.Minute)
	got, ok := cache.Get(models.ModelTypeObjectDetection)
	if !ok || got.ID != "m1" {
		t.Fatalf("expected cache hit within TTL, got ok=%v", ok)
	}
}

func TestModelCacheExpires(t *testing.T) {
	clock := newFakeClock()
	cache := NewModelCache(5*time.Minute, clock.now)

	cache.Set(models.ModelTypeObjectDetection, &models.AIModel{ID: "m1"})

	clock.advance(5 * time.Minute)
	if _, ok := cache.Get(models.ModelTypeObjectDetection); ok {
		t.Fatal("expected entry to expire at TTL")
	}
}

func TestModelCacheMiss(t *testing.T) {
	cache := NewModelCache(5*time.Minute, nil)
	if _, ok := cache.Get(models.ModelTypeAnomalyDetection); ok {
		t.Fatal("expected miss for never-set type")
	}
}

func TestModelCacheInvalidate(t *testing.T) {
	clock := newFakeClock()
	cache := NewModelCache(5*time.Minute, clock.now)

	cache.Set(models.ModelTypeObjectDetection, &models.AIModel{ID: "m1"})
	cache.Set(models.ModelTypeAnomalyDetection, &models.AIModel{ID: "m2"})
	cache.Invalidate(models.ModelTypeObjectDetection)

	if _, ok := cache.Get(models.ModelTypeObjectDetection); ok {
		t.Fatal("expected invalidated entry to be gone")
	}
	if _, ok := cache.Get(models.ModelTypeAnomalyDetection); !ok {
		t.Fatal("expected other entries to survive invalidation")
	}
	if cache.size() != 1 {
		t.Fatalf("expected size 1, got %d", cache.size())
	}
}

func TestModelCacheSetRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewModelCache(5*time.Minute, clock.now)

	cache.Set(models.ModelTypeObjectDetection, &models.AIModel{ID: "m1", CurrentVersion: "1.0.0"})
	clock.advance(4 * time.Minute)
	cache.Set(models.ModelTypeObjectDetection, &models.AIModel{ID: "m1", CurrentVersion: "1.0.1"})
	clock.advance(4 * time.Minute)

	got, ok := cache.Get(models.ModelTypeObjectDetection)
	if !ok {
		t.Fatal("expected refreshed entry to still be fresh")
	}
	if got.CurrentVersion != "1.0.1" {
		t.Fatalf("expected refreshed snapshot, got version %s", got.CurrentVersion)
	}
}
