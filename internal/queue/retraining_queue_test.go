package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestEnqueuePushesID(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	q := NewRetrainingQueue(rdb, zap.NewNop())

	q.Enqueue("fb-1")
	q.Enqueue("fb-2")

	items, err := mr.List(RetrainingKey)
	assert.NoError(t, err)
	assert.Equal(t, []string{"fb-2", "fb-1"}, items)
}

func TestEnqueueNilClientIsNoOp(t *testing.T) {
	q := NewRetrainingQueue(nil, zap.NewNop())
	q.Enqueue("fb-1")
}

func TestEnqueueSurvivesBrokenRedis(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	q := NewRetrainingQueue(rdb, zap.NewNop())

	mr.Close()
	q.Enqueue("fb-1")
}

func TestDrainPopsOldestFirst(t *testing.T) {
	_, rdb := setupTestRedis(t)
	q := NewRetrainingQueue(rdb, zap.NewNop())

	q.Enqueue("fb-1")
	q.Enqueue("fb-2")
	q.Enqueue("fb-3")

	ids := q.Drain(context.Background(), 2)
	assert.Equal(t, []string{"fb-1", "fb-2"}, ids)

	ids = q.Drain(context.Background(), 10)
	assert.Equal(t, []string{"fb-3"}, ids)

	assert.Empty(t, q.Drain(context.Background(), 10))
}

func TestDrainNilClient(t *testing.T) {
	q := NewRetrainingQueue(nil, zap.NewNop())
	assert.Nil(t, q.Drain(context.Background(), 10))
}
