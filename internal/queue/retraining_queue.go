package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RetrainingKey is the Redis list of feedback ids awaiting the next batch
// cycle; the controller drains it on every cycle.
const RetrainingKey = "retraining:feedback"

// RetrainingQueue pushes feedback ids toward the retraining controller.
// It is purely a latency optimization: the controller re-scans unprocessed
// feedback on its own schedule, so enqueue failures are logged and ignored.
type RetrainingQueue struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRetrainingQueue wraps a Redis client; rdb may be nil, in which case
// every enqueue is a no-op.
func NewRetrainingQueue(rdb *redis.Client, logger *zap.Logger) *RetrainingQueue {
	return &RetrainingQueue{rdb: rdb, logger: logger}
}

// Enqueue pushes one feedback id. Best effort; never returns an error to the
// caller because durability comes from the stored feedback row.
func (q *RetrainingQueue) Enqueue(feedbackID string) {
	if q.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.rdb.LPush(ctx, RetrainingKey, feedbackID).Err(); err != nil {
		q.logger.Warn("failed to enqueue feedback for retraining",
			zap.String("feedback_id", feedbackID),
			zap.Error(err))
	}
}

// Drain pops up to limit queued ids. The batch cycle calls it to keep the
// list bounded; the periodic scan remains the source of truth, so errors
// simply end the drain early.
func (q *RetrainingQueue) Drain(ctx context.Context, limit int) []string {
	if q.rdb == nil {
		return nil
	}

	ids := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		id, err := q.rdb.RPop(ctx, RetrainingKey).Result()
		if err != nil {
			break
		}
		ids = append(ids, id)
	}
	return ids
}
