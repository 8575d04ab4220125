package retraining

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bordersense/surveillance/internal/metrics"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Invalidator drops a cached model snapshot after a promotion.
type Invalidator interface {
	Invalidate(t models.ModelType)
}

// Emitter broadcasts model lifecycle events, best effort.
type Emitter interface {
	Emit(name string, payload interface{})
}

// Drainer pops queued feedback ids. The database scan is the source of
// truth; draining only keeps the queue from growing without bound.
type Drainer interface {
	Drain(ctx context.Context, limit int) []string
}

// Config holds the controller's batching knobs.
type Config struct {
	Schedule          string // cron spec for the periodic cycle
	BatchSize         int    // max unprocessed feedback per cycle
	MinGroupSize      int    // min feedback per model before retraining
	FeedbackThreshold int64  // NeedsRetraining feedback floor
}

// Controller runs the periodic feedback batch cycle: it drains unprocessed
// corrections, decides which models to retrain, executes the training step
// and promotes or reverts. All per-cycle errors are logged, never fatal.
type Controller struct {
	feedback *repositories.FeedbackRepository
	alerts   *repositories.AlertRepository
	registry *repositories.ModelRepository
	trainer  Trainer
	cache    Invalidator
	emitter  Emitter
	queue    Drainer
	cfg      Config
	now      func() time.Time
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewController(
	feedback *repositories.FeedbackRepository,
	alerts *repositories.AlertRepository,
	registry *repositories.ModelRepository,
	trainer Trainer,
	cache Invalidator,
	emitter Emitter,
	queue Drainer,
	cfg Config,
	now func() time.Time,
	logger *zap.Logger,
) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		feedback: feedback,
		alerts:   alerts,
		registry: registry,
		trainer:  trainer,
		cache:    cache,
		emitter:  emitter,
		queue:    queue,
		cfg:      cfg,
		now:      now,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the periodic batch cycle.
func (c *Controller) Start() error {
	_, err := c.cron.AddFunc(c.cfg.Schedule, func() {
		if err := c.RunCycle(); err != nil {
			c.logger.Error("retraining cycle failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retraining cycle: %w", err)
	}
	c.cron.Start()
	c.logger.Info("retraining controller started", zap.String("schedule", c.cfg.Schedule))
	return nil
}

// Stop halts the scheduler and waits for an in-flight cycle to finish, so no
// model is abandoned mid-transition.
func (c *Controller) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.logger.Info("retraining controller stopped")
}

// RunCycle executes one batch cycle. Groups of fewer than MinGroupSize
// corrections are still consumed so they do not re-accumulate indefinitely.
func (c *Controller) RunCycle() error {
	if c.queue != nil {
		// The scan below covers everything the queue announced; drop the
		// queued ids so the list does not grow without bound.
		if drained := c.queue.Drain(context.Background(), c.cfg.BatchSize); len(drained) > 0 {
			c.logger.Debug("drained retraining queue", zap.Int("count", len(drained)))
		}
	}

	batch, err := c.feedback.ListUnprocessed(c.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to load unprocessed feedback: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	groups := make(map[string][]models.Feedback)
	for _, fb := range batch {
		alert, err := c.alerts.GetByID(fb.AlertID)
		if err != nil || alert.ModelID == nil {
			continue
		}
		groups[*alert.ModelID] = append(groups[*alert.ModelID], fb)
	}

	for modelID, group := range groups {
		if len(group) < c.cfg.MinGroupSize {
			continue
		}
		if err := c.retrainModel(modelID, group); err != nil {
			// Internal to the controller; logged, never surfaced to users.
			c.logger.Error("model retraining failed",
				zap.String("model_id", modelID), zap.Error(err))
		}
	}

	ids := make([]string, len(batch))
	for i, fb := range batch {
		ids[i] = fb.ID
	}
	if err := c.feedback.MarkProcessed(ids); err != nil {
		return fmt.Errorf("failed to mark feedback processed: %w", err)
	}

	metrics.RetrainingCycle()
	c.logger.Info("retraining cycle complete",
		zap.Int("feedback_processed", len(batch)),
		zap.Int("model_groups", len(groups)))
	return nil
}

// retrainModel runs the training step for one model. The Active -> Training
// conditional write serializes cycles per model; any failure after that fails
// open back to Active with counters intact.
func (c *Controller) retrainModel(modelID string, group []models.Feedback) error {
	ok, err := c.registry.BeginTraining(modelID)
	if err != nil {
		return err
	}
	if !ok {
		// Not Active: already training, deprecated, or gone. Leave it alone.
		return nil
	}

	model, err := c.registry.GetByID(modelID)
	if err != nil {
		_ = c.registry.AbortTraining(modelID)
		return err
	}

	metric, err := c.trainer.Train(model, group)
	if err != nil {
		if abortErr := c.registry.AbortTraining(modelID); abortErr != nil {
			c.logger.Error("failed to revert model from Training",
				zap.String("model_id", modelID), zap.Error(abortErr))
		}
		return fmt.Errorf("training step: %w", err)
	}

	trainedAt := c.now()
	metric.Timestamp = trainedAt
	newVersion := bumpPatch(model.CurrentVersion)

	model.AppendMetric(metric)
	model.AppendVersion(models.VersionRecord{
		Version:         newVersion,
		TrainedAt:       trainedAt,
		ValidationScore: metric.Accuracy,
		Notes:           fmt.Sprintf("retrained on %d feedback items", len(group)),
	})

	if err := c.registry.CompleteTraining(model); err != nil {
		if abortErr := c.registry.AbortTraining(modelID); abortErr != nil {
			c.logger.Error("failed to revert model from Training",
				zap.String("model_id", modelID), zap.Error(abortErr))
		}
		return fmt.Errorf("promoting model version: %w", err)
	}

	c.cache.Invalidate(model.Type)
	c.emitter.Emit(models.EventModelUpdated, model)
	metrics.ModelRetrained()

	c.logger.Info("model retrained",
		zap.String("model_id", model.ID),
		zap.String("model_name", model.Name),
		zap.String("version", newVersion))
	return nil
}

// ModelsNeedingRetraining lists non-deprecated models past the feedback
// threshold with an error rate above 10%.
func (c *Controller) ModelsNeedingRetraining() ([]models.AIModel, error) {
	candidates, err := c.registry.NotDeprecated()
	if err != nil {
		return nil, err
	}
	var needing []models.AIModel
	for _, m := range candidates {
		if m.NeedsRetraining(c.cfg.FeedbackThreshold) {
			needing = append(needing, m)
		}
	}
	return needing, nil
}

// bumpPatch increments the patch component of a semantic version, treating a
// missing version as 0.0.0.
func bumpPatch(version string) string {
	if version == "" {
		version = "0.0.0"
	}
	parts := strings.Split(version, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		patch = 0
	}
	parts[2] = strconv.Itoa(patch + 1)
	return strings.Join(parts[:3], ".")
}
