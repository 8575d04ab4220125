package repositories

import (
	"errors"
	"time"

	"bordersense/surveillance/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrModelNotFound = errors.New("model not found")

// ErrModelReferenced is returned when a hard delete is refused because alerts
// still attribute detections to the model.
var ErrModelReferenced = errors.New("model referenced by alerts")

type ModelRepository struct {
	DB *gorm.DB
}

// ModelFilter narrows List results.
type ModelFilter struct {
	Type   models.ModelType
	Status models.ModelStatus
}

func (r *ModelRepository) Create(model *models.AIModel) error {
	if model.ID == "" {
		model.ID = uuid.New().String()
	}
	if model.Status == "" {
		model.Status = models.ModelStatusActive
	}
	if model.ConfidenceThreshold == 0 {
		model.ConfidenceThreshold = 0.7
	}
	if model.CurrentVersion == "" {
		model.CurrentVersion = "1.0.0"
	}
	if len(model.VersionHistory) == 0 {
		model.VersionHistory = []models.VersionRecord{{
			Version:   model.CurrentVersion,
			TrainedAt: time.Now(),
			Notes:     "initial registration",
		}}
	}
	return r.DB.Create(model).Error
}

func (r *ModelRepository) GetByID(id string) (*models.AIModel, error) {
	var model models.AIModel
	err := r.DB.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModelNotFound
	}
	return &model, err
}

func (r *ModelRepository) List(filter ModelFilter, page, perPage int) ([]models.AIModel, int64, error) {
	query := r.DB.Model(&models.AIModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []models.AIModel
	err := query.Order("name ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&result).Error
	return result, total, err
}

// LatestActiveByType returns the most-recently-trained active model for a
// detection type, or ErrModelNotFound when none exists.
func (r *ModelRepository) LatestActiveByType(modelType models.ModelType) (*models.AIModel, error) {
	var model models.AIModel
	err := r.DB.Where("type = ? AND status = ?", modelType, models.ModelStatusActive).
		Order("COALESCE(last_retrained_at, created_at) DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModelNotFound
	}
	return &model, err
}

// NotDeprecated lists every model still eligible for retraining decisions.
func (r *ModelRepository) NotDeprecated() ([]models.AIModel, error) {
	var result []models.AIModel
	err := r.DB.Where("status <> ?", models.ModelStatusDeprecated).Find(&result).Error
	return result, err
}

// Update applies caller-supplied field changes to a model.
func (r *ModelRepository) Update(id string, updates map[string]interface{}) (*models.AIModel, error) {
	result := r.DB.Model(&models.AIModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrModelNotFound
	}
	return r.GetByID(id)
}

// Delete hard-deletes a model only when no alert references it; otherwise the
// model is soft-deprecated so alert attribution stays resolvable.
func (r *ModelRepository) Delete(id string) (deprecated bool, err error) {
	var refs int64
	if err := r.DB.Model(&models.Alert{}).Where("model_id = ?", id).Count(&refs).Error; err != nil {
		return false, err
	}
	if refs > 0 {
		result := r.DB.Model(&models.AIModel{}).Where("id = ?", id).
			Update("status", models.ModelStatusDeprecated)
		if result.Error != nil {
			return false, result.Error
		}
		if result.RowsAffected == 0 {
			return false, ErrModelNotFound
		}
		return true, nil
	}

	result := r.DB.Delete(&models.AIModel{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, ErrModelNotFound
	}
	return false, nil
}

// RecordFeedback bumps the model's feedback counters with in-database
// increments, so concurrent submissions never lose updates. feedback_count
// always moves; the error counters only when the correction says so, which
// keeps fp+fn <= feedback_count.
func (r *ModelRepository) RecordFeedback(id string, falsePositive, falseNegative bool) error {
	updates := map[string]interface{}{
		"feedback_count": gorm.Expr("feedback_count + 1"),
	}
	if falsePositive {
		updates["false_positive_count"] = gorm.Expr("false_positive_count + 1")
	}
	if falseNegative {
		updates["false_negative_count"] = gorm.Expr("false_negative_count + 1")
	}

	result := r.DB.Model(&models.AIModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrModelNotFound
	}
	return nil
}

// BeginTraining performs the Active -> Training transition. The conditional
// write serializes retraining cycles for one model: a second caller sees zero
// rows affected and backs off. Deprecated models can never enter Training.
func (r *ModelRepository) BeginTraining(id string) (bool, error) {
	result := r.DB.Model(&models.AIModel{}).
		Where("id = ? AND status = ?", id, models.ModelStatusActive).
		Update("status", models.ModelStatusTraining)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteTraining promotes a retrained model: new version and metrics are
// persisted, counters reset, status back to Active.
func (r *ModelRepository) CompleteTraining(model *models.AIModel) error {
	model.Status = models.ModelStatusActive
	model.FeedbackCount = 0
	model.FalsePositiveCount = 0
	model.FalseNegativeCount = 0
	return r.DB.Save(model).Error
}

// AbortTraining reverts a model to Active without promoting anything,
// leaving counters untouched. Used on retraining failure so the model is
// never stranded in Training.
func (r *ModelRepository) AbortTraining(id string) error {
	return r.DB.Model(&models.AIModel{}).
		Where("id = ? AND status = ?", id, models.ModelStatusTraining).
		Update("status", models.ModelStatusActive).Error
}

// AppendMetric stores one evaluation snapshot on the model, honoring the cap.
func (r *ModelRepository) AppendMetric(id string, pm models.PerformanceMetric) (*models.AIModel, error) {
	model, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	model.AppendMetric(pm)
	if err := r.DB.Save(model).Error; err != nil {
		return nil, err
	}
	return model, nil
}

// AppendVersion records an administratively supplied version entry.
func (r *ModelRepository) AppendVersion(id string, v models.VersionRecord) (*models.AIModel, error) {
	model, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	model.AppendVersion(v)
	if err := r.DB.Save(model).Error; err != nil {
		return nil, err
	}
	return model, nil
}
