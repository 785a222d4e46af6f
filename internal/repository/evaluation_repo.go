package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillmatch/eval-api/internal/models"
)

// EvaluationRecordRepository persists scoring audit rows.
type EvaluationRecordRepository interface {
	Create(ctx context.Context, record *models.EvaluationRecord) error
	LatestBySubmission(ctx context.Context, submissionID string) (models.EvaluationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.EvaluationRecord, error)
}

// ValidationRecordRepository persists validation audit rows.
type ValidationRecordRepository interface {
	Create(ctx context.Context, record *models.ValidationRecord) error
	LatestBySubmission(ctx context.Context, submissionID string) (models.ValidationRecord, error)
}

type evaluationRecordRepository struct {
	db *gorm.DB
}

// NewEvaluationRecordRepository builds the gorm-backed evaluation store.
func NewEvaluationRecordRepository(db *gorm.DB) EvaluationRecordRepository {
	return &evaluationRecordRepository{db: db}
}

func (r *evaluationRecordRepository) Create(ctx context.Context, record *models.EvaluationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *evaluationRecordRepository) LatestBySubmission(ctx context.Context, submissionID string) (models.EvaluationRecord, error) {
	var record models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		First(&record).Error
	return record, err
}

func (r *evaluationRecordRepository) ListRecent(ctx context.Context, limit int) ([]models.EvaluationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

type validationRecordRepository struct {
	db *gorm.DB
}

// NewValidationRecordRepository builds the gorm-backed validation store.
func NewValidationRecordRepository(db *gorm.DB) ValidationRecordRepository {
	return &validationRecordRepository{db: db}
}

func (r *validationRecordRepository) Create(ctx context.Context, record *models.ValidationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *validationRecordRepository) LatestBySubmission(ctx context.Context, submissionID string) (models.ValidationRecord, error) {
	var record models.ValidationRecord
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		First(&record).Error
	return record, err
}
