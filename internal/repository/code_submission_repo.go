package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// SubmissionStats aggregates a user's submission history.
type SubmissionStats struct {
	Total  int64
	Passed int64
	Failed int64
	Errors int64
}

// CodeSubmissionRepository exposes persistence helpers for code submissions.
type CodeSubmissionRepository interface {
	Create(ctx context.Context, submission *models.CodeSubmission) error
	Update(ctx context.Context, submission *models.CodeSubmission) error
	GetByID(ctx context.Context, id uint) (models.CodeSubmission, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.CodeSubmission, error)
	StatsByUser(ctx context.Context, userID uint) (SubmissionStats, error)
}

// NewCodeSubmissionRepository constructs a code submission repository.
func NewCodeSubmissionRepository(db *gorm.DB) CodeSubmissionRepository {
	return &codeSubmissionRepository{db: db}
}

type codeSubmissionRepository struct {
	db *gorm.DB
}

func (r *codeSubmissionRepository) Create(ctx context.Context, submission *models.CodeSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *codeSubmissionRepository) Update(ctx context.Context, submission *models.CodeSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *codeSubmissionRepository) GetByID(ctx context.Context, id uint) (models.CodeSubmission, error) {
	var submission models.CodeSubmission
	err := r.db.WithContext(ctx).
		Preload("Problem").
		First(&submission, id).Error
	if err != nil {
		return models.CodeSubmission{}, err
	}
	return submission, nil
}

func (r *codeSubmissionRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CodeSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var submissions []models.CodeSubmission
	err := r.db.WithContext(ctx).
		Preload("Problem").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *codeSubmissionRepository) StatsByUser(ctx context.Context, userID uint) (SubmissionStats, error) {
	stats := SubmissionStats{}
	base := r.db.WithContext(ctx).Model(&models.CodeSubmission{}).Where("user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return SubmissionStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.CodeSubmissionStatusPassed).Count(&stats.Passed).Error; err != nil {
		return SubmissionStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.CodeSubmissionStatusFailed).Count(&stats.Failed).Error; err != nil {
		return SubmissionStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.CodeSubmissionStatusError).Count(&stats.Errors).Error; err != nil {
		return SubmissionStats{}, err
	}

	return stats, nil
}
