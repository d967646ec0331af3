package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// InterviewRepository exposes persistence helpers for interview sessions.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	Update(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id uint) (models.Interview, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Interview, error)
	AppendMessage(ctx context.Context, message *models.InterviewMessage) error
}

// NewInterviewRepository constructs an interview repository.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

type interviewRepository struct {
	db *gorm.DB
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *interviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

func (r *interviewRepository) GetByID(ctx context.Context, id uint) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("interview_messages.created_at ASC")
		}).
		First(&interview, id).Error
	if err != nil {
		return models.Interview{}, err
	}
	return interview, nil
}

func (r *interviewRepository) ListByUser(ctx context.Context, userID uint) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

func (r *interviewRepository) AppendMessage(ctx context.Context, message *models.InterviewMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
