package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// ProblemQuery filters and paginates the problem list.
type ProblemQuery struct {
	Difficulty string
	Category   string
	Search     string
	Page       int
	PageSize   int
}

// ProblemRepository exposes read access to practice problems.
type ProblemRepository interface {
	List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error)
	GetByID(ctx context.Context, id uint) (models.Problem, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]models.Problem, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Problem{})

	if query.Difficulty != "" {
		tx = tx.Where("difficulty = ?", query.Difficulty)
	}
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(title) LIKE ?", pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var problems []models.Problem
	err := tx.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&problems).Error
	if err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}
