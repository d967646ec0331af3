package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// KnowledgeQuery filters and paginates the article list.
type KnowledgeQuery struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

// KnowledgeRepository exposes persistence helpers for knowledge articles.
type KnowledgeRepository interface {
	Create(ctx context.Context, article *models.KnowledgeArticle) error
	Update(ctx context.Context, article *models.KnowledgeArticle) error
	List(ctx context.Context, query KnowledgeQuery) ([]models.KnowledgeArticle, int64, error)
	GetByID(ctx context.Context, id uint) (models.KnowledgeArticle, error)
	IncrementViews(ctx context.Context, id uint) error
	Categories(ctx context.Context) ([]string, error)
}

// NewKnowledgeRepository constructs a knowledge article repository.
func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

type knowledgeRepository struct {
	db *gorm.DB
}

func (r *knowledgeRepository) Create(ctx context.Context, article *models.KnowledgeArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *knowledgeRepository) Update(ctx context.Context, article *models.KnowledgeArticle) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *knowledgeRepository) List(ctx context.Context, query KnowledgeQuery) ([]models.KnowledgeArticle, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.KnowledgeArticle{})

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

	var articles []models.KnowledgeArticle
	err := tx.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id uint) (models.KnowledgeArticle, error) {
	var article models.KnowledgeArticle
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return models.KnowledgeArticle{}, err
	}
	return article, nil
}

func (r *knowledgeRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.KnowledgeArticle{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *knowledgeRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.KnowledgeArticle{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
