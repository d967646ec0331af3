package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
)

// ErrArticleNotFound indicates the knowledge article cannot be located.
var ErrArticleNotFound = errors.New("article not found")

// KnowledgeService exposes the knowledge base.
type KnowledgeService interface {
	List(ctx context.Context, query dto.KnowledgeListQuery) (dto.KnowledgeListResponse, error)
	Get(ctx context.Context, id uint) (dto.KnowledgeArticleResponse, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, payload dto.KnowledgeArticleRequest) (dto.KnowledgeArticleResponse, error)
	Update(ctx context.Context, id uint, payload dto.KnowledgeArticleRequest) (dto.KnowledgeArticleResponse, error)
}

type knowledgeService struct {
	articles  repository.KnowledgeRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewKnowledgeService constructs a knowledge base service. Article content is
// sanitized on every write since it is rendered as rich text.
func NewKnowledgeService(articles repository.KnowledgeRepository, validate *validator.Validate, logger zerolog.Logger) KnowledgeService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowAttrs("class").OnElements("code", "pre")

	return &knowledgeService{
		articles:  articles,
		validator: validate,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "knowledge_service").Logger(),
	}
}

func (s *knowledgeService) List(ctx context.Context, query dto.KnowledgeListQuery) (dto.KnowledgeListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.KnowledgeListResponse{}, err
	}

	articles, total, err := s.articles.List(ctx, repository.KnowledgeQuery{
		Category: query.Category,
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return dto.KnowledgeListResponse{}, err
	}

	responses := make([]dto.KnowledgeArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, dto.NewKnowledgeArticleResponse(article, false))
	}

	return dto.KnowledgeListResponse{Articles: responses, Total: total}, nil
}

func (s *knowledgeService) Get(ctx context.Context, id uint) (dto.KnowledgeArticleResponse, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.KnowledgeArticleResponse{}, ErrArticleNotFound
		}
		return dto.KnowledgeArticleResponse{}, err
	}

	if err := s.articles.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("article_id", id).Msg("failed to bump view counter")
	} else {
		article.Views++
	}

	return dto.NewKnowledgeArticleResponse(article, true), nil
}

func (s *knowledgeService) Categories(ctx context.Context) ([]string, error) {
	return s.articles.Categories(ctx)
}

func (s *knowledgeService) Create(ctx context.Context, payload dto.KnowledgeArticleRequest) (dto.KnowledgeArticleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.KnowledgeArticleResponse{}, err
	}

	article := models.KnowledgeArticle{
		Title:    strings.TrimSpace(payload.Title),
		Category: strings.TrimSpace(payload.Category),
		Tags:     payload.Tags,
		Content:  s.sanitizer.Sanitize(payload.Content),
	}
	if err := s.articles.Create(ctx, &article); err != nil {
		return dto.KnowledgeArticleResponse{}, err
	}

	return dto.NewKnowledgeArticleResponse(article, true), nil
}

func (s *knowledgeService) Update(ctx context.Context, id uint, payload dto.KnowledgeArticleRequest) (dto.KnowledgeArticleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.KnowledgeArticleResponse{}, err
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.KnowledgeArticleResponse{}, ErrArticleNotFound
		}
		return dto.KnowledgeArticleResponse{}, err
	}

	article.Title = strings.TrimSpace(payload.Title)
	article.Category = strings.TrimSpace(payload.Category)
	article.Tags = payload.Tags
	article.Content = s.sanitizer.Sanitize(payload.Content)

	if err := s.articles.Update(ctx, &article); err != nil {
		return dto.KnowledgeArticleResponse{}, err
	}

	return dto.NewKnowledgeArticleResponse(article, true), nil
}
