package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/repository"
)

// ProblemService exposes the practice problem catalogue.
type ProblemService interface {
	List(ctx context.Context, query dto.ProblemListQuery) (dto.ProblemListResponse, error)
	Get(ctx context.Context, id uint) (dto.ProblemResponse, error)
}

type problemService struct {
	problems  repository.ProblemRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProblemService constructs a problem service.
func NewProblemService(problems repository.ProblemRepository, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems:  problems,
		validator: validate,
		logger:    logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, query dto.ProblemListQuery) (dto.ProblemListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.ProblemListResponse{}, err
	}

	problems, total, err := s.problems.List(ctx, repository.ProblemQuery{
		Difficulty: query.Difficulty,
		Category:   query.Category,
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	summaries := make([]dto.ProblemSummaryResponse, 0, len(problems))
	for _, problem := range problems {
		summaries = append(summaries, dto.NewProblemSummaryResponse(problem))
	}

	return dto.ProblemListResponse{Problems: summaries, Total: total}, nil
}

func (s *problemService) Get(ctx context.Context, id uint) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem), nil
}
