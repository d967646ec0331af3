package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/pkg/review"
)

// ErrProblemNotFound indicates the referenced problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller may not access the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// ErrReviewUnavailable is the user-safe failure for any review pipeline error.
// The submission record is still persisted with an error status.
var ErrReviewUnavailable = errors.New("ai review temporarily unavailable")

// reviewErrorPayload is stored on submissions whose review never settled.
const reviewErrorPayload = `{"error":"AI review temporarily unavailable"}`

// CodeSubmissionService exposes code submission operations.
type CodeSubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.CodeSubmitRequest) (dto.CodeSubmitResponse, error)
	Get(ctx context.Context, id uint, viewerID uint, role string) (dto.CodeSubmissionResponse, error)
	ListMine(ctx context.Context, userID uint, limit int) ([]dto.CodeSubmissionResponse, error)
}

type codeSubmissionService struct {
	submissions  repository.CodeSubmissionRepository
	problems     repository.ProblemRepository
	reviewer     review.Requester
	capabilities CapabilityService
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewCodeSubmissionService constructs a code submission service.
func NewCodeSubmissionService(submissionRepo repository.CodeSubmissionRepository, problemRepo repository.ProblemRepository, reviewer review.Requester, capabilities CapabilityService, validate *validator.Validate, logger zerolog.Logger) CodeSubmissionService {
	return &codeSubmissionService{
		submissions:  submissionRepo,
		problems:     problemRepo,
		reviewer:     reviewer,
		capabilities: capabilities,
		validator:    validate,
		logger:       logger.With().Str("component", "code_submission_service").Logger(),
	}
}

// Submit persists the submission, obtains an AI review for it, settles the
// pass/fail status and folds the review's capability sub-scores into the
// user's profile. A failed review still leaves a persisted record behind.
func (s *codeSubmissionService) Submit(ctx context.Context, userID uint, payload dto.CodeSubmitRequest) (dto.CodeSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeSubmitResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, payload.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeSubmitResponse{}, ErrProblemNotFound
		}
		return dto.CodeSubmitResponse{}, err
	}

	submission := models.CodeSubmission{
		UserID:    userID,
		ProblemID: problem.ID,
		Language:  strings.ToLower(payload.Language),
		Source:    payload.Source,
		Status:    models.CodeSubmissionStatusRunning,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.CodeSubmitResponse{}, err
	}

	prompt := review.BuildPrompt(review.ProblemSpec{
		Title:       problem.Title,
		Description: problem.Description,
		TestCases:   problem.TestCases,
	}, payload.Source, submission.Language)

	parsed, _, err := s.reviewer.RequestReview(ctx, review.Request{
		RequesterID: strconv.FormatUint(uint64(userID), 10),
		Prompt:      prompt,
	})
	if err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("ai review failed")
		s.markErrored(ctx, &submission)
		return dto.CodeSubmitResponse{}, fmt.Errorf("%w: %v", ErrReviewUnavailable, err)
	}

	status := models.CodeSubmissionStatusFailed
	if parsed.Passed() {
		status = models.CodeSubmissionStatusPassed
	}

	reviewJSON, err := reviewPayload(parsed)
	if err != nil {
		s.markErrored(ctx, &submission)
		return dto.CodeSubmitResponse{}, fmt.Errorf("%w: %v", ErrReviewUnavailable, err)
	}

	submission.Status = status
	submission.Review = reviewJSON
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.CodeSubmitResponse{}, err
	}

	if parsed.Capabilities != nil {
		if _, err := s.capabilities.ApplyDelta(ctx, userID, *parsed.Capabilities); err != nil {
			return dto.CodeSubmitResponse{}, err
		}
	}

	return dto.CodeSubmitResponse{
		ID:     submission.ID,
		Status: status,
		Review: &parsed,
	}, nil
}

func (s *codeSubmissionService) Get(ctx context.Context, id uint, viewerID uint, role string) (dto.CodeSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.CodeSubmissionResponse{}, err
	}

	if !s.canView(viewerID, role, submission) {
		return dto.CodeSubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewCodeSubmissionResponse(submission, true), nil
}

func (s *codeSubmissionService) ListMine(ctx context.Context, userID uint, limit int) ([]dto.CodeSubmissionResponse, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CodeSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewCodeSubmissionResponse(submission, false))
	}
	return responses, nil
}

// markErrored records a failed review attempt so the submission is never
// silently lost. The update runs on a context detached from request
// cancellation: the review poll can outlive the caller, and an abandoned
// request must not strand the record in the running state.
func (s *codeSubmissionService) markErrored(ctx context.Context, submission *models.CodeSubmission) {
	ctx = context.WithoutCancel(ctx)
	submission.Status = models.CodeSubmissionStatusError
	submission.Review = datatypes.JSON(reviewErrorPayload)
	if err := s.submissions.Update(ctx, submission); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist errored submission")
	}
}

func (s *codeSubmissionService) canView(viewerID uint, role string, submission models.CodeSubmission) bool {
	if viewerID != 0 && viewerID == submission.UserID {
		return true
	}
	return strings.ToLower(role) == models.UserRoleAdmin
}

func reviewPayload(parsed review.Review) (datatypes.JSON, error) {
	body, err := json.Marshal(parsed)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(body), nil
}
