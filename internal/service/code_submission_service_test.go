package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/pkg/review"
)

type stubSubmissionRepo struct {
	stored  models.CodeSubmission
	updates int
	err     error
}

func (s *stubSubmissionRepo) Create(ctx context.Context, submission *models.CodeSubmission) error {
	if s.err != nil {
		return s.err
	}
	if submission.ID == 0 {
		submission.ID = 1
	}
	s.stored = *submission
	return nil
}

func (s *stubSubmissionRepo) Update(ctx context.Context, submission *models.CodeSubmission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.updates++
	s.stored = *submission
	return nil
}

func (s *stubSubmissionRepo) GetByID(ctx context.Context, id uint) (models.CodeSubmission, error) {
	if s.err != nil {
		return models.CodeSubmission{}, s.err
	}
	if s.stored.ID == 0 || s.stored.ID != id {
		return models.CodeSubmission{}, gorm.ErrRecordNotFound
	}
	return s.stored, nil
}

func (s *stubSubmissionRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CodeSubmission, error) {
	if s.stored.ID == 0 || s.stored.UserID != userID {
		return nil, nil
	}
	return []models.CodeSubmission{s.stored}, nil
}

func (s *stubSubmissionRepo) StatsByUser(ctx context.Context, userID uint) (repository.SubmissionStats, error) {
	return repository.SubmissionStats{}, nil
}

type stubProblemRepo struct {
	problem models.Problem
	err     error
}

func (s *stubProblemRepo) List(ctx context.Context, query repository.ProblemQuery) ([]models.Problem, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubProblemRepo) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	if s.err != nil {
		return models.Problem{}, s.err
	}
	if s.problem.ID == 0 || s.problem.ID != id {
		return models.Problem{}, gorm.ErrRecordNotFound
	}
	return s.problem, nil
}

type stubReviewer struct {
	review  review.Review
	err     error
	prompts []string
}

func (s *stubReviewer) RequestReview(ctx context.Context, req review.Request) (review.Review, string, error) {
	s.prompts = append(s.prompts, req.Prompt)
	if s.err != nil {
		return review.Review{}, "", s.err
	}
	return s.review, "conv-1", nil
}

type stubCapabilities struct {
	applied *review.CapabilityDelta
	userID  uint
	err     error
}

func (s *stubCapabilities) ApplyDelta(ctx context.Context, userID uint, delta review.CapabilityDelta) (models.CapabilityProfile, error) {
	if s.err != nil {
		return models.CapabilityProfile{}, s.err
	}
	s.applied = &delta
	s.userID = userID
	return models.CapabilityProfile{UserID: userID}, nil
}

func (s *stubCapabilities) GetRadar(ctx context.Context, userID uint) (dto.CapabilityRadarResponse, error) {
	return dto.CapabilityRadarResponse{}, nil
}

func testProblem() models.Problem {
	return models.Problem{
		ID:          3,
		Title:       "Two Sum",
		Description: "Find two numbers adding to target.",
		TestCases:   "input: [1,2,3] 5, output: [1,2]",
	}
}

func newSubmissionFixture(reviewer *stubReviewer) (CodeSubmissionService, *stubSubmissionRepo, *stubCapabilities) {
	submissions := &stubSubmissionRepo{}
	capabilities := &stubCapabilities{}
	svc := NewCodeSubmissionService(
		submissions,
		&stubProblemRepo{problem: testProblem()},
		reviewer,
		capabilities,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, submissions, capabilities
}

func TestSubmitPassesAtThreshold(t *testing.T) {
	reviewer := &stubReviewer{review: review.Review{OverallScore: 60, Feedback: "just enough"}}
	svc, submissions, _ := newSubmissionFixture(reviewer)

	response, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() { return 0; }",
	})
	require.NoError(t, err)

	require.Equal(t, models.CodeSubmissionStatusPassed, response.Status)
	require.Equal(t, models.CodeSubmissionStatusPassed, submissions.stored.Status)
	require.NotNil(t, response.Review)
	require.Equal(t, 60, response.Review.OverallScore)

	var persisted review.Review
	require.NoError(t, json.Unmarshal(submissions.stored.Review, &persisted))
	require.Equal(t, 60, persisted.OverallScore)
}

func TestSubmitFailsBelowThreshold(t *testing.T) {
	reviewer := &stubReviewer{review: review.Review{OverallScore: 59}}
	svc, submissions, _ := newSubmissionFixture(reviewer)

	response, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "c",
		Source:    "int main(void) { return 1; }",
	})
	require.NoError(t, err)
	require.Equal(t, models.CodeSubmissionStatusFailed, response.Status)
	require.Equal(t, models.CodeSubmissionStatusFailed, submissions.stored.Status)
}

func TestSubmitAppliesCapabilityDelta(t *testing.T) {
	delta := review.CapabilityDelta{BasicSyntax: review.DimensionScore{Score: 90, Applicable: true}}
	reviewer := &stubReviewer{review: review.Review{OverallScore: 70, Capabilities: &delta}}
	svc, _, capabilities := newSubmissionFixture(reviewer)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.NoError(t, err)
	require.NotNil(t, capabilities.applied)
	require.Equal(t, uint(7), capabilities.userID)
	require.Equal(t, 90, capabilities.applied.BasicSyntax.Score)
}

func TestSubmitSkipsProfileWithoutCapabilities(t *testing.T) {
	reviewer := &stubReviewer{review: review.Review{OverallScore: 70}}
	svc, _, capabilities := newSubmissionFixture(reviewer)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.NoError(t, err)
	require.Nil(t, capabilities.applied)
}

func TestSubmitReviewFailureStillPersistsRecord(t *testing.T) {
	reviewer := &stubReviewer{err: review.ErrMalformedReview}
	svc, submissions, capabilities := newSubmissionFixture(reviewer)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.ErrorIs(t, err, ErrReviewUnavailable)

	require.Equal(t, models.CodeSubmissionStatusError, submissions.stored.Status)
	require.JSONEq(t, reviewErrorPayload, string(submissions.stored.Review))
	// a failed review must never touch the capability profile
	require.Nil(t, capabilities.applied)
}

// cancelingReviewer simulates the caller walking away mid-poll: it cancels
// the request context and reports the cancellation, the way ChatAndWait does.
type cancelingReviewer struct {
	cancel context.CancelFunc
}

func (r *cancelingReviewer) RequestReview(ctx context.Context, _ review.Request) (review.Review, string, error) {
	r.cancel()
	return review.Review{}, "", ctx.Err()
}

func TestSubmitCanceledRequestStillPersistsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	submissions := &stubSubmissionRepo{}
	svc := NewCodeSubmissionService(
		submissions,
		&stubProblemRepo{problem: testProblem()},
		&cancelingReviewer{cancel: cancel},
		&stubCapabilities{},
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	_, err := svc.Submit(ctx, 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.ErrorIs(t, err, ErrReviewUnavailable)

	require.Equal(t, models.CodeSubmissionStatusError, submissions.stored.Status)
	require.JSONEq(t, reviewErrorPayload, string(submissions.stored.Review))
}

func TestSubmitUnknownProblem(t *testing.T) {
	svc := NewCodeSubmissionService(
		&stubSubmissionRepo{},
		&stubProblemRepo{},
		&stubReviewer{},
		&stubCapabilities{},
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 99,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestSubmitRejectsUnsupportedLanguage(t *testing.T) {
	svc, _, _ := newSubmissionFixture(&stubReviewer{})

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "rust",
		Source:    "fn main() {}",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrProblemNotFound)
}

func TestSubmitEmbedsProblemInPrompt(t *testing.T) {
	reviewer := &stubReviewer{review: review.Review{OverallScore: 70}}
	svc, _, _ := newSubmissionFixture(reviewer)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.NoError(t, err)
	require.Len(t, reviewer.prompts, 1)
	require.Contains(t, reviewer.prompts[0], "Two Sum")
	require.Contains(t, reviewer.prompts[0], "int main() {}")
}

func TestGetEnforcesOwnership(t *testing.T) {
	reviewer := &stubReviewer{review: review.Review{OverallScore: 70}}
	svc, submissions, _ := newSubmissionFixture(reviewer)

	_, err := svc.Submit(context.Background(), 7, dto.CodeSubmitRequest{
		ProblemID: 3,
		Language:  "cpp",
		Source:    "int main() {}",
	})
	require.NoError(t, err)

	owned, err := svc.Get(context.Background(), submissions.stored.ID, 7, "student")
	require.NoError(t, err)
	require.Equal(t, "int main() {}", owned.Source)

	_, err = svc.Get(context.Background(), submissions.stored.ID, 8, "student")
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	asAdmin, err := svc.Get(context.Background(), submissions.stored.ID, 8, "admin")
	require.NoError(t, err)
	require.Equal(t, submissions.stored.ID, asAdmin.ID)
}

func TestGetUnknownSubmission(t *testing.T) {
	svc, _, _ := newSubmissionFixture(&stubReviewer{})

	_, err := svc.Get(context.Background(), 42, 7, "student")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
