package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
)

type countingSubmissionRepo struct {
	stats      repository.SubmissionStats
	recent     []models.CodeSubmission
	statsCalls int
}

func (s *countingSubmissionRepo) Create(ctx context.Context, submission *models.CodeSubmission) error {
	return nil
}

func (s *countingSubmissionRepo) Update(ctx context.Context, submission *models.CodeSubmission) error {
	return nil
}

func (s *countingSubmissionRepo) GetByID(ctx context.Context, id uint) (models.CodeSubmission, error) {
	return models.CodeSubmission{}, nil
}

func (s *countingSubmissionRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CodeSubmission, error) {
	if limit > 0 && len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func (s *countingSubmissionRepo) StatsByUser(ctx context.Context, userID uint) (repository.SubmissionStats, error) {
	s.statsCalls++
	return s.stats, nil
}

func TestDashboardAggregatesAndCaches(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &countingSubmissionRepo{
		stats: repository.SubmissionStats{Total: 10, Passed: 7, Failed: 2, Errors: 1},
		recent: []models.CodeSubmission{
			{ID: 5, UserID: 7, ProblemID: 1, Language: "cpp", Status: models.CodeSubmissionStatusPassed},
		},
	}
	capabilities := &stubCapabilities{}

	svc := NewDashboardService(repo, capabilities, redisClient, time.Minute, zerolog.Nop())

	response, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(10), response.TotalSubmissions)
	require.Equal(t, int64(7), response.Passed)
	require.InDelta(t, 0.7, response.PassRate, 1e-9)
	require.Len(t, response.RecentSubmissions, 1)
	require.Equal(t, 1, repo.statsCalls)

	// second call is served from the cache
	cached, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, response.TotalSubmissions, cached.TotalSubmissions)
	require.Equal(t, 1, repo.statsCalls)

	// expiry falls through to the repositories again
	server.FastForward(2 * time.Minute)
	_, err = svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, repo.statsCalls)
}

func TestDashboardZeroPassRateWithoutSubmissions(t *testing.T) {
	svc := NewDashboardService(&countingSubmissionRepo{}, &stubCapabilities{}, nil, time.Minute, zerolog.Nop())

	response, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, response.TotalSubmissions)
	require.Zero(t, response.PassRate)
	require.Empty(t, response.RecentSubmissions)
}
