package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/repository"
)

// DashboardService produces aggregated learning statistics per user.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	submissions  repository.CodeSubmissionRepository
	capabilities CapabilityService
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(submissions repository.CodeSubmissionRepository, capabilities CapabilityService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		submissions:  submissions,
		capabilities: capabilities,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:user:%d", userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	stats, err := s.submissions.StatsByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	radar, err := s.capabilities.GetRadar(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	recent, err := s.submissions.ListByUser(ctx, userID, 5)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		TotalSubmissions: stats.Total,
		Passed:           stats.Passed,
		Failed:           stats.Failed,
		Errors:           stats.Errors,
		Radar:            radar,
	}
	if stats.Total > 0 {
		response.PassRate = float64(stats.Passed) / float64(stats.Total)
	}
	for _, submission := range recent {
		response.RecentSubmissions = append(response.RecentSubmissions, dto.NewCodeSubmissionResponse(submission, false))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}
