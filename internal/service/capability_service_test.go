package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/pkg/review"
)

type stubCapabilityRepo struct {
	profile models.CapabilityProfile
	exists  bool
	err     error
}

func (s *stubCapabilityRepo) GetByUserID(ctx context.Context, userID uint) (models.CapabilityProfile, error) {
	if s.err != nil {
		return models.CapabilityProfile{}, s.err
	}
	if !s.exists {
		return models.CapabilityProfile{}, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubCapabilityRepo) ApplyUpdate(ctx context.Context, userID uint, mutate func(profile *models.CapabilityProfile, exists bool) error) (models.CapabilityProfile, error) {
	if s.err != nil {
		return models.CapabilityProfile{}, s.err
	}

	candidate := s.profile
	candidate.UserID = userID
	if err := mutate(&candidate, s.exists); err != nil {
		return models.CapabilityProfile{}, err
	}

	s.profile = candidate
	s.exists = true
	return candidate, nil
}

func applicable(score int) review.DimensionScore {
	return review.DimensionScore{Score: score, Applicable: true}
}

func fullDelta(score int) review.CapabilityDelta {
	return review.CapabilityDelta{
		BasicSyntax:       applicable(score),
		MemoryManagement:  applicable(score),
		DataStructures:    applicable(score),
		OOP:               applicable(score),
		STLLibrary:        applicable(score),
		SystemProgramming: applicable(score),
	}
}

func TestApplyDeltaSeedsNewProfile(t *testing.T) {
	repo := &stubCapabilityRepo{}
	svc := NewCapabilityService(repo, zerolog.Nop())

	delta := fullDelta(80)
	delta.OOP = review.DimensionScore{}

	profile, err := svc.ApplyDelta(context.Background(), 7, delta)
	require.NoError(t, err)

	require.Equal(t, uint(7), profile.UserID)
	require.Equal(t, 80, profile.BasicSyntax)
	require.Equal(t, 80, profile.SystemProgramming)
	// inapplicable dimensions start from zero
	require.Equal(t, 0, profile.OOP)
}

func TestApplyDeltaBlendsExistingProfile(t *testing.T) {
	repo := &stubCapabilityRepo{
		exists: true,
		profile: models.CapabilityProfile{
			BasicSyntax:       50,
			MemoryManagement:  50,
			DataStructures:    50,
			OOP:               40,
			STLLibrary:        50,
			SystemProgramming: 50,
		},
	}
	svc := NewCapabilityService(repo, zerolog.Nop())

	delta := fullDelta(80)
	delta.OOP = review.DimensionScore{}

	profile, err := svc.ApplyDelta(context.Background(), 7, delta)
	require.NoError(t, err)

	// 50*0.7 + 80*0.3 = 59
	require.Equal(t, 59, profile.BasicSyntax)
	// inapplicable observation leaves the stored score untouched
	require.Equal(t, 40, profile.OOP)
}

func TestApplyDeltaRoundsHalfUp(t *testing.T) {
	repo := &stubCapabilityRepo{
		exists:  true,
		profile: models.CapabilityProfile{BasicSyntax: 75},
	}
	svc := NewCapabilityService(repo, zerolog.Nop())

	delta := review.CapabilityDelta{BasicSyntax: applicable(80)}

	profile, err := svc.ApplyDelta(context.Background(), 7, delta)
	require.NoError(t, err)

	// 75*0.7 + 80*0.3 = 76.5 rounds up to 77
	require.Equal(t, 77, profile.BasicSyntax)
}

func TestApplyDeltaRejectsOutOfRangeResult(t *testing.T) {
	repo := &stubCapabilityRepo{}
	svc := NewCapabilityService(repo, zerolog.Nop())

	delta := review.CapabilityDelta{BasicSyntax: applicable(150)}

	_, err := svc.ApplyDelta(context.Background(), 7, delta)
	require.ErrorIs(t, err, ErrCapabilityOutOfRange)
	require.False(t, repo.exists)
}

func TestGetRadarZeroesWhenNoProfile(t *testing.T) {
	svc := NewCapabilityService(&stubCapabilityRepo{}, zerolog.Nop())

	radar, err := svc.GetRadar(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, radar.BasicSyntax)
	require.Zero(t, radar.SystemProgramming)
}

func TestGetRadarReturnsStoredScores(t *testing.T) {
	repo := &stubCapabilityRepo{
		exists:  true,
		profile: models.CapabilityProfile{BasicSyntax: 61, STLLibrary: 44},
	}
	svc := NewCapabilityService(repo, zerolog.Nop())

	radar, err := svc.GetRadar(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 61, radar.BasicSyntax)
	require.Equal(t, 44, radar.STLLibrary)
}
