package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/pkg/review"
)

// Blend weights: historical performance dominates so a single unusually good
// or bad submission cannot swing the displayed skill level.
const (
	blendWeightOld = 0.7
	blendWeightNew = 0.3
)

// ErrCapabilityOutOfRange indicates a blended score left [0,100]. Inputs are
// pre-validated so this cannot happen; it is asserted anyway.
var ErrCapabilityOutOfRange = errors.New("capability score out of range")

// CapabilityService folds review sub-scores into the persistent per-user
// capability profile.
type CapabilityService interface {
	ApplyDelta(ctx context.Context, userID uint, delta review.CapabilityDelta) (models.CapabilityProfile, error)
	GetRadar(ctx context.Context, userID uint) (dto.CapabilityRadarResponse, error)
}

type capabilityService struct {
	profiles repository.CapabilityRepository
	logger   zerolog.Logger
}

// NewCapabilityService constructs the capability aggregator.
func NewCapabilityService(profiles repository.CapabilityRepository, logger zerolog.Logger) CapabilityService {
	return &capabilityService{
		profiles: profiles,
		logger:   logger.With().Str("component", "capability_service").Logger(),
	}
}

// ApplyDelta merges a review's sub-scores into the user's profile. The profile
// is created on first applicable observation; the read-modify-write runs under
// a per-user row lock so concurrent updates never lose an observation.
func (s *capabilityService) ApplyDelta(ctx context.Context, userID uint, delta review.CapabilityDelta) (models.CapabilityProfile, error) {
	profile, err := s.profiles.ApplyUpdate(ctx, userID, func(profile *models.CapabilityProfile, exists bool) error {
		if exists {
			profile.BasicSyntax = blend(profile.BasicSyntax, delta.BasicSyntax)
			profile.MemoryManagement = blend(profile.MemoryManagement, delta.MemoryManagement)
			profile.DataStructures = blend(profile.DataStructures, delta.DataStructures)
			profile.OOP = blend(profile.OOP, delta.OOP)
			profile.STLLibrary = blend(profile.STLLibrary, delta.STLLibrary)
			profile.SystemProgramming = blend(profile.SystemProgramming, delta.SystemProgramming)
		} else {
			profile.BasicSyntax = initial(delta.BasicSyntax)
			profile.MemoryManagement = initial(delta.MemoryManagement)
			profile.DataStructures = initial(delta.DataStructures)
			profile.OOP = initial(delta.OOP)
			profile.STLLibrary = initial(delta.STLLibrary)
			profile.SystemProgramming = initial(delta.SystemProgramming)
		}

		for _, score := range profile.Scores() {
			if score < 0 || score > 100 {
				return fmt.Errorf("%w: %d", ErrCapabilityOutOfRange, score)
			}
		}

		return nil
	})
	if err != nil {
		return models.CapabilityProfile{}, err
	}

	s.logger.Debug().Uint("user_id", userID).Msg("capability profile updated")
	return profile, nil
}

// GetRadar returns the user's radar scores, all zero when no profile exists yet.
func (s *capabilityService) GetRadar(ctx context.Context, userID uint) (dto.CapabilityRadarResponse, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CapabilityRadarResponse{}, nil
		}
		return dto.CapabilityRadarResponse{}, err
	}

	return dto.NewCapabilityRadarResponse(profile), nil
}

// blend folds one observation into a stored score using a fixed-weight
// exponential moving average, rounding half up. An inapplicable observation
// leaves the stored score untouched.
func blend(old int, observation review.DimensionScore) int {
	if !observation.Applicable {
		return old
	}
	return int(math.Floor(float64(old)*blendWeightOld + float64(observation.Score)*blendWeightNew + 0.5))
}

// initial seeds a dimension on first observation; inapplicable floors to zero.
func initial(observation review.DimensionScore) int {
	if !observation.Applicable {
		return 0
	}
	return observation.Score
}
