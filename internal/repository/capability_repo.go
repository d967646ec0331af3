package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// CapabilityRepository persists per-user capability profiles.
type CapabilityRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.CapabilityProfile, error)
	// ApplyUpdate runs mutate against the user's profile inside a single
	// transaction holding a row lock, creating the profile when absent. Two
	// concurrent updates for the same user are serialized; updates for
	// different users do not block each other.
	ApplyUpdate(ctx context.Context, userID uint, mutate func(profile *models.CapabilityProfile, exists bool) error) (models.CapabilityProfile, error)
}

// NewCapabilityRepository constructs a capability profile repository.
func NewCapabilityRepository(db *gorm.DB) CapabilityRepository {
	return &capabilityRepository{db: db}
}

type capabilityRepository struct {
	db *gorm.DB
}

func (r *capabilityRepository) GetByUserID(ctx context.Context, userID uint) (models.CapabilityProfile, error) {
	var profile models.CapabilityProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return models.CapabilityProfile{}, err
	}
	return profile, nil
}

func (r *capabilityRepository) ApplyUpdate(ctx context.Context, userID uint, mutate func(profile *models.CapabilityProfile, exists bool) error) (models.CapabilityProfile, error) {
	var result models.CapabilityProfile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the row before locking it. When two transactions race on a
		// user's first profile, ON CONFLICT DO NOTHING turns the loser's
		// insert into a no-op instead of a unique-constraint failure, and the
		// locked read below serializes both on the surviving row.
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&models.CapabilityProfile{UserID: userID})
		if insert.Error != nil {
			return insert.Error
		}
		created := insert.RowsAffected == 1

		var profile models.CapabilityProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&profile).Error; err != nil {
			return err
		}

		if err := mutate(&profile, !created); err != nil {
			return err
		}

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		result = profile
		return nil
	})
	if err != nil {
		return models.CapabilityProfile{}, err
	}

	return result, nil
}
