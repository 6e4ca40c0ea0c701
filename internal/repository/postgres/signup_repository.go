package postgres

import (
	"campusEvents/domain"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SignupRepository struct {
	DB *gorm.DB
}

func NewSignupRepository(db *gorm.DB) *SignupRepository {
	return &SignupRepository{
		DB: db,
	}
}

// Create inserts the signup and bumps the event's signup_count in one
// transaction. A second signup for the same event is ErrConflict.
func (r *SignupRepository) Create(ctx context.Context, signup *domain.Signup) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoNothing: true,
		}).Create(signup)
		if result.Error != nil {
			return fmt.Errorf("failed to create signup: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: already signed up for this event", domain.ErrConflict)
		}

		return adjustSignupCount(tx, signup.EventID, 1)
	})
}

func (r *SignupRepository) Find(ctx context.Context, userID uint, eventID uint64) (domain.Signup, error) {
	var signup domain.Signup

	err := r.DB.WithContext(ctx).Where("user_id = ? AND event_id = ?", userID, eventID).First(&signup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Signup{}, fmt.Errorf("signup: %w", domain.ErrNotFound)
		}
		return domain.Signup{}, fmt.Errorf("failed to find signup: %w", err)
	}

	return signup, nil
}

// FindByUser returns every signup of the user, newest first.
func (r *SignupRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Signup, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var signups []domain.Signup
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find signups: %w", err)
	}

	return signups, nil
}

// Delete removes the signup and decrements the event's signup_count in one
// transaction.
func (r *SignupRepository) Delete(ctx context.Context, userID uint, eventID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&domain.Signup{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete signup: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("signup: %w", domain.ErrNotFound)
		}

		return adjustSignupCount(tx, eventID, -1)
	})
}

// adjustSignupCount moves the denormalised counter by delta, never below zero.
func adjustSignupCount(tx *gorm.DB, eventID uint64, delta int) error {
	result := tx.Model(&domain.Event{}).Where("id = ?", eventID).
		UpdateColumn("signup_count", gorm.Expr(
			"CASE WHEN signup_count + ? < 0 THEN 0 ELSE signup_count + ? END", delta, delta,
		))
	if result.Error != nil {
		return fmt.Errorf("failed to update signup count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}

	return nil
}
