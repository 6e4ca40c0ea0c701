package postgres

import (
	"campusEvents/domain"
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{
		DB: db,
	}
}

// Upsert keeps one review per user and event; a resubmission replaces rating and comment.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(review).Error
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) FindByEvent(ctx context.Context, eventID uint64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.DB.WithContext(ctx).Where("event_id = ?", eventID).Order("updated_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	return reviews, nil
}

type reviewEventRow struct {
	domain.Review  `gorm:"embedded"`
	EventInterests datatypes.JSONSlice[string] `gorm:"column:event_interests"`
}

// FindByUserWithEvents joins each review with the reviewed event's tags.
// Reviews of deleted events come back with no tags.
func (r *ReviewRepository) FindByUserWithEvents(ctx context.Context, userID uint) ([]domain.ReviewWithEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []reviewEventRow
	err := r.DB.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, events.interests AS event_interests").
		Joins("LEFT JOIN events ON events.id = reviews.event_id").
		Where("reviews.user_id = ?", userID).
		Order("reviews.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews with events: %w", err)
	}

	out := make([]domain.ReviewWithEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ReviewWithEvent{
			Review:         row.Review,
			EventInterests: row.EventInterests,
		})
	}

	return out, nil
}
