package postgres

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{
		DB: db,
	}
}

func (r *HistoryRepository) AddSearch(ctx context.Context, entry *domain.SearchHistory) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (r *HistoryRepository) AddView(ctx context.Context, entry *domain.ViewHistory) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

func (r *HistoryRepository) RecentSearches(ctx context.Context, userID uint, limit int) ([]domain.SearchHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var out []domain.SearchHistory
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find search history: %w", err)
	}
	return out, nil
}

func (r *HistoryRepository) RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var out []domain.ViewHistory
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find view history: %w", err)
	}
	return out, nil
}

// prune keeps the newest `keep` rows of the user. Running it twice, or from
// two requests at once, still leaves at most `keep` rows.
func (r *HistoryRepository) prune(ctx context.Context, model interface{}, userID uint, keep int) error {
	newest := r.DB.Model(model).Select("id").Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(keep)

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, newest).
		Delete(model).Error
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

func (r *HistoryRepository) PruneSearches(ctx context.Context, userID uint, keep int) error {
	return r.prune(ctx, &domain.SearchHistory{}, userID, keep)
}

func (r *HistoryRepository) PruneViews(ctx context.Context, userID uint, keep int) error {
	return r.prune(ctx, &domain.ViewHistory{}, userID, keep)
}

func (r *HistoryRepository) Clear(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.SearchHistory{}).Error; err != nil {
			return fmt.Errorf("failed to clear search history: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.ViewHistory{}).Error; err != nil {
			return fmt.Errorf("failed to clear view history: %w", err)
		}
		return nil
	})
}

// PurgeExpired removes entries created before olderThan and returns how many went.
func (r *HistoryRepository) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", olderThan).Delete(&domain.SearchHistory{})
		if res.Error != nil {
			return fmt.Errorf("failed to purge search history: %w", res.Error)
		}
		total += res.RowsAffected

		res = tx.Where("created_at < ?", olderThan).Delete(&domain.ViewHistory{})
		if res.Error != nil {
			return fmt.Errorf("failed to purge view history: %w", res.Error)
		}
		total += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
