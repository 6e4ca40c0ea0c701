package postgres

import (
	"campusEvents/domain"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

// listing queries never need the vector
func (r *EventRepository) withoutEmbedding(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&domain.Event{}).Omit("embedding")
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint64) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("context error: %w", err)
	}

	var event domain.Event

	err := r.withoutEmbedding(ctx).First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, fmt.Errorf("event %d: %w", id, domain.ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("failed to find event: %w", err)
	}

	return event, nil
}

// FindByIDs returns the events that exist, in no particular order.
func (r *EventRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var events []domain.Event
	if err := r.withoutEmbedding(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	return events, nil
}

// FindUpcoming returns events starting after now, soonest first.
func (r *EventRepository) FindUpcoming(ctx context.Context, now time.Time, excludeIDs []uint64, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.withoutEmbedding(ctx).Where("start_date > ?", now)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var events []domain.Event
	if err := q.Order("start_date ASC, id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find upcoming events: %w", err)
	}

	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches upcoming events by title, description or an exact interest tag.
func (r *EventRepository) Search(ctx context.Context, query string, now time.Time, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	pattern := "%" + likeEscaper.Replace(query) + "%"
	tag, err := json.Marshal([]string{strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode interest filter: %w", err)
	}

	var events []domain.Event
	err = r.withoutEmbedding(ctx).
		Where("start_date > ?", now).
		Where("title ILIKE ? OR description ILIKE ? OR interests @> ?::jsonb", pattern, pattern, string(tag)).
		Order("start_date ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"title":        event.Title,
		"description":  event.Description,
		"location":     event.Location,
		"start_date":   event.StartDate,
		"end_date":     event.EndDate,
		"interests":    event.Interests,
		"capacity":     event.Capacity,
		"signups_open": event.SignupsOpen,
		"updated_at":   time.Now(),
	}

	result := r.DB.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", event.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %d: %w", event.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *EventRepository) UpdateEmbedding(ctx context.Context, id uint64, embedding []float32) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", id).
		UpdateColumn("embedding", datatypes.JSONSlice[float32](embedding))
	if result.Error != nil {
		return fmt.Errorf("failed to store embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the event and its signups.
func (r *EventRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&domain.Signup{}).Error; err != nil {
			return fmt.Errorf("failed to delete signups: %w", err)
		}

		result := tx.Delete(&domain.Event{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete event: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("event %d: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}
