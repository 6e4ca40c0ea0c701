package event

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventRepository contract interface
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	FindByID(ctx context.Context, id uint64) (domain.Event, error)
	FindUpcoming(ctx context.Context, now time.Time, excludeIDs []uint64, limit int) ([]domain.Event, error)
	Search(ctx context.Context, query string, now time.Time, limit int) ([]domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	UpdateEmbedding(ctx context.Context, id uint64, embedding []float32) error
	Delete(ctx context.Context, id uint64) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndexWriter keeps an external nearest-neighbour index in sync with the event table.
type VectorIndexWriter interface {
	Upsert(ctx context.Context, event domain.Event) error
	Delete(ctx context.Context, eventID uint64) error
}

// HistoryRecorder records what an authenticated user looked for or at.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, userID uint, query string) error
	RecordView(ctx context.Context, userID uint, eventID uint64) error
}

// Actor is the authenticated caller of a write operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) canManage(e domain.Event) bool {
	switch a.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOrganiser:
		return e.OrganiserID == a.UserID
	default:
		return false
	}
}

const defaultListLimit = 50

type EventService struct {
	eventRepo EventRepository
	embedder  Embedder
	index     VectorIndexWriter
	history   HistoryRecorder
	now       func() time.Time
}

// NewEventService builds the catalog service. embedder and index may be nil.
func NewEventService(eventRepo EventRepository, embedder Embedder, index VectorIndexWriter, history HistoryRecorder) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		embedder:  embedder,
		index:     index,
		history:   history,
		now:       time.Now,
	}
}

func validateEvent(e *domain.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if e.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", domain.ErrValidation)
	}

	tags := make([]string, 0, len(e.Interests))
	seen := map[string]struct{}{}
	for _, tag := range e.Interests {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	e.Interests = tags
	return nil
}

func (s *EventService) CreateEvent(ctx context.Context, actor Actor, event *domain.Event) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create event")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if actor.Role != domain.RoleOrganiser && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only organisers can create events", domain.ErrForbidden)
	}

	if err := validateEvent(event); err != nil {
		logger.Error("Invalid event data", err)
		return nil, err
	}

	if actor.Role == domain.RoleOrganiser || event.OrganiserID == 0 {
		event.OrganiserID = actor.UserID
	}
	event.ID = 0
	event.SignupCount = 0
	event.Embedding = nil

	if err := s.eventRepo.Create(ctx, event); err != nil {
		logger.Error("failed to create new event", err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.indexEvent(ctx, event)

	logger.Info("event created", "event_id", event.ID, "organiser_id", event.OrganiserID)

	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, actor Actor, event *domain.Event) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating event")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if event.ID == 0 {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}

	if err := validateEvent(event); err != nil {
		logger.Error("Invalid event data", err)
		return nil, err
	}

	existing, err := s.eventRepo.FindByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(existing) {
		return nil, fmt.Errorf("%w: event belongs to another organiser", domain.ErrForbidden)
	}

	event.OrganiserID = existing.OrganiserID
	event.SignupCount = existing.SignupCount
	event.CreatedAt = existing.CreatedAt

	if err := s.eventRepo.Update(ctx, event); err != nil {
		logger.Error("failed to update event", err)
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	updated, err := s.eventRepo.FindByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated event: %w", err)
	}

	s.indexEvent(ctx, &updated)
	updated.Embedding = nil

	logger.Info("event updated", "event_id", updated.ID)

	return &updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actor Actor, id uint64) error {
	if id == 0 {
		return fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting event")
		return fmt.Errorf("context error: %w", err)
	}

	existing, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canManage(existing) {
		return fmt.Errorf("%w: event belongs to another organiser", domain.ErrForbidden)
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete event", err)
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			logger.Warn("vector index delete failed", "event_id", id, "error", err)
		}
	}

	logger.Info("event deleted", "event_id", id)

	return nil
}

// GetEvent returns one event. A non-zero viewerID records a view.
func (s *EventService) GetEvent(ctx context.Context, id uint64, viewerID uint) (*domain.Event, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerID != 0 && s.history != nil {
		if err := s.history.RecordView(ctx, viewerID, id); err != nil {
			logger.Warn("failed to record view", "user_id", viewerID, "event_id", id, "error", err)
		}
	}

	return &event, nil
}

// ListEvents returns upcoming events, or a free-text search over them when
// query is set. A non-zero viewerID records the search.
func (s *EventService) ListEvents(ctx context.Context, query string, viewerID uint) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	now := s.now()
	query = strings.TrimSpace(query)

	var (
		events []domain.Event
		err    error
	)
	if query == "" {
		events, err = s.eventRepo.FindUpcoming(ctx, now, nil, defaultListLimit)
	} else {
		events, err = s.eventRepo.Search(ctx, query, now, defaultListLimit)
	}
	if err != nil {
		logger.Error("Failed to list events", err)
		return nil, err
	}

	if query != "" && viewerID != 0 && s.history != nil {
		if err := s.history.RecordSearch(ctx, viewerID, query); err != nil {
			logger.Warn("failed to record search", "user_id", viewerID, "error", err)
		}
	}

	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// indexEvent embeds the event text and stores the vector. Failures are logged
// and never fail the surrounding write.
func (s *EventService) indexEvent(ctx context.Context, event *domain.Event) {
	if s.embedder == nil {
		return
	}

	vector, err := s.embedder.Embed(ctx, event.EmbeddingText())
	if err != nil || len(vector) == 0 {
		if err == nil {
			err = errors.New("empty embedding")
		}
		logger.Warn("event embedding failed", "event_id", event.ID, "error", err)
		return
	}

	if err := s.eventRepo.UpdateEmbedding(ctx, event.ID, vector); err != nil {
		logger.Warn("failed to store event embedding", "event_id", event.ID, "error", err)
		return
	}
	event.Embedding = vector

	if s.index != nil {
		if err := s.index.Upsert(ctx, *event); err != nil {
			logger.Warn("vector index upsert failed", "event_id", event.ID, "error", err)
		}
	}

	event.Embedding = nil
}
