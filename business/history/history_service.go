package history

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"
)

// HistoryRepository contract interface. Recent* return entries newest first.
type HistoryRepository interface {
	AddSearch(ctx context.Context, entry *domain.SearchHistory) error
	AddView(ctx context.Context, entry *domain.ViewHistory) error
	RecentSearches(ctx context.Context, userID uint, limit int) ([]domain.SearchHistory, error)
	RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewHistory, error)
	PruneSearches(ctx context.Context, userID uint, keep int) error
	PruneViews(ctx context.Context, userID uint, keep int) error
	Clear(ctx context.Context, userID uint) error
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// EventLookup is the slice of the event store the tracker needs.
type EventLookup interface {
	FindByID(ctx context.Context, id uint64) (domain.Event, error)
}

type HistoryService struct {
	historyRepo HistoryRepository
	eventRepo   EventLookup
	maxAge      time.Duration
	now         func() time.Time
}

func NewHistoryService(historyRepo HistoryRepository, eventRepo EventLookup, maxAge time.Duration) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		eventRepo:   eventRepo,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

func (s *HistoryService) RecordSearch(ctx context.Context, userID uint, query string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}

	entry := domain.SearchHistory{UserID: userID, Query: query, CreatedAt: s.now()}
	if err := s.historyRepo.AddSearch(ctx, &entry); err != nil {
		logger.Error("failed to record search", "user_id", userID, "error", err)
		return err
	}

	return s.historyRepo.PruneSearches(ctx, userID, domain.MaxHistoryPerType)
}

func (s *HistoryService) RecordView(ctx context.Context, userID uint, eventID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if eventID == 0 {
		return fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return err
	}

	entry := domain.ViewHistory{UserID: userID, EventID: eventID, CreatedAt: s.now()}
	if err := s.historyRepo.AddView(ctx, &entry); err != nil {
		logger.Error("failed to record view", "user_id", userID, "event_id", eventID, "error", err)
		return err
	}

	return s.historyRepo.PruneViews(ctx, userID, domain.MaxHistoryPerType)
}

func (s *HistoryService) GetHistory(ctx context.Context, userID uint) (domain.History, error) {
	if err := ctx.Err(); err != nil {
		return domain.History{}, fmt.Errorf("context error: %w", err)
	}

	searches, err := s.historyRepo.RecentSearches(ctx, userID, domain.MaxHistoryPerType)
	if err != nil {
		return domain.History{}, err
	}

	views, err := s.historyRepo.RecentViews(ctx, userID, domain.MaxHistoryPerType)
	if err != nil {
		return domain.History{}, err
	}

	if searches == nil {
		searches = []domain.SearchHistory{}
	}
	if views == nil {
		views = []domain.ViewHistory{}
	}

	return domain.History{Searches: searches, Views: views}, nil
}

func (s *HistoryService) ClearHistory(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.historyRepo.Clear(ctx, userID); err != nil {
		logger.Error("failed to clear history", "user_id", userID, "error", err)
		return err
	}

	logger.Info("history cleared", "user_id", userID)
	return nil
}

// PurgeExpired drops entries older than the configured retention.
func (s *HistoryService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.maxAge)
	n, err := s.historyRepo.PurgeExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("history expired", "rows", n, "cutoff", cutoff)
	}
	return n, nil
}

// RunExpiry purges expired history every interval until ctx is done.
func (s *HistoryService) RunExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.PurgeExpired(ctx); err != nil {
			logger.Warn("history expiry failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
