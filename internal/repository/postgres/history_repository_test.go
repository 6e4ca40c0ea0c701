//go:build !integration

package postgres

import (
	"campusEvents/domain"
	"context"
	"testing"
	"time"
)

var historyBase = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestPruneSearches_KeepsNewestTwenty(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		entry := &domain.SearchHistory{UserID: 1, Query: "q", CreatedAt: historyBase.Add(time.Duration(i) * time.Minute)}
		if err := repo.AddSearch(ctx, entry); err != nil {
			t.Fatalf("AddSearch: %v", err)
		}
	}
	for i := 1; i <= 3; i++ {
		if err := repo.AddSearch(ctx, &domain.SearchHistory{UserID: 2, Query: "other", CreatedAt: historyBase}); err != nil {
			t.Fatalf("AddSearch: %v", err)
		}
	}

	if err := repo.PruneSearches(ctx, 1, domain.MaxHistoryPerType); err != nil {
		t.Fatalf("PruneSearches: %v", err)
	}

	var kept []domain.SearchHistory
	if err := db.Where("user_id = ?", 1).Order("created_at ASC").Find(&kept).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(kept) != domain.MaxHistoryPerType {
		t.Fatalf("kept %d rows, want %d", len(kept), domain.MaxHistoryPerType)
	}
	if oldest := historyBase.Add(6 * time.Minute); !kept[0].CreatedAt.Equal(oldest) {
		t.Fatalf("oldest kept = %v, want %v", kept[0].CreatedAt, oldest)
	}

	var others int64
	db.Model(&domain.SearchHistory{}).Where("user_id = ?", 2).Count(&others)
	if others != 3 {
		t.Fatalf("other user's rows = %d, want 3", others)
	}

	// a second pass is a no-op
	if err := repo.PruneSearches(ctx, 1, domain.MaxHistoryPerType); err != nil {
		t.Fatalf("PruneSearches: %v", err)
	}
	var count int64
	db.Model(&domain.SearchHistory{}).Where("user_id = ?", 1).Count(&count)
	if count != int64(domain.MaxHistoryPerType) {
		t.Fatalf("after second prune = %d", count)
	}
}

func TestPruneViews_KeepsNewestTwenty(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		entry := &domain.ViewHistory{UserID: 1, EventID: uint64(i), CreatedAt: historyBase.Add(time.Duration(i) * time.Minute)}
		if err := repo.AddView(ctx, entry); err != nil {
			t.Fatalf("AddView: %v", err)
		}
	}

	if err := repo.PruneViews(ctx, 1, domain.MaxHistoryPerType); err != nil {
		t.Fatalf("PruneViews: %v", err)
	}

	got, err := repo.RecentViews(ctx, 1, 100)
	if err != nil {
		t.Fatalf("RecentViews: %v", err)
	}
	if len(got) != domain.MaxHistoryPerType {
		t.Fatalf("kept %d views, want %d", len(got), domain.MaxHistoryPerType)
	}
	if got[0].EventID != 25 || got[len(got)-1].EventID != 6 {
		t.Fatalf("kept events %d..%d, want 25..6", got[0].EventID, got[len(got)-1].EventID)
	}
}

func TestPurgeExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	_ = repo.AddSearch(ctx, &domain.SearchHistory{UserID: 1, Query: "old", CreatedAt: historyBase.AddDate(0, -7, 0)})
	_ = repo.AddSearch(ctx, &domain.SearchHistory{UserID: 1, Query: "new", CreatedAt: historyBase})
	_ = repo.AddView(ctx, &domain.ViewHistory{UserID: 1, EventID: 1, CreatedAt: historyBase.AddDate(0, -7, 0)})

	n, err := repo.PurgeExpired(ctx, historyBase.AddDate(0, -6, 0))
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d rows, want 2", n)
	}
}
