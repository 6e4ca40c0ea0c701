//go:build !integration

package postgres

import (
	"campusEvents/domain"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

const failCountCallback = "test:fail_signup_count"

// failCountUpdates makes every UPDATE on events fail until the returned func runs.
func failCountUpdates(t *testing.T, db *gorm.DB) func() {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register(failCountCallback, func(tx *gorm.DB) {
		if tx.Statement.Table == "events" {
			_ = tx.AddError(errors.New("db down"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return func() { _ = db.Callback().Update().Remove(failCountCallback) }
}

func seedEvent(t *testing.T, db *gorm.DB) uint64 {
	t.Helper()
	e := domain.Event{
		Title:       "Jazz Night",
		StartDate:   time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC),
		OrganiserID: 1,
		SignupsOpen: true,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e.ID
}

func signupCount(t *testing.T, db *gorm.DB, eventID uint64) int {
	t.Helper()
	var e domain.Event
	if err := db.First(&e, eventID).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	return e.SignupCount
}

func countSignups(db *gorm.DB, eventID uint64) int64 {
	var n int64
	db.Model(&domain.Signup{}).Where("event_id = ?", eventID).Count(&n)
	return n
}

func TestSignupCreate_IncrementsCountAndRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewSignupRepository(db)
	ctx := context.Background()
	eventID := seedEvent(t, db)

	if err := repo.Create(ctx, &domain.Signup{UserID: 7, EventID: eventID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := signupCount(t, db, eventID); got != 1 {
		t.Fatalf("signup_count = %d, want 1", got)
	}

	err := repo.Create(ctx, &domain.Signup{UserID: 7, EventID: eventID})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate err = %v, want ErrConflict", err)
	}
	if got := signupCount(t, db, eventID); got != 1 {
		t.Fatalf("signup_count after duplicate = %d, want 1", got)
	}
}

func TestSignupCreate_RollsBackWhenCountUpdateFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewSignupRepository(db)
	ctx := context.Background()
	eventID := seedEvent(t, db)

	restore := failCountUpdates(t, db)
	err := repo.Create(ctx, &domain.Signup{UserID: 7, EventID: eventID})
	restore()
	if err == nil || errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want the update failure", err)
	}
	if n := countSignups(db, eventID); n != 0 {
		t.Fatalf("signup rows after failed create = %d, want 0", n)
	}

	if err := repo.Create(ctx, &domain.Signup{UserID: 7, EventID: eventID}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := signupCount(t, db, eventID); got != 1 {
		t.Fatalf("signup_count = %d, want 1", got)
	}
}

func TestSignupCreate_MissingEvent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSignupRepository(db)

	err := repo.Create(context.Background(), &domain.Signup{UserID: 7, EventID: 404})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := countSignups(db, 404); n != 0 {
		t.Fatalf("signup rows = %d, want 0", n)
	}
}

func TestSignupDelete_DecrementsAndRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewSignupRepository(db)
	ctx := context.Background()
	eventID := seedEvent(t, db)

	if err := repo.Create(ctx, &domain.Signup{UserID: 7, EventID: eventID}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	restore := failCountUpdates(t, db)
	err := repo.Delete(ctx, 7, eventID)
	restore()
	if err == nil {
		t.Fatal("expected the update failure")
	}
	if n := countSignups(db, eventID); n != 1 {
		t.Fatalf("signup rows after failed delete = %d, want 1", n)
	}

	if err := repo.Delete(ctx, 7, eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := signupCount(t, db, eventID); got != 0 {
		t.Fatalf("signup_count = %d, want 0", got)
	}
	if err := repo.Delete(ctx, 7, eventID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSignupDelete_CountNeverNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewSignupRepository(db)
	ctx := context.Background()
	eventID := seedEvent(t, db)

	if err := db.Create(&domain.Signup{UserID: 3, EventID: eventID}).Error; err != nil {
		t.Fatalf("seed signup: %v", err)
	}
	if err := repo.Delete(ctx, 3, eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := signupCount(t, db, eventID); got != 0 {
		t.Fatalf("signup_count = %d, want 0", got)
	}
}
