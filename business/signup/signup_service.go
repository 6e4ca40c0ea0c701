package signup

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"errors"
	"fmt"
)

// SignupRepository keeps the event's signup_count in step with the signup
// rows: Create and Delete adjust it in the same transaction.
type SignupRepository interface {
	Create(ctx context.Context, signup *domain.Signup) error
	Find(ctx context.Context, userID uint, eventID uint64) (domain.Signup, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Signup, error)
	Delete(ctx context.Context, userID uint, eventID uint64) error
}

type EventRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Event, error)
}

type SignupService struct {
	signupRepo SignupRepository
	eventRepo  EventRepository
}

func NewSignupService(signupRepo SignupRepository, eventRepo EventRepository) *SignupService {
	return &SignupService{
		signupRepo: signupRepo,
		eventRepo:  eventRepo,
	}
}

func (s *SignupService) SignUp(ctx context.Context, userID uint, eventID uint64) (domain.Signup, error) {
	if err := ctx.Err(); err != nil {
		return domain.Signup{}, fmt.Errorf("context error: %w", err)
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Signup{}, err
	}
	if !event.SignupsOpen {
		return domain.Signup{}, fmt.Errorf("%w: signups are closed for this event", domain.ErrValidation)
	}
	if event.IsFull() {
		return domain.Signup{}, fmt.Errorf("%w: event is full", domain.ErrConflict)
	}

	// capacity is checked before the write; concurrent signups may race past it by a few
	signup := domain.Signup{UserID: userID, EventID: eventID}
	if err := s.signupRepo.Create(ctx, &signup); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			logger.Error("failed to create signup", "event_id", eventID, "error", err)
		}
		return domain.Signup{}, err
	}

	logger.Info("user signed up", "user_id", userID, "event_id", eventID)

	return signup, nil
}

func (s *SignupService) Cancel(ctx context.Context, userID uint, eventID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.signupRepo.Find(ctx, userID, eventID); err != nil {
		return err
	}

	if err := s.signupRepo.Delete(ctx, userID, eventID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error("failed to cancel signup", "event_id", eventID, "error", err)
		}
		return err
	}

	logger.Info("signup cancelled", "user_id", userID, "event_id", eventID)

	return nil
}

func (s *SignupService) ListByUser(ctx context.Context, userID uint) ([]domain.Signup, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	signups, err := s.signupRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if signups == nil {
		signups = []domain.Signup{}
	}
	return signups, nil
}

// IsSignedUp reports whether the user holds a signup for the event.
func (s *SignupService) IsSignedUp(ctx context.Context, userID uint, eventID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	_, err := s.signupRepo.Find(ctx, userID, eventID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}
