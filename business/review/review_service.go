package review

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
)

type ReviewRepository interface {
	Upsert(ctx context.Context, review *domain.Review) error
	FindByEvent(ctx context.Context, eventID uint64) ([]domain.Review, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Review, error)
}

type SignupLookup interface {
	Find(ctx context.Context, userID uint, eventID uint64) (domain.Signup, error)
}

type EventLookup interface {
	FindByID(ctx context.Context, id uint64) (domain.Event, error)
}

const maxCommentLength = 2000

type ReviewService struct {
	reviewRepo ReviewRepository
	signupRepo SignupLookup
	eventRepo  EventLookup
}

func NewReviewService(reviewRepo ReviewRepository, signupRepo SignupLookup, eventRepo EventLookup) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		signupRepo: signupRepo,
		eventRepo:  eventRepo,
	}
}

// SubmitReview creates or replaces the user's review of an event they signed up for.
func (s *ReviewService) SubmitReview(ctx context.Context, userID uint, eventID uint64, rating int, comment string) (domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return domain.Review{}, fmt.Errorf("context error: %w", err)
	}

	if rating < 1 || rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return domain.Review{}, fmt.Errorf("%w: comment is too long", domain.ErrValidation)
	}

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return domain.Review{}, err
	}

	if _, err := s.signupRepo.Find(ctx, userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, fmt.Errorf("%w: only attendees can review an event", domain.ErrForbidden)
		}
		return domain.Review{}, err
	}

	review := domain.Review{
		UserID:  userID,
		EventID: eventID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviewRepo.Upsert(ctx, &review); err != nil {
		logger.Error("failed to save review", "user_id", userID, "event_id", eventID, "error", err)
		return domain.Review{}, err
	}

	logger.Info("review saved", "user_id", userID, "event_id", eventID, "rating", rating)

	return review, nil
}

func (s *ReviewService) ListByEvent(ctx context.Context, eventID uint64) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uint) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	reviews, err := s.reviewRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
