package recommend

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"
)

// ---- Repository interfaces ----

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type SignupRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]domain.Signup, error)
}

// HistoryRepository returns entries newest first.
type HistoryRepository interface {
	RecentSearches(ctx context.Context, userID uint, limit int) ([]domain.SearchHistory, error)
	RecentViews(ctx context.Context, userID uint, limit int) ([]domain.ViewHistory, error)
}

type ReviewRepository interface {
	FindByUserWithEvents(ctx context.Context, userID uint) ([]domain.ReviewWithEvent, error)
}

type EventRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Event, error)
	FindUpcoming(ctx context.Context, now time.Time, excludeIDs []uint64, limit int) ([]domain.Event, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex runs a filtered nearest-neighbour search over event embeddings.
// An empty index or a filter that excludes everything yields no matches, not an error.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, numCandidates, limit int, filter domain.VectorFilter) ([]domain.VectorMatch, error)
}

// ---- Service ----

type Service struct {
	userRepo    UserRepository
	signupRepo  SignupRepository
	historyRepo HistoryRepository
	reviewRepo  ReviewRepository
	eventRepo   EventRepository
	embedder    Embedder
	index       VectorIndex
	cfg         Config

	strategies []strategy
	now        func() time.Time
}

// NewService wires the ranking engine. embedder and index may be nil, which
// disables the semantic strategy.
func NewService(
	userRepo UserRepository,
	signupRepo SignupRepository,
	historyRepo HistoryRepository,
	reviewRepo ReviewRepository,
	eventRepo EventRepository,
	embedder Embedder,
	index VectorIndex,
	cfg Config,
) *Service {
	s := &Service{
		userRepo:    userRepo,
		signupRepo:  signupRepo,
		historyRepo: historyRepo,
		reviewRepo:  reviewRepo,
		eventRepo:   eventRepo,
		embedder:    embedder,
		index:       index,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
	s.strategies = s.buildStrategies()
	return s
}

// Recommend builds the user's profile, walks the strategy chain until one
// produces a ranking, boosts the top `limit` events and returns them.
func (s *Service) Recommend(
	ctx context.Context,
	userID uint,
	limit int,
	includeSignedUp bool,
) (domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("context error: %w", err)
	}
	if userID == 0 {
		return domain.RecommendationResult{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit < 1 || limit > s.cfg.MaxLimit {
		return domain.RecommendationResult{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, s.cfg.MaxLimit)
	}

	profile, err := s.BuildProfile(ctx, userID, includeSignedUp)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	now := s.now()
	tid := TraceIDFromContext(ctx)

	for _, st := range s.strategies {
		if !st.eligible(profile) {
			StrategyAttemptsTotal.WithLabelValues(string(st.kind), outcomeIneligible).Inc()
			continue
		}

		ranked, err := st.rank(ctx, profile, now)
		if err != nil {
			if st.degradable && !errors.Is(err, context.Canceled) {
				StrategyAttemptsTotal.WithLabelValues(string(st.kind), outcomeFailed).Inc()
				logger.Warn("recommend_strategy_failed",
					"trace_id", tid,
					"user_id", userID,
					"strategy", st.kind,
					"error", err,
				)
				continue
			}
			return domain.RecommendationResult{}, fmt.Errorf("%s ranking: %w", st.kind, err)
		}
		if len(ranked) == 0 && st.degradable {
			StrategyAttemptsTotal.WithLabelValues(string(st.kind), outcomeEmpty).Inc()
			continue
		}

		CandidatePoolSize.WithLabelValues(string(st.kind)).Observe(float64(len(ranked)))
		StrategyAttemptsTotal.WithLabelValues(string(st.kind), outcomeServed).Inc()

		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		events := ApplyBoosts(ranked, profile, now)

		logger.Debug("recommend_served",
			"trace_id", tid,
			"user_id", userID,
			"strategy", st.kind,
			"candidates", len(ranked),
			"returned", len(events),
			"include_signed_up", includeSignedUp,
		)

		return domain.RecommendationResult{
			Events:             events,
			RecommendationType: st.kind,
		}, nil
	}

	// the popularity strategy is always eligible and never degradable,
	// so the loop only ends here when the chain is misconfigured
	return domain.RecommendationResult{Events: []domain.ScoredEvent{}, RecommendationType: domain.RecommendationPopular}, nil
}
