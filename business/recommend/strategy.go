package recommend

import (
	"campusEvents/domain"
	"context"
	"time"
)

type rankFunc func(ctx context.Context, profile domain.UserProfile, now time.Time) ([]domain.CandidateEvent, error)

// strategy is one step of the ranking chain. Strategies are tried in order;
// the first eligible one that produces a ranking wins. A degradable strategy
// that fails or returns nothing hands over to the next one, any other
// failure is returned to the caller.
type strategy struct {
	kind       domain.RecommendationType
	eligible   eligibility
	rank       rankFunc
	degradable bool
}

// buildStrategies returns the chain:
//
//	personalized_vector -> personalized -> popular
func (s *Service) buildStrategies() []strategy {
	return []strategy{
		{
			kind:       domain.RecommendationPersonalizedVector,
			eligible:   s.semanticEligible,
			rank:       s.rankSemantic,
			degradable: true,
		},
		{
			kind:     domain.RecommendationPersonalized,
			eligible: personalizedEligible,
			rank: func(ctx context.Context, p domain.UserProfile, now time.Time) ([]domain.CandidateEvent, error) {
				return s.rankRuleBased(ctx, p, now, false)
			},
		},
		{
			kind:     domain.RecommendationPopular,
			eligible: alwaysEligible,
			rank: func(ctx context.Context, p domain.UserProfile, now time.Time) ([]domain.CandidateEvent, error) {
				return s.rankRuleBased(ctx, p, now, true)
			},
		},
	}
}

func (s *Service) rankRuleBased(ctx context.Context, p domain.UserProfile, now time.Time, popularityOnly bool) ([]domain.CandidateEvent, error) {
	candidates, err := s.loadFallbackCandidates(ctx, p, now)
	if err != nil {
		return nil, err
	}

	return RankFallback(p, candidates, FallbackOptions{
		ExcludeEventIDs: p.ExcludedEventIDs,
		PopularityOnly:  popularityOnly,
	}, now), nil
}
