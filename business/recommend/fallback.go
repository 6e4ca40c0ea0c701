package recommend

import (
	"campusEvents/domain"
	"sort"
	"time"
)

type FallbackOptions struct {
	ExcludeEventIDs []uint64
	PopularityOnly  bool
}

// popularity-only weights, sum to 1.0
const (
	popWeightPopularity = 0.5
	popWeightCapacity   = 0.2
)

var popRecencyTiers = recencyTiers{week: 0.3, fortnight: 0.2, month: 0.1}

// personalized weights, sum to about 1.0
const (
	persWeightInterest  = 0.7
	persWeightAffinity  = 0.3
	persWeightCapacity  = 0.1
	persNudgeCap        = 0.05
	persNudgeDivisor    = 50.0
	persNudgeDefaultCap = 100
)

var persRecencyTiers = recencyTiers{week: 0.15, fortnight: 0.10, month: 0.05}

type recencyTiers struct {
	week, fortnight, month float64
}

func (t recencyTiers) score(daysUntilStart float64) float64 {
	switch {
	case daysUntilStart <= 7:
		return t.week
	case daysUntilStart <= 14:
		return t.fortnight
	case daysUntilStart <= 30:
		return t.month
	default:
		return 0
	}
}

// RankFallback scores candidates with the rule-based model and returns them
// sorted by descending score, every score clamped to [0,1].
func RankFallback(
	profile domain.UserProfile,
	candidates []domain.CandidateEvent,
	opts FallbackOptions,
	now time.Time,
) []domain.CandidateEvent {
	excluded := make(map[uint64]struct{}, len(opts.ExcludeEventIDs))
	for _, id := range opts.ExcludeEventIDs {
		excluded[id] = struct{}{}
	}

	out := make([]domain.CandidateEvent, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		out = append(out, c)
	}

	if opts.PopularityOnly {
		maxSignups := 1
		for _, c := range out {
			if c.SignupCount > maxSignups {
				maxSignups = c.SignupCount
			}
		}
		for i := range out {
			out[i].SimilarityScore = clamp01(popularityScore(out[i].Event, maxSignups, now))
		}
	} else {
		interests := toSet(profile.Interests)
		for i := range out {
			out[i].SimilarityScore = clamp01(personalizedScore(out[i].Event, interests, profile.SignupInterestWeights, now))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})

	return out
}

func popularityScore(e domain.Event, maxSignups int, now time.Time) float64 {
	score := float64(e.SignupCount) / float64(maxSignups) * popWeightPopularity
	score += popRecencyTiers.score(daysBetween(now, e.StartDate))
	score += capacityAvailability(e.Capacity, e.SignupCount, popWeightCapacity)
	return score
}

func personalizedScore(e domain.Event, interests map[string]struct{}, weights map[string]float64, now time.Time) float64 {
	score := overlapRatio(interests, e.Interests) * persWeightInterest

	if len(weights) > 0 && len(e.Interests) > 0 {
		score += min(affinitySum(weights, e.Interests)*persWeightAffinity, persWeightAffinity)
	}

	score += persRecencyTiers.score(daysBetween(now, e.StartDate))
	score += capacityAvailability(e.Capacity, e.SignupCount, persWeightCapacity)

	nudgeCap := persNudgeDefaultCap
	if e.Capacity != nil {
		nudgeCap = *e.Capacity
	}
	if e.SignupCount > 0 && e.SignupCount < nudgeCap {
		score += min(float64(e.SignupCount)/persNudgeDivisor, persNudgeCap)
	}

	return score
}
