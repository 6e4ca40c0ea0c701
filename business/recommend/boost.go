package recommend

import (
	"campusEvents/domain"
	"sort"
	"strings"
	"time"
)

const (
	boostInterestMax  = 0.10
	boostAffinityMax  = 0.10
	boostOrganiser    = 0.02
	boostSearchWeight = 0.05
	boostViewWeight   = 0.03
)

// ApplyBoosts adds the post-hoc signals to each event's base score, clamps,
// strips embeddings and re-sorts. The input slice is not modified.
func ApplyBoosts(events []domain.CandidateEvent, profile domain.UserProfile, now time.Time) []domain.ScoredEvent {
	interests := toSet(profile.Interests)
	organisers := signedUpOrganisers(events, profile)

	out := make([]domain.ScoredEvent, 0, len(events))
	for _, c := range events {
		score := c.SimilarityScore
		score += interestBoost(interests, c.Interests)
		score += affinityBoost(profile.SignupInterestWeights, c.Interests)
		if _, ok := organisers[c.OrganiserID]; ok {
			score += boostOrganiser
		}
		score += searchBoost(profile.RecentSearches, c.Event, now)
		score += viewBoost(profile.RecentViews, c.ID, now)
		score = clamp01(score)

		ev := c.Event
		ev.Embedding = nil

		out = append(out, domain.ScoredEvent{
			Event:           ev,
			SimilarityScore: score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})

	for i := range out {
		out[i].SimilarityPercentage = percentage(out[i].SimilarityScore)
		out[i].IsSignedUp = profile.IsSignedUp(out[i].ID)
	}

	return out
}

func interestBoost(user map[string]struct{}, eventInterests []string) float64 {
	return min(overlapRatio(user, eventInterests)*boostInterestMax, boostInterestMax)
}

func affinityBoost(weights map[string]float64, eventInterests []string) float64 {
	if len(weights) == 0 || len(eventInterests) == 0 {
		return 0
	}
	return min(affinitySum(weights, eventInterests)*boostAffinityMax, boostAffinityMax)
}

// signedUpOrganisers collects organisers of the events in this list that the
// user signed up for. Only the current candidates are scanned, so an
// organiser whose past event is not among them earns no boost.
func signedUpOrganisers(events []domain.CandidateEvent, profile domain.UserProfile) map[uint]struct{} {
	out := map[uint]struct{}{}
	for _, c := range events {
		if c.OrganiserID == 0 {
			continue
		}
		if profile.IsSignedUp(c.ID) {
			out[c.OrganiserID] = struct{}{}
		}
	}
	return out
}

// searchBoost walks searches oldest to newest and decays on the first query
// contained in the event text.
func searchBoost(searches []domain.SearchEntry, e domain.Event, now time.Time) float64 {
	if len(searches) == 0 {
		return 0
	}

	haystack := strings.ToLower(e.Title + " " + e.Description + " " + strings.Join(e.Interests, " "))
	for _, s := range searches {
		q := strings.ToLower(strings.TrimSpace(s.Query))
		if q == "" {
			continue
		}
		if strings.Contains(haystack, q) {
			return recencyDecay(boostSearchWeight, daysBetween(s.Timestamp, now))
		}
	}
	return 0
}

func viewBoost(views []domain.ViewEntry, eventID uint64, now time.Time) float64 {
	for _, v := range views {
		if v.EventID == eventID {
			return recencyDecay(boostViewWeight, daysBetween(v.Timestamp, now))
		}
	}
	return 0
}
