package recommend

import (
	"campusEvents/domain"
	"sort"
)

const (
	positiveRatingMin = 4
	negativeRatingMax = 2
)

// ExtractInsights turns a user's ratings into weighted topic sets. A rating r
// of 4 or 5 weighs r/5, a rating of 1 or 2 weighs (3-r)/2, rating 3 is
// neutral. A topic seen in several reviews keeps its highest weight.
func ExtractInsights(reviews []domain.ReviewWithEvent) domain.ReviewInsight {
	insight := domain.ReviewInsight{
		PositiveTopics: map[string]float64{},
		NegativeTopics: map[string]float64{},
	}

	for _, r := range reviews {
		if len(r.EventInterests) == 0 {
			continue
		}

		var (
			target map[string]float64
			weight float64
		)
		switch {
		case r.Rating >= positiveRatingMin:
			target = insight.PositiveTopics
			weight = float64(r.Rating) / 5
		case r.Rating <= negativeRatingMax:
			target = insight.NegativeTopics
			weight = float64(3-r.Rating) / 2
		default:
			continue
		}

		for _, tag := range r.EventInterests {
			if tag == "" {
				continue
			}
			if weight > target[tag] {
				target[tag] = weight
			}
		}
	}

	return insight
}

// topicsByWeight lists topics strongest first, ties broken by name.
func topicsByWeight(topics map[string]float64) []string {
	out := make([]string, 0, len(topics))
	for t := range topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if topics[out[i]] == topics[out[j]] {
			return out[i] < out[j]
		}
		return topics[out[i]] > topics[out[j]]
	})
	return out
}
