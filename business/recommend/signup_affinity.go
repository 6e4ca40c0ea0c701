package recommend

import (
	"context"
	"fmt"
	"sort"
)

type Affinity struct {
	Weights     map[string]float64
	OrderedList []string
}

// BuildAffinity counts interest tags across the given events and normalises
// against the most frequent tag, which always ends up with weight 1.0.
func (s *Service) BuildAffinity(ctx context.Context, eventIDs []uint64) (Affinity, error) {
	if len(eventIDs) == 0 {
		return Affinity{Weights: map[string]float64{}, OrderedList: []string{}}, nil
	}

	events, err := s.eventRepo.FindByIDs(ctx, eventIDs)
	if err != nil {
		return Affinity{}, fmt.Errorf("load signup events: %w", err)
	}

	byID := make(map[uint64][]string, len(events))
	for _, e := range events {
		byID[e.ID] = e.Interests
	}

	tags := make([][]string, 0, len(eventIDs))
	for _, id := range eventIDs {
		if interests, ok := byID[id]; ok {
			tags = append(tags, interests)
		}
	}

	return affinityFromTags(tags), nil
}

func affinityFromTags(perEvent [][]string) Affinity {
	counts := map[string]int{}
	order := []string{}

	for _, interests := range perEvent {
		seen := make(map[string]struct{}, len(interests))
		for _, tag := range interests {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	if len(counts) == 0 {
		return Affinity{Weights: map[string]float64{}, OrderedList: []string{}}
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	weights := make(map[string]float64, len(counts))
	for tag, c := range counts {
		weights[tag] = float64(c) / float64(maxCount)
	}

	// stable: equal counts keep first-seen order
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	return Affinity{Weights: weights, OrderedList: order}
}
