package recommend

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"time"
)

// loadFallbackCandidates is the catalog query: future events only, sorted by
// start date, capped. Full or closed events stay in the pool; capacity is a
// scoring factor here, not a filter.
func (s *Service) loadFallbackCandidates(
	ctx context.Context,
	profile domain.UserProfile,
	now time.Time,
) ([]domain.CandidateEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := s.eventRepo.FindUpcoming(ctx, now, profile.ExcludedEventIDs, s.cfg.FallbackCap)
	if err != nil {
		return nil, fmt.Errorf("load upcoming events: %w", err)
	}

	rows := make([]domain.CandidateEvent, 0, len(events))
	for _, e := range events {
		rows = append(rows, domain.CandidateEvent{Event: e})
	}

	return rows, nil
}

// loadVectorCandidates is the semantic query: nearest events to the vector
// among future events with signups open. Matches are hydrated in score order
// and events missing from the store are dropped.
func (s *Service) loadVectorCandidates(
	ctx context.Context,
	vector []float32,
	profile domain.UserProfile,
	now time.Time,
) ([]domain.CandidateEvent, error) {
	matches, err := s.index.Search(ctx, vector, s.cfg.NumCandidates, s.cfg.VectorLimit, domain.VectorFilter{
		StartAfter:      now,
		SignupsOpenOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrProvider, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	excluded := make(map[uint64]struct{}, len(profile.ExcludedEventIDs))
	for _, id := range profile.ExcludedEventIDs {
		excluded[id] = struct{}{}
	}

	ids := make([]uint64, 0, len(matches))
	for _, m := range matches {
		if _, skip := excluded[m.EventID]; skip {
			continue
		}
		ids = append(ids, m.EventID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	events, err := s.eventRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate vector matches: %w", err)
	}
	byID := make(map[uint64]domain.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	rows := make([]domain.CandidateEvent, 0, len(ids))
	for _, m := range matches {
		e, ok := byID[m.EventID]
		if !ok {
			continue
		}
		if _, skip := excluded[m.EventID]; skip {
			continue
		}
		rows = append(rows, domain.CandidateEvent{Event: e, SimilarityScore: clamp01(m.Score)})
	}

	return rows, nil
}
