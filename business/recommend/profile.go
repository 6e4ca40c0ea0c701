package recommend

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// BuildProfile aggregates interests, recent signups, search and view history
// and review sentiment into a ranking context. The independent reads run
// concurrently; the user lookup runs first so a missing user fails fast.
func (s *Service) BuildProfile(ctx context.Context, userID uint, includeSignedUp bool) (domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProfile{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	cutoff := now.AddDate(0, -s.cfg.SignupWindowMonths, 0)

	profile := domain.UserProfile{
		ID:        user.ID,
		Interests: distinct(user.Interests),
		Role:      user.Role,
	}

	var (
		signups  []domain.Signup
		affinity Affinity
		searches []domain.SearchHistory
		views    []domain.ViewHistory
		titles   map[uint64]string
		reviews  []domain.ReviewWithEvent
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		signups, err = s.signupRepo.FindByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load signups: %w", err)
		}

		recent := make([]uint64, 0, len(signups))
		for _, su := range signups {
			if !su.CreatedAt.Before(cutoff) {
				recent = append(recent, su.EventID)
			}
		}
		profile.RecentSignupEventIDs = recent

		affinity, err = s.BuildAffinity(gctx, recent)
		return err
	})

	g.Go(func() error {
		var err error
		searches, err = s.historyRepo.RecentSearches(gctx, userID, s.cfg.SearchLookback)
		if err != nil {
			return fmt.Errorf("load search history: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		views, err = s.historyRepo.RecentViews(gctx, userID, s.cfg.ViewLookback)
		if err != nil {
			return fmt.Errorf("load view history: %w", err)
		}
		if len(views) == 0 {
			return nil
		}

		ids := make([]uint64, 0, len(views))
		for _, v := range views {
			ids = append(ids, v.EventID)
		}
		events, err := s.eventRepo.FindByIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("load viewed events: %w", err)
		}
		titles = make(map[uint64]string, len(events))
		for _, e := range events {
			titles[e.ID] = e.Title
		}
		return nil
	})

	g.Go(func() error {
		var err error
		reviews, err = s.reviewRepo.FindByUserWithEvents(gctx, userID)
		if err != nil {
			return fmt.Errorf("load reviews: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.UserProfile{}, err
	}

	profile.PastSignupInterests = affinity.OrderedList
	profile.SignupInterestWeights = affinity.Weights

	profile.SignedUpEventIDs = make(map[uint64]struct{}, len(signups))
	for _, su := range signups {
		profile.SignedUpEventIDs[su.EventID] = struct{}{}
	}
	if !includeSignedUp {
		profile.ExcludedEventIDs = make([]uint64, 0, len(profile.SignedUpEventIDs))
		for id := range profile.SignedUpEventIDs {
			profile.ExcludedEventIDs = append(profile.ExcludedEventIDs, id)
		}
		sort.Slice(profile.ExcludedEventIDs, func(i, j int) bool {
			return profile.ExcludedEventIDs[i] < profile.ExcludedEventIDs[j]
		})
	}

	profile.RecentSearches = make([]domain.SearchEntry, 0, len(searches))
	for _, h := range searches {
		q := strings.TrimSpace(h.Query)
		if q == "" {
			continue
		}
		profile.RecentSearches = append(profile.RecentSearches, domain.SearchEntry{Query: q, Timestamp: h.CreatedAt})
	}
	sort.SliceStable(profile.RecentSearches, func(i, j int) bool {
		return profile.RecentSearches[i].Timestamp.Before(profile.RecentSearches[j].Timestamp)
	})

	profile.RecentViews = make([]domain.ViewEntry, 0, len(views))
	for _, v := range views {
		profile.RecentViews = append(profile.RecentViews, domain.ViewEntry{
			EventID:    v.EventID,
			EventTitle: titles[v.EventID],
			Timestamp:  v.CreatedAt,
		})
	}
	sort.SliceStable(profile.RecentViews, func(i, j int) bool {
		return profile.RecentViews[i].Timestamp.Before(profile.RecentViews[j].Timestamp)
	})

	insight := ExtractInsights(reviews)
	profile.PositiveReviewTopics = topicsByWeight(insight.PositiveTopics)
	profile.NegativeReviewTopics = topicsByWeight(insight.NegativeTopics)

	return profile, nil
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
