package recommend

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"strings"
	"time"
)

// rankSemantic embeds the profile text and ranks the nearest events. Scores
// are scaled by SemanticScale. Any provider failure is returned wrapped in
// domain.ErrProvider and the chain moves on.
func (s *Service) rankSemantic(ctx context.Context, profile domain.UserProfile, now time.Time) ([]domain.CandidateEvent, error) {
	text := ProfileText(profile, s.cfg.ProfileTextItems)
	if text == "" {
		return nil, nil
	}

	// one bounded attempt; fallback is the retry strategy
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	vector, err := s.embedder.Embed(callCtx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed profile: %w", domain.ErrProvider, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedding provider returned no vector", domain.ErrProvider)
	}

	rows, err := s.loadVectorCandidates(callCtx, vector, profile, now)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].SimilarityScore *= s.cfg.SemanticScale
	}

	return rows, nil
}

// ProfileText renders the profile as the natural-language query that gets embedded.
func ProfileText(p domain.UserProfile, maxItems int) string {
	var parts []string

	if len(p.Interests) > 0 {
		parts = append(parts, "Interested in "+strings.Join(p.Interests, ", "))
	}
	if p.Role != "" {
		parts = append(parts, "Role: "+p.Role)
	}
	if topics := firstN(p.PastSignupInterests, maxItems); len(topics) > 0 {
		parts = append(parts, "Recently signed up for events about "+strings.Join(topics, ", "))
	}

	queries := make([]string, 0, len(p.RecentSearches))
	for _, s := range p.RecentSearches {
		queries = append(queries, s.Query)
	}
	if q := lastN(queries, maxItems); len(q) > 0 {
		parts = append(parts, "Recently searched for "+strings.Join(q, ", "))
	}

	var titles []string
	seen := map[string]struct{}{}
	for i := len(p.RecentViews) - 1; i >= 0 && len(titles) < maxItems; i-- {
		t := p.RecentViews[i].EventTitle
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	if len(titles) > 0 {
		// back to oldest first
		for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
			titles[i], titles[j] = titles[j], titles[i]
		}
		parts = append(parts, "Recently viewed "+strings.Join(titles, ", "))
	}

	if len(p.PositiveReviewTopics) > 0 {
		parts = append(parts, "Enjoyed events about "+strings.Join(p.PositiveReviewTopics, ", "))
	}
	if len(p.NegativeReviewTopics) > 0 {
		parts = append(parts, "Disliked events about "+strings.Join(p.NegativeReviewTopics, ", "))
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

func lastN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
