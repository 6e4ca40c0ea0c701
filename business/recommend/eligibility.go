package recommend

import "campusEvents/domain"

// eligibility decides whether a strategy may run for a profile.
type eligibility func(profile domain.UserProfile) bool

// hasAnySignal: declared interests, any search/view/signup history, or review topics.
func hasAnySignal(p domain.UserProfile) bool {
	return p.HasInterests() || p.HasBehaviour() || p.HasReviewTopics()
}

// semanticEligible needs a configured embedder and index plus some signal to embed.
func (s *Service) semanticEligible(p domain.UserProfile) bool {
	return s.embedder != nil && s.index != nil && hasAnySignal(p)
}

// personalizedEligible mirrors the fallback mode switch: interests or behaviour.
// Review topics alone do not personalise the rule-based ranking.
func personalizedEligible(p domain.UserProfile) bool {
	return p.HasInterests() || p.HasBehaviour()
}

func alwaysEligible(domain.UserProfile) bool {
	return true
}
