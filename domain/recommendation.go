package domain

import "time"

type RecommendationType string

const (
	RecommendationPersonalizedVector RecommendationType = "personalized_vector"
	RecommendationPersonalized       RecommendationType = "personalized"
	RecommendationPopular            RecommendationType = "popular"
)

type SearchEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

type ViewEntry struct {
	EventID    uint64    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserProfile is the per-request ranking context. It is rebuilt on every
// recommendation call and never cached.
type UserProfile struct {
	ID        uint
	Interests []string
	Role      string

	// PastSignupInterests is ordered by descending frequency.
	PastSignupInterests   []string
	SignupInterestWeights map[string]float64

	// Oldest first: the most recent entry is last.
	RecentSearches []SearchEntry
	RecentViews    []ViewEntry

	PositiveReviewTopics []string
	NegativeReviewTopics []string

	// RecentSignupEventIDs are the signups inside the affinity window.
	// SignedUpEventIDs holds every signup and drives exclusion, isSignedUp
	// and the behaviour signal.
	RecentSignupEventIDs []uint64
	SignedUpEventIDs     map[uint64]struct{}

	// ExcludedEventIDs are skipped by the candidate sources. Empty when the
	// caller asked to include events the user already signed up for.
	ExcludedEventIDs []uint64
}

func (p UserProfile) HasInterests() bool {
	return len(p.Interests) > 0
}

func (p UserProfile) HasBehaviour() bool {
	return len(p.RecentSearches) > 0 || len(p.RecentViews) > 0 || len(p.SignedUpEventIDs) > 0
}

func (p UserProfile) HasReviewTopics() bool {
	return len(p.PositiveReviewTopics) > 0 || len(p.NegativeReviewTopics) > 0
}

func (p UserProfile) IsSignedUp(eventID uint64) bool {
	_, ok := p.SignedUpEventIDs[eventID]
	return ok
}

type ReviewInsight struct {
	PositiveTopics map[string]float64
	NegativeTopics map[string]float64
}

// CandidateEvent is an event snapshot under ranking. SimilarityScore is
// overwritten by each stage: base score, boosts, clamp.
type CandidateEvent struct {
	Event
	SimilarityScore float64 `json:"similarityScore"`
}

type ScoredEvent struct {
	Event
	SimilarityScore      float64 `json:"similarityScore"`
	SimilarityPercentage int     `json:"similarityPercentage"`
	IsSignedUp           bool    `json:"isSignedUp"`
}

type RecommendationResult struct {
	Events             []ScoredEvent      `json:"events"`
	RecommendationType RecommendationType `json:"recommendationType"`
}

// VectorFilter restricts a nearest-neighbour search.
type VectorFilter struct {
	StartAfter      time.Time
	SignupsOpenOnly bool
}

type VectorMatch struct {
	EventID uint64
	Score   float64
}
