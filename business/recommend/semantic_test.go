//go:build !integration

package recommend

import (
	"campusEvents/domain"
	"testing"
	"time"
)

func TestProfileText_FullProfile(t *testing.T) {
	p := domain.UserProfile{
		Interests:           []string{"music", "tech"},
		Role:                "student",
		PastSignupInterests: []string{"music", "art"},
		RecentSearches: []domain.SearchEntry{
			{Query: "jazz"}, {Query: "robots"},
		},
		RecentViews: []domain.ViewEntry{
			{EventID: 1, EventTitle: "Jazz Night"},
			{EventID: 2, EventTitle: "Hack Day"},
			{EventID: 1, EventTitle: "Jazz Night"},
		},
		PositiveReviewTopics: []string{"art"},
		NegativeReviewTopics: []string{"sports"},
	}

	got := ProfileText(p, 5)
	want := "Interested in music, tech. Role: student. Recently signed up for events about music, art. " +
		"Recently searched for jazz, robots. Recently viewed Hack Day, Jazz Night. " +
		"Enjoyed events about art. Disliked events about sports."
	if got != want {
		t.Fatalf("ProfileText =\n%q\nwant\n%q", got, want)
	}
}

func TestProfileText_KeepsMostRecentItems(t *testing.T) {
	p := domain.UserProfile{
		RecentSearches: []domain.SearchEntry{
			{Query: "a", Timestamp: fixedNow.Add(-3 * time.Hour)},
			{Query: "b", Timestamp: fixedNow.Add(-2 * time.Hour)},
			{Query: "c", Timestamp: fixedNow.Add(-time.Hour)},
		},
	}

	if got := ProfileText(p, 2); got != "Recently searched for b, c." {
		t.Fatalf("ProfileText = %q", got)
	}
}

func TestProfileText_Empty(t *testing.T) {
	if got := ProfileText(domain.UserProfile{}, 5); got != "" {
		t.Fatalf("ProfileText = %q, want empty", got)
	}
}
