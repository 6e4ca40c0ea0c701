//go:build !integration

package recommend

import (
	"campusEvents/domain"
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysFromNow(d float64) time.Time {
	return fixedNow.Add(time.Duration(d * 24 * float64(time.Hour)))
}

func intPtr(v int) *int { return &v }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

type stubUserRepo struct {
	users map[uint]domain.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

type stubSignupRepo struct {
	signups []domain.Signup
}

func (r *stubSignupRepo) FindByUser(_ context.Context, userID uint) ([]domain.Signup, error) {
	var out []domain.Signup
	for _, s := range r.signups {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubHistoryRepo struct {
	searches []domain.SearchHistory
	views    []domain.ViewHistory
	err      error
}

func (r *stubHistoryRepo) RecentSearches(_ context.Context, userID uint, limit int) ([]domain.SearchHistory, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.SearchHistory
	for _, s := range r.searches {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubHistoryRepo) RecentViews(_ context.Context, userID uint, limit int) ([]domain.ViewHistory, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.ViewHistory
	for _, v := range r.views {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubReviewRepo struct {
	reviews []domain.ReviewWithEvent
}

func (r *stubReviewRepo) FindByUserWithEvents(_ context.Context, userID uint) ([]domain.ReviewWithEvent, error) {
	var out []domain.ReviewWithEvent
	for _, rv := range r.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type stubEventRepo struct {
	events      []domain.Event
	upcomingErr error
}

func (r *stubEventRepo) FindByIDs(_ context.Context, ids []uint64) ([]domain.Event, error) {
	want := map[uint64]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Event
	for _, e := range r.events {
		if _, ok := want[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubEventRepo) FindUpcoming(_ context.Context, now time.Time, excludeIDs []uint64, limit int) ([]domain.Event, error) {
	if r.upcomingErr != nil {
		return nil, r.upcomingErr
	}
	skip := map[uint64]struct{}{}
	for _, id := range excludeIDs {
		skip[id] = struct{}{}
	}
	var out []domain.Event
	for _, e := range r.events {
		if e.StartDate.Before(now) {
			continue
		}
		if _, ok := skip[e.ID]; ok {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
	text   string
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	e.text = text
	return e.vector, e.err
}

type stubIndex struct {
	matches []domain.VectorMatch
	err     error
	filter  domain.VectorFilter
	numCand int
	limit   int
}

func (i *stubIndex) Search(_ context.Context, _ []float32, numCandidates, limit int, filter domain.VectorFilter) ([]domain.VectorMatch, error) {
	i.filter = filter
	i.numCand = numCandidates
	i.limit = limit
	return i.matches, i.err
}

type fixture struct {
	users    *stubUserRepo
	signups  *stubSignupRepo
	history  *stubHistoryRepo
	reviews  *stubReviewRepo
	events   *stubEventRepo
	embedder *stubEmbedder
	index    *stubIndex
}

func newFixture() *fixture {
	return &fixture{
		users:   &stubUserRepo{users: map[uint]domain.User{}},
		signups: &stubSignupRepo{},
		history: &stubHistoryRepo{},
		reviews: &stubReviewRepo{},
		events:  &stubEventRepo{},
	}
}

func (f *fixture) service() *Service {
	var (
		emb Embedder
		idx VectorIndex
	)
	if f.embedder != nil {
		emb = f.embedder
	}
	if f.index != nil {
		idx = f.index
	}
	svc := NewService(f.users, f.signups, f.history, f.reviews, f.events, emb, idx, DefaultConfig())
	svc.now = func() time.Time { return fixedNow }
	return svc
}
