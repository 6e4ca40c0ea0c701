//go:build !integration

package event

import (
	"campusEvents/domain"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memEventRepo struct {
	events     map[uint64]domain.Event
	nextID     uint64
	embeddings map[uint64][]float32
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[uint64]domain.Event{}, embeddings: map[uint64][]float32{}}
}

func (r *memEventRepo) Create(_ context.Context, e *domain.Event) error {
	r.nextID++
	e.ID = r.nextID
	r.events[e.ID] = *e
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uint64) (domain.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("event %d: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

func (r *memEventRepo) FindUpcoming(_ context.Context, now time.Time, _ []uint64, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range r.events {
		if e.StartDate.After(now) {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memEventRepo) Search(_ context.Context, query string, now time.Time, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range r.events {
		if e.StartDate.After(now) && strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(_ context.Context, e *domain.Event) error {
	if _, ok := r.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r *memEventRepo) UpdateEmbedding(_ context.Context, id uint64, v []float32) error {
	r.embeddings[id] = v
	e := r.events[id]
	e.Embedding = v
	r.events[id] = e
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, id uint64) error {
	delete(r.events, id)
	return nil
}

type stubEmbedder struct {
	err   error
	texts []string
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2}, nil
}

type stubIndex struct {
	upserted []domain.Event
	deleted  []uint64
}

func (i *stubIndex) Upsert(_ context.Context, e domain.Event) error {
	i.upserted = append(i.upserted, e)
	return nil
}

func (i *stubIndex) Delete(_ context.Context, id uint64) error {
	i.deleted = append(i.deleted, id)
	return nil
}

type stubHistory struct {
	searches []string
	views    []uint64
}

func (h *stubHistory) RecordSearch(_ context.Context, _ uint, q string) error {
	h.searches = append(h.searches, q)
	return nil
}

func (h *stubHistory) RecordView(_ context.Context, _ uint, id uint64) error {
	h.views = append(h.views, id)
	return nil
}

var organiser = Actor{UserID: 10, Role: domain.RoleOrganiser}

func validEvent() *domain.Event {
	return &domain.Event{
		Title:     "  Jazz Night ",
		StartDate: fixedNow.Add(72 * time.Hour),
		Interests: []string{"Music", "music", " jazz "},
	}
}

func TestCreateEvent_NormalisesAndIndexes(t *testing.T) {
	repo := newMemEventRepo()
	emb := &stubEmbedder{}
	idx := &stubIndex{}
	svc := NewEventService(repo, emb, idx, nil)

	got, err := svc.CreateEvent(context.Background(), organiser, validEvent())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if got.Title != "Jazz Night" || got.OrganiserID != 10 {
		t.Fatalf("event = %+v", got)
	}
	if !reflect.DeepEqual([]string(got.Interests), []string{"music", "jazz"}) {
		t.Fatalf("interests = %v", got.Interests)
	}
	if got.Embedding != nil {
		t.Fatal("embedding leaked into the response")
	}
	if len(repo.embeddings[got.ID]) != 2 {
		t.Fatal("embedding was not stored on the row")
	}
	if len(idx.upserted) != 1 || len(idx.upserted[0].Embedding) != 2 {
		t.Fatalf("index upserts = %+v", idx.upserted)
	}
	if !strings.Contains(emb.texts[0], "Topics: music, jazz") {
		t.Fatalf("embedding text = %q", emb.texts[0])
	}
}

func TestCreateEvent_EmbeddingFailureDoesNotFailWrite(t *testing.T) {
	repo := newMemEventRepo()
	idx := &stubIndex{}
	svc := NewEventService(repo, &stubEmbedder{err: errors.New("timeout")}, idx, nil)

	got, err := svc.CreateEvent(context.Background(), organiser, validEvent())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if _, ok := repo.events[got.ID]; !ok {
		t.Fatal("event not stored")
	}
	if len(idx.upserted) != 0 {
		t.Fatal("index should not be touched without an embedding")
	}
}

func TestCreateEvent_Rules(t *testing.T) {
	svc := NewEventService(newMemEventRepo(), nil, nil, nil)

	if _, err := svc.CreateEvent(context.Background(), Actor{UserID: 1, Role: domain.RoleStudent}, validEvent()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("student create: expected ErrForbidden, got %v", err)
	}

	bad := validEvent()
	bad.Title = " "
	if _, err := svc.CreateEvent(context.Background(), organiser, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty title: expected ErrValidation, got %v", err)
	}

	bad = validEvent()
	bad.EndDate = bad.StartDate.Add(-time.Hour)
	if _, err := svc.CreateEvent(context.Background(), organiser, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("end before start: expected ErrValidation, got %v", err)
	}

	bad = validEvent()
	neg := -1
	bad.Capacity = &neg
	if _, err := svc.CreateEvent(context.Background(), organiser, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative capacity: expected ErrValidation, got %v", err)
	}
}

func TestUpdateEvent_Ownership(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo, nil, nil, nil)
	created, err := svc.CreateEvent(context.Background(), organiser, validEvent())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	change := validEvent()
	change.ID = created.ID
	change.Title = "Jazz Night II"

	other := Actor{UserID: 11, Role: domain.RoleOrganiser}
	if _, err := svc.UpdateEvent(context.Background(), other, change); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	admin := Actor{UserID: 1, Role: domain.RoleAdmin}
	updated, err := svc.UpdateEvent(context.Background(), admin, change)
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Title != "Jazz Night II" || updated.OrganiserID != 10 {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestDeleteEvent_RemovesFromIndex(t *testing.T) {
	repo := newMemEventRepo()
	idx := &stubIndex{}
	svc := NewEventService(repo, nil, idx, nil)
	created, _ := svc.CreateEvent(context.Background(), organiser, validEvent())

	if err := svc.DeleteEvent(context.Background(), Actor{UserID: 99, Role: domain.RoleOrganiser}, created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteEvent(context.Background(), organiser, created.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != created.ID {
		t.Fatalf("index deletes = %v", idx.deleted)
	}
	if err := svc.DeleteEvent(context.Background(), organiser, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetAndListRecordHistory(t *testing.T) {
	repo := newMemEventRepo()
	hist := &stubHistory{}
	svc := NewEventService(repo, nil, nil, hist)
	svc.now = func() time.Time { return fixedNow }
	created, _ := svc.CreateEvent(context.Background(), organiser, validEvent())

	if _, err := svc.GetEvent(context.Background(), created.ID, 0); err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if len(hist.views) != 0 {
		t.Fatal("anonymous view was recorded")
	}
	if _, err := svc.GetEvent(context.Background(), created.ID, 5); err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if len(hist.views) != 1 {
		t.Fatalf("views = %v", hist.views)
	}

	got, err := svc.ListEvents(context.Background(), " jazz ", 5)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("search returned %d events", len(got))
	}
	if !reflect.DeepEqual(hist.searches, []string{"jazz"}) {
		t.Fatalf("searches = %v", hist.searches)
	}

	all, err := svc.ListEvents(context.Background(), "", 5)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListEvents all = %v, %v", all, err)
	}
	if len(hist.searches) != 1 {
		t.Fatal("empty query was recorded as a search")
	}
}
