package qdrant

import (
	"bytes"
	"campusEvents/domain"
	"campusEvents/pkg/metrics"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const maxErrorBodyBytes = 512

type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorDim  int
	Timeout    time.Duration
}

// VectorStore keeps one point per event in a Qdrant collection. The point id
// is the event id and the payload carries the fields the search filter needs.
type VectorStore struct {
	baseURL    string
	apiKey     string
	collection string
	dim        int
	http       *http.Client
}

func NewVectorStore(cfg Config) *VectorStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "events"
	}
	return &VectorStore{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dim:        cfg.VectorDim,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type searchResultItem struct {
	ID    uint64  `json:"id"`
	Score float64 `json:"score"`
}

// EnsureCollection creates the collection with cosine distance when it does
// not exist yet.
func (s *VectorStore) EnsureCollection(ctx context.Context) error {
	const op = "ensure_collection"

	err := s.doJSON(ctx, op, http.MethodGet, s.collectionPath(""), nil, nil)
	if err == nil {
		return nil
	}
	var se *statusError
	if !errors.As(err, &se) || se.code != http.StatusNotFound {
		return err
	}
	if s.dim <= 0 {
		return fmt.Errorf("qdrant %s: vector dimension is required to create collection %q", op, s.collection)
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.dim,
			"distance": "Cosine",
		},
	}
	return s.doJSON(ctx, op, http.MethodPut, s.collectionPath(""), req, nil)
}

// Upsert writes or replaces the event's point. Events without an embedding
// are skipped.
func (s *VectorStore) Upsert(ctx context.Context, e domain.Event) error {
	const op = "upsert"
	if len(e.Embedding) == 0 {
		return nil
	}
	if e.ID == 0 {
		return fmt.Errorf("qdrant %s: %w: event id is required", op, domain.ErrValidation)
	}
	if s.dim > 0 && len(e.Embedding) != s.dim {
		return fmt.Errorf("qdrant %s: %w: event %d dimension mismatch: expected=%d got=%d",
			op, domain.ErrValidation, e.ID, s.dim, len(e.Embedding))
	}

	req := map[string]any{
		"points": []map[string]any{{
			"id":     e.ID,
			"vector": []float32(e.Embedding),
			"payload": map[string]any{
				"start_date":   e.StartDate.Unix(),
				"signups_open": e.SignupsOpen,
			},
		}},
	}
	return s.doJSON(ctx, op, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil)
}

func (s *VectorStore) Delete(ctx context.Context, id uint64) error {
	const op = "delete"
	req := map[string]any{"points": []uint64{id}}
	return s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/delete?wait=true"), req, nil)
}

// Search runs an HNSW search with ef set to numCandidates and returns matches
// scored in [0,1], best first.
func (s *VectorStore) Search(
	ctx context.Context,
	vector []float32,
	numCandidates, limit int,
	filter domain.VectorFilter,
) ([]domain.VectorMatch, error) {
	const op = "search"
	if len(vector) == 0 {
		return nil, fmt.Errorf("qdrant %s: %w: query vector required", op, domain.ErrValidation)
	}
	if limit <= 0 {
		return []domain.VectorMatch{}, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": false,
		"with_vector":  false,
	}
	if numCandidates > 0 {
		req["params"] = map[string]any{"hnsw_ef": numCandidates}
	}
	if f := buildFilter(filter); f != nil {
		req["filter"] = f
	}

	var raw []searchResultItem
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/search"), req, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.VectorMatch, 0, len(raw))
	for _, item := range raw {
		if item.ID == 0 {
			continue
		}
		out = append(out, domain.VectorMatch{EventID: item.ID, Score: normalizeScore(item.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].EventID < out[j].EventID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func buildFilter(f domain.VectorFilter) map[string]any {
	var must []map[string]any
	if f.SignupsOpenOnly {
		must = append(must, map[string]any{
			"key":   "signups_open",
			"match": map[string]any{"value": true},
		})
	}
	if !f.StartAfter.IsZero() {
		must = append(must, map[string]any{
			"key":   "start_date",
			"range": map[string]any{"gt": f.StartAfter.Unix()},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

// normalizeScore maps cosine similarity from [-1,1] to [0,1].
func normalizeScore(score float64) float64 {
	v := (1 + score) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (s *VectorStore) collectionPath(suffix string) string {
	return "/collections/" + s.collection + suffix
}

type statusError struct {
	op   string
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s: http status=%d body=%q", e.op, e.code, e.body)
}

func (s *VectorStore) doJSON(ctx context.Context, op, method, path string, in any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("qdrant", op, s.collection, start, err)
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("qdrant %s: encode request failed: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("qdrant %s: build request failed: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("qdrant %s: read response failed: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{op: op, code: resp.StatusCode, body: truncateBody(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("qdrant %s: decode envelope failed: %w", op, err)
	}
	if msg := parseEnvelopeStatus(env.Status); msg != "" {
		return fmt.Errorf("qdrant %s: %s", op, msg)
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("qdrant %s: decode result failed: %w", op, err)
	}
	return nil
}

// parseEnvelopeStatus returns an error message for a non-ok status. Qdrant
// sends either the string "ok" or an object with an error field.
func parseEnvelopeStatus(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if strings.EqualFold(str, "ok") || str == "" {
			return ""
		}
		return "status=" + str
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Error != "" {
		return obj.Error
	}
	return ""
}

func truncateBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
