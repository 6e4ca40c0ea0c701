//go:build !integration

package embedding

import (
	"campusEvents/domain"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestEmbed_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 1 || req.Input[0] != "Interested in music." {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,-0.25,1]}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "key", Model: "test-model"})

	got, err := c.Embed(context.Background(), "Interested in music.")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 || got[0] != 0.5 || got[1] != -0.25 {
		t.Fatalf("vector = %v", got)
	}
}

func TestEmbed_ErrorsAreProviderErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":`))
		},
		"no vector": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}).Embed(context.Background(), "x")
			if !errors.Is(err, domain.ErrProvider) {
				t.Fatalf("expected ErrProvider, got %v", err)
			}
		})
	}
}

func TestEmbed_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", FailureThreshold: 2})

	for i := 0; i < 4; i++ {
		if _, err := c.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrProvider) {
			t.Fatalf("call %d: expected ErrProvider, got %v", i, err)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hit %d times, want 2 before the breaker opened", got)
	}
}

func TestEmbed_TimeoutIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Embed(ctx, "x"); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}
