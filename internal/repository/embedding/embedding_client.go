package embedding

import (
	"bytes"
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32
}

// Client talks to an OpenAI-compatible /v1/embeddings endpoint. Calls are
// rate limited and guarded by a circuit breaker; every failure comes back
// wrapped in domain.ErrProvider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]float32]
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a provider fault
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ObserveNetworkRequest("embedding", "embed", c.cfg.Model, start, err)
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrProvider, err)
	}

	vector, err := c.breaker.Execute(func() ([]float32, error) {
		return c.do(ctx, text)
	})
	metrics.ObserveNetworkRequest("embedding", "embed", c.cfg.Model, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}

	return vector, nil
}

func (c *Client) do(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embedRequest{Model: c.cfg.Model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("embedding provider returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out embedResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	for _, d := range out.Data {
		if d.Index == 0 && len(d.Embedding) > 0 {
			return d.Embedding, nil
		}
	}
	return nil, errors.New("embedding response has no vector")
}
