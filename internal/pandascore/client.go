package pandascore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Marcos5333/BotHltv/internal/match"
	"github.com/Marcos5333/BotHltv/internal/metrics"
	"github.com/charmbracelet/log"
)

var _ Provider = (*Client)(nil)

// EndpointError lists the listing endpoints that failed during one ListMatches call.
type EndpointError struct {
	Failed map[string]error
}

func (e *EndpointError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, ep := range listEndpoints {
		if err, ok := e.Failed[ep]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", ep, err))
		}
	}
	return "pandascore endpoints failed: " + strings.Join(parts, "; ")
}

// Has reports whether endpoint is among the failures.
func (e *EndpointError) Has(endpoint string) bool {
	_, ok := e.Failed[endpoint]
	return ok
}

func (e *EndpointError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithDiscipline(d string) Option {
	return func(c *Client) { c.discipline = d }
}

// WithHTTPClient replaces the underlying client, e.g. with an httptest server's.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

var warnNoCredential sync.Once

// NewClient creates a PandaScore client. An empty token yields a client that
// always returns no data.
func NewClient(token string, m metrics.Metrics, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
		discipline: "counter",
		metrics:    m,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListMatches(ctx context.Context) ([]match.Match, error) {
	if c.token == "" {
		warnNoCredential.Do(func() {
			log.Warn("PANDASCORE_KEY is not set, match lists will be empty")
		})
		return nil, nil
	}

	var (
		out    []match.Match
		failed = map[string]error{}
	)
	for _, ep := range listEndpoints {
		var page []apiMatch
		if err := c.getJSON(ctx, ep, &page); err != nil {
			log.Warn("PandaScore endpoint failed", "endpoint", ep, "error", err)
			c.metrics.IncProviderErrors(ep)
			failed[ep] = err
			continue
		}
		for _, am := range page {
			if am.inDiscipline(c.discipline) {
				out = append(out, am.toMatch())
			}
		}
	}
	log.Debug("Fetched matches", "count", len(out), "failedEndpoints", len(failed))
	if len(failed) > 0 {
		return out, &EndpointError{Failed: failed}
	}
	return out, nil
}

func (c *Client) LatestRound(ctx context.Context, matchID string) (*match.GameRound, error) {
	if c.token == "" || matchID == "" {
		return nil, nil
	}
	var games []apiGame
	if err := c.getJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/games", &games); err != nil {
		c.metrics.IncProviderErrors("/matches/{id}/games")
		return nil, fmt.Errorf("failed to fetch games for match %s: %w", matchID, err)
	}
	g := pickGame(games)
	if g == nil {
		return nil, nil
	}
	return g.toRound(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
