// internal/websearch/client.go
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"connectorgen/internal/common/config"
	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/metrics"
)

// Backend identifiers. The meta backend is keyless and degrades to empty on
// any failure; the API backend is rate-limited and retries 429s with
// exponential backoff.
const (
	BackendMeta = "meta"
	BackendAPI  = "api"
)

const apiKeyHeader = "X-Subscription-Token"

// Client executes search queries against a configured backend. Search never
// returns an error: every failure mode degrades to an empty result list with
// a logged reason, so downstream dedup always has well-defined input.
type Client struct {
	cfg        config.WebSearchConfig
	httpClient *http.Client
	log        logger.Logger
	jitter     func() float64
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.WebSearchConfig, log logger.Logger) *Client {
	applyPolicyDefaults(&cfg)
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Millisecond},
		log:        log,
		jitter:     rand.Float64,
		sleep:      sleepContext,
	}
}

func applyPolicyDefaults(cfg *config.WebSearchConfig) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBaseSeconds <= 0 {
		cfg.BackoffBaseSeconds = 1.0
	}
	if cfg.BackoffCapSeconds <= 0 {
		cfg.BackoffCapSeconds = 10.0
	}
	if cfg.JitterMaxSeconds < 0 {
		cfg.JitterMaxSeconds = 0.5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15000
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
}

// apiResponse mirrors the provider's JSON shape. Providers disagree on the
// link and snippet field names, so both variants are accepted.
type apiResponse struct {
	Web struct {
		Results []apiResult `json:"results"`
	} `json:"web"`
}

type apiResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
}

func (r apiResult) href() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Link
}

func (r apiResult) body() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Snippet
}

// Search runs one query against the named backend and returns at most
// maxResults normalized results (maxResults <= 0 uses the configured
// default). Unknown backends yield an empty result, logged.
func (c *Client) Search(ctx context.Context, query, backend string, maxResults int) []SearchResult {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	switch backend {
	case BackendMeta:
		return c.searchMeta(ctx, query, maxResults)
	case BackendAPI:
		return c.searchAPI(ctx, query, maxResults)
	default:
		c.log.Warn("Unknown search backend", map[string]interface{}{
			"backend": backend,
			"query":   query,
		})
		metrics.SearchRequests.WithLabelValues(backend, "unknown_backend").Inc()
		return nil
	}
}

// RunQueries executes queries sequentially in submission order, one batch
// per query. Sequential execution keeps backend load predictable and makes
// the batch order fed into Dedupe match the submission order. A cancelled
// context stops between queries, keeping already-gathered batches.
func (c *Client) RunQueries(ctx context.Context, queries []string, backend string, maxResults int) []SearchBatch {
	batches := make([]SearchBatch, 0, len(queries))
	for _, q := range queries {
		if ctx.Err() != nil {
			c.log.Warn("Discovery cancelled between queries", map[string]interface{}{
				"completed": len(batches),
				"total":     len(queries),
			})
			break
		}
		batches = append(batches, SearchBatch{
			Query:   q,
			Results: c.Search(ctx, q, backend, maxResults),
		})
	}
	return batches
}

// searchMeta delegates to the keyless aggregator endpoint. Any failure,
// network or decode, degrades to an empty result.
func (c *Client) searchMeta(ctx context.Context, query string, maxResults int) []SearchResult {
	if c.cfg.MetaBaseURL == "" {
		c.log.Warn("Meta search backend not configured", nil)
		metrics.SearchRequests.WithLabelValues(BackendMeta, "unconfigured").Inc()
		return nil
	}

	req, err := c.buildRequest(ctx, c.cfg.MetaBaseURL, query, maxResults, false)
	if err != nil {
		c.logSearchFailure(BackendMeta, query, "build request", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logSearchFailure(BackendMeta, query, "request", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("Meta search returned non-2xx", map[string]interface{}{
			"query":  query,
			"status": resp.StatusCode,
		})
		metrics.SearchRequests.WithLabelValues(BackendMeta, "http_error").Inc()
		return nil
	}

	results, err := decodeResults(resp, maxResults, BackendMeta)
	if err != nil {
		c.logSearchFailure(BackendMeta, query, "decode", err)
		return nil
	}
	metrics.SearchRequests.WithLabelValues(BackendMeta, "ok").Inc()
	return results
}

// searchAPI issues a GET against the rate-limited keyed backend. HTTP 429 is
// retried up to MaxRetries attempts with exponential backoff, honoring a
// Retry-After header when the response carries one. Exhausted retries, any
// other non-2xx status, and decode failures all yield an empty result.
func (c *Client) searchAPI(ctx context.Context, query string, maxResults int) []SearchResult {
	if c.cfg.APIKey == "" {
		c.log.Error("Search API key not configured", map[string]interface{}{"query": query})
		metrics.SearchRequests.WithLabelValues(BackendAPI, "missing_credentials").Inc()
		return nil
	}

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := c.buildRequest(ctx, c.cfg.BaseURL, query, maxResults, true)
		if err != nil {
			c.logSearchFailure(BackendAPI, query, "build request", err)
			return nil
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logSearchFailure(BackendAPI, query, "request", err)
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			metrics.SearchRetries.WithLabelValues(BackendAPI).Inc()

			if attempt == c.cfg.MaxRetries-1 {
				break
			}
			delay := c.retryDelay(attempt, retryAfter)
			c.log.Warn("Search rate limited, backing off", map[string]interface{}{
				"query":   query,
				"attempt": attempt,
				"delayMs": delay.Milliseconds(),
			})
			if err := c.sleep(ctx, delay); err != nil {
				c.logSearchFailure(BackendAPI, query, "backoff wait", err)
				return nil
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			status := resp.StatusCode
			resp.Body.Close()
			c.log.Warn("Search returned non-2xx", map[string]interface{}{
				"query":  query,
				"status": status,
			})
			metrics.SearchRequests.WithLabelValues(BackendAPI, "http_error").Inc()
			return nil
		}

		results, err := decodeResults(resp, maxResults, BackendAPI)
		resp.Body.Close()
		if err != nil {
			c.logSearchFailure(BackendAPI, query, "decode", err)
			return nil
		}
		metrics.SearchRequests.WithLabelValues(BackendAPI, "ok").Inc()
		return results
	}

	c.log.Error("Search retries exhausted", map[string]interface{}{
		"query":      query,
		"maxRetries": c.cfg.MaxRetries,
	})
	metrics.SearchRequests.WithLabelValues(BackendAPI, "rate_limited").Inc()
	return nil
}

func (c *Client) buildRequest(ctx context.Context, baseURL, query string, maxResults int, keyed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}
	if c.cfg.SafeSearch != "" {
		params.Set("safesearch", c.cfg.SafeSearch)
	}
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Accept", "application/json")
	if keyed {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}
	return req, nil
}

func decodeResults(resp *http.Response, maxResults int, backend string) ([]SearchResult, error) {
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	raw := body.Web.Results
	if len(raw) > maxResults {
		raw = raw[:maxResults]
	}

	results := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, SearchResult{
			Title:   r.Title,
			Href:    r.href(),
			Body:    r.body(),
			Backend: backend,
		})
	}
	return results, nil
}

// retryDelay computes the wait before the next attempt: the Retry-After
// header when it parses as a non-negative float of seconds, otherwise
// min(base * 2^attempt, cap), plus uniform jitter in [0, jitterMax].
func (c *Client) retryDelay(attempt int, retryAfter string) time.Duration {
	seconds := -1.0
	if retryAfter != "" {
		if parsed, err := strconv.ParseFloat(retryAfter, 64); err == nil && parsed >= 0 {
			seconds = parsed
		}
	}
	if seconds < 0 {
		seconds = backoffSeconds(attempt, c.cfg.BackoffBaseSeconds, c.cfg.BackoffCapSeconds)
	}
	seconds += c.jitter() * c.cfg.JitterMaxSeconds
	return time.Duration(seconds * float64(time.Second))
}

// backoffSeconds is the exponential schedule min(base * 2^attempt, cap),
// before jitter.
func backoffSeconds(attempt int, base, capSeconds float64) float64 {
	delay := base * float64(uint(1)<<uint(attempt))
	if delay > capSeconds || delay <= 0 {
		return capSeconds
	}
	return delay
}

func (c *Client) logSearchFailure(backend, query, stage string, err error) {
	c.log.WithError(err).Error("Search failed", map[string]interface{}{
		"backend": backend,
		"query":   query,
		"stage":   stage,
	})
	metrics.SearchRequests.WithLabelValues(backend, "error").Inc()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
