package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"geoscraper/pkg/config"
	"geoscraper/pkg/errors"
	"geoscraper/pkg/logger"
)

// Client talks to the recent search endpoint
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	userAgent   string
	maxResults  int
	logger      logger.Logger
}

// NewClient creates a search client from the API configuration
func NewClient(cfg config.TwitterConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     baseURL,
		bearerToken: cfg.BearerToken,
		userAgent:   userAgent,
		maxResults:  DefaultMaxResults,
		logger:      log,
	}
}

// SetMaxResults sets the page size, clamped to what the endpoint accepts
func (c *Client) SetMaxResults(n int) {
	c.maxResults = ClampMaxResults(n)
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// FetchPage requests one page of recent search results. An empty
// nextToken asks for the first page. Nothing is retried.
func (c *Client) FetchPage(ctx context.Context, query, nextToken string) (*Page, error) {
	url := SearchURL(c.baseURL, query, nextToken, c.maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	log := c.logger.WithFields(map[string]interface{}{
		"query":      query,
		"next_token": nextToken,
	})

	start := time.Now()
	log.Debug("sending search request")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).WarnWithFields("search request failed", map[string]interface{}{
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}
	defer resp.Body.Close()

	rl := parseRateLimit(resp.Header)
	logger.LogRateLimit(log, rl.Remaining, rl.ResetTime())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(log, resp.StatusCode, body)
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		log.ErrorWithFields("failed to parse search response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return nil, errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}
	page.RateLimit = rl

	for _, apiErr := range page.Errors {
		log.WarnWithFields("partial error in search response", map[string]interface{}{
			"title":         apiErr.Title,
			"detail":        apiErr.Detail,
			"resource_type": apiErr.ResourceType,
			"resource_id":   apiErr.ResourceID,
		})
	}

	log.DebugWithFields("search request completed", map[string]interface{}{
		"status":       resp.StatusCode,
		"duration":     duration,
		"result_count": page.Meta.ResultCount,
		"has_next":     page.Meta.NextToken != "",
	})

	return &page, nil
}

// problem is the error body returned with non-200 responses
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// statusError converts a non-200 response into a typed error
func (c *Client) statusError(log logger.Logger, status int, body []byte) error {
	errorType := errors.TypeForStatus(status)

	msg := http.StatusText(status)
	var p problem
	if json.Unmarshal(body, &p) == nil {
		switch {
		case p.Detail != "":
			msg = p.Detail
		case p.Title != "":
			msg = p.Title
		}
	}

	fields := map[string]interface{}{
		"status":     status,
		"error_type": string(errorType),
		"detail":     msg,
	}
	if status >= 500 {
		log.ErrorWithFields("search endpoint server error", fields)
	} else {
		log.WarnWithFields("search endpoint rejected request", fields)
	}

	return errors.New(errorType, status, "search failed: %s", msg)
}

func parseRateLimit(h http.Header) RateLimit {
	rl := RateLimit{Limit: -1, Remaining: -1}
	if v, err := strconv.Atoi(h.Get("x-rate-limit-limit")); err == nil {
		rl.Limit = v
	}
	if v, err := strconv.Atoi(h.Get("x-rate-limit-remaining")); err == nil {
		rl.Remaining = v
	}
	if v, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64); err == nil {
		rl.Reset = v
	}
	return rl
}

// ResetTime returns when the quota window resets, or the zero time
func (r RateLimit) ResetTime() time.Time {
	if r.Reset <= 0 {
		return time.Time{}
	}
	return time.Unix(r.Reset, 0)
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// String formats the quota for display
func (r RateLimit) String() string {
	if r.Remaining < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d/%d", r.Remaining, r.Limit)
}
