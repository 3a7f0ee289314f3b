// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package market queries the external market research feed for recent
// industry coverage. The feed is the one network dependency a pipeline run
// has; everything else reads local state.
// Implements: prd006-market-feed (R1-R4);
//
//	docs/ARCHITECTURE § Market Feed.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/insight-engine/internal/httputil"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// DefaultArticleLimit bounds a search when the caller does not ask for a
// specific count.
const DefaultArticleLimit = 5

// Article is one piece of market coverage returned by the feed.
type Article struct {
	Title     string `json:"title" yaml:"title"`
	Source    string `json:"source" yaml:"source"`
	Published string `json:"published" yaml:"published"`
	Summary   string `json:"summary" yaml:"summary"`
}

type searchResponse struct {
	Articles []Article `json:"articles"`
}

// Client talks to the market research feed (R1.1).
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	maxRetries int
}

// NewClient builds a feed client from config. Zero config values fall back
// to the shared HTTP defaults.
func NewClient(cfg types.MarketConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultHTTPTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// Search returns up to limit articles matching query, newest first as the
// feed orders them (R1.2, R1.3). Rate limits and transient upstream
// failures are retried before giving up.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty market query")
	}
	if c.endpoint == "" {
		return nil, fmt.Errorf("market feed endpoint not configured")
	}
	if limit <= 0 {
		limit = DefaultArticleLimit
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	reqURL := c.endpoint + "/v1/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("market feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market feed returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing market feed response: %w", err)
	}

	if len(sr.Articles) > limit {
		sr.Articles = sr.Articles[:limit]
	}
	return sr.Articles, nil
}
