// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/insight-engine/internal/httputil"
	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func init() {
	// Use a tiny base delay so retry tests finish quickly.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

var sampleArticles = []Article{
	{
		Title:     "Electronics upgrade cycle accelerates",
		Source:    "Retail Wire",
		Published: "2026-08-01",
		Summary:   "Device replacement windows are shortening across price tiers.",
	},
	{
		Title:     "Holiday inventory planning starts early",
		Source:    "Commerce Daily",
		Published: "2026-07-28",
		Summary:   "Retailers are front-loading Q4 stock against freight risk.",
	},
}

func serveArticles(t *testing.T, articles []Article, check func(*http.Request)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		json.NewEncoder(w).Encode(searchResponse{Articles: articles})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSearch(t *testing.T) {
	var gotReq *http.Request
	ts := serveArticles(t, sampleArticles, func(r *http.Request) {
		gotReq = r.Clone(context.Background())
	})

	c := NewClient(types.MarketConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "insight-engine-test/0"},
		Endpoint:   ts.URL,
		APIKey:     "mk_test",
	})

	articles, err := c.Search(context.Background(), "Electronics retail market trends", 5)
	require.NoError(t, err)
	assert.Equal(t, sampleArticles, articles)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/v1/search", gotReq.URL.Path)
	assert.Equal(t, "Electronics retail market trends", gotReq.URL.Query().Get("q"))
	assert.Equal(t, "5", gotReq.URL.Query().Get("limit"))
	assert.Equal(t, "insight-engine-test/0", gotReq.Header.Get("User-Agent"))
	assert.Equal(t, "mk_test", gotReq.Header.Get("X-Api-Key"))
}

func TestSearchValidation(t *testing.T) {
	ts := serveArticles(t, sampleArticles, nil)

	c := NewClient(types.MarketConfig{Endpoint: ts.URL})
	_, err := c.Search(context.Background(), "   ", 5)
	assert.ErrorContains(t, err, "empty market query")

	unconfigured := NewClient(types.MarketConfig{})
	_, err = unconfigured.Search(context.Background(), "retail", 5)
	assert.ErrorContains(t, err, "endpoint not configured")
}

func TestSearchTruncatesOverfullResponse(t *testing.T) {
	ts := serveArticles(t, sampleArticles, nil)

	c := NewClient(types.MarketConfig{Endpoint: ts.URL})
	articles, err := c.Search(context.Background(), "retail", 1)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Equal(t, sampleArticles[0], articles[0])
}

func TestSearchUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(types.MarketConfig{Endpoint: ts.URL})
	_, err := c.Search(context.Background(), "retail", 5)
	assert.ErrorContains(t, err, "HTTP 500")
}

func TestSearchRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{Articles: sampleArticles})
	}))
	t.Cleanup(ts.Close)

	c := NewClient(types.MarketConfig{Endpoint: ts.URL, MaxRetries: 2})
	articles, err := c.Search(context.Background(), "retail", 5)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchToolSuccess(t *testing.T) {
	var gotQuery string
	ts := serveArticles(t, sampleArticles, func(r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
	})

	r := tool.NewRegistry(0)
	r.MustRegister(NewSearchTool(NewClient(types.MarketConfig{Endpoint: ts.URL})))

	res := r.Invoke(context.Background(), "market_search", tool.Args{Category: "electronics"})
	require.Equal(t, tool.StatusSuccess, res.Status, res.Message)
	assert.Equal(t, "Electronics retail market trends", gotQuery)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Electronics upgrade cycle accelerates", res.Records[0]["title"])
	assert.Equal(t, "Retail Wire", res.Records[0]["source"])
}

func TestSearchToolNoCoverage(t *testing.T) {
	ts := serveArticles(t, nil, nil)

	st := NewSearchTool(NewClient(types.MarketConfig{Endpoint: ts.URL}))
	res := st.Invoke(context.Background(), tool.Args{Limit: 5})
	assert.Equal(t, tool.StatusNoData, res.Status)
	assert.Contains(t, res.Message, "retail market trends")
}

func TestSearchToolFeedDown(t *testing.T) {
	ts := serveArticles(t, sampleArticles, nil)
	ts.Close()

	st := NewSearchTool(NewClient(types.MarketConfig{Endpoint: ts.URL}))
	res := st.Invoke(context.Background(), tool.Args{Limit: 5})
	assert.Equal(t, tool.StatusError, res.Status)
	assert.Contains(t, res.Message, "searching market feed")
}

func TestSearchToolUnconfiguredFeed(t *testing.T) {
	st := NewSearchTool(NewClient(types.MarketConfig{}))
	res := st.Invoke(context.Background(), tool.Args{})
	assert.Equal(t, tool.StatusNoData, res.Status)
	assert.Contains(t, res.Message, "not configured")
}
