// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"context"

	"github.com/pdiddy/insight-engine/internal/tool"
)

// SearchTool adapts the feed client to the tool gateway (R2.1). The query
// is derived from the category argument; without one the search covers the
// retail sector broadly.
type SearchTool struct {
	client *Client
}

// NewSearchTool wraps a feed client for registration with the gateway.
func NewSearchTool(c *Client) SearchTool {
	return SearchTool{client: c}
}

func (SearchTool) Name() string { return "market_search" }

func (SearchTool) Spec() tool.Spec {
	return tool.Spec{
		Summary:         "Recent market research headlines for a category",
		AcceptsCategory: true,
		AcceptsLimit:    true,
		DefaultLimit:    DefaultArticleLimit,
		Fields:          []string{"title", "source", "published", "summary"},
	}
}

func (t SearchTool) Invoke(ctx context.Context, args tool.Args) tool.Result {
	// An unconfigured feed is a coverage gap the analyst narrates, not a
	// transport fault.
	if t.client.endpoint == "" {
		return tool.NoData("market feed not configured; set market.endpoint")
	}

	query := "retail market trends"
	if args.Category != "" {
		query = args.Category + " retail market trends"
	}

	articles, err := t.client.Search(ctx, query, args.Limit)
	if err != nil {
		return tool.Errorf("searching market feed: %v", err)
	}
	if len(articles) == 0 {
		return tool.NoData("No market coverage found for: " + query)
	}

	records := make([]tool.Record, len(articles))
	for i, a := range articles {
		records[i] = tool.Record{
			"title":     a.Title,
			"source":    a.Source,
			"published": a.Published,
			"summary":   a.Summary,
		}
	}
	return tool.Success(records)
}
