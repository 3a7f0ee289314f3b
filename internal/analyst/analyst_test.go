// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyst

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// canned is a gateway tool that replays a fixed result and records the
// arguments it was invoked with.
type canned struct {
	name   string
	result tool.Result
	calls  []tool.Args
}

func (c *canned) Name() string { return c.name }
func (c *canned) Spec() tool.Spec {
	return tool.Spec{AcceptsCategory: true, AcceptsLimit: true, AcceptsMonths: true,
		DefaultLimit: 10, DefaultMonths: 12}
}
func (c *canned) Invoke(_ context.Context, args tool.Args) tool.Result {
	c.calls = append(c.calls, args)
	return c.result
}

func registryOf(t *testing.T, tools ...*canned) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry(0)
	for _, c := range tools {
		require.NoError(t, r.Register(c))
	}
	return r
}

func runStrategy(t *testing.T, r *tool.Registry, strat worker.Strategy, question string) (types.StageResult, *state.Store, error) {
	t.Helper()
	store := state.New()
	engine := worker.NewEngine(r, types.WorkerConfig{})
	res, err := engine.Run(context.Background(), types.Task{Question: question}, strat, store)
	return res, store, err
}

var (
	perfResult = tool.Success([]tool.Record{{
		"category": "Electronics", "total_revenue": 2400000.50,
		"total_units": int64(84500), "avg_order_value": 28.40,
		"earliest_date": "2024-01-01", "latest_date": "2024-12-31",
	}})
	regionalResult = tool.Success([]tool.Record{
		{"region": "West", "total_revenue": 1200000.0, "total_units": int64(40000), "avg_order_value": 30.0},
		{"region": "Midwest", "total_revenue": 300000.0, "total_units": int64(12000), "avg_order_value": 25.0},
	})
	topResult = tool.Success([]tool.Record{
		{"product_name": "Smart Watch", "total_revenue": 420000.0, "total_units": int64(3100)},
		{"product_name": "LED Monitor", "total_revenue": 360000.0, "total_units": int64(2100)},
	})
	monthlyResult = tool.Success([]tool.Record{
		{"month": "2024-12", "monthly_revenue": 310000.0, "monthly_units": int64(9000)},
		{"month": "2024-11", "monthly_revenue": 280000.0, "monthly_units": int64(8600)},
		{"month": "2024-10", "monthly_revenue": 230000.0, "monthly_units": int64(8100)},
	})
	yoyResult = tool.Success([]tool.Record{
		{"year": int64(2023), "annual_revenue": 2100000.0, "annual_units": int64(76000), "yoy_growth_pct": nil},
		{"year": int64(2024), "annual_revenue": 2400000.0, "annual_units": int64(84500), "yoy_growth_pct": 14.29},
	})
	shareResult = tool.Success([]tool.Record{
		{"category": "Grocery", "category_revenue": 3100000.0, "pct_of_total": 30.10},
		{"category": "Electronics", "category_revenue": 2400000.0, "pct_of_total": 23.50},
	})
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		question string
		want     string
		ok       bool
	}{
		{"How is Electronics performing?", "Electronics", true},
		{"home and garden outlook for Q3", "Home and Garden", true},
		{"Compare SPORTS revenue by region", "Sports", true},
		{"How is the company doing overall?", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectCategory(tt.question)
		assert.Equal(t, tt.want, got, tt.question)
		assert.Equal(t, tt.ok, ok, tt.question)
	}
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", usd(1234567.891))
	assert.Equal(t, "$999.00", usd(999))
	assert.Equal(t, "$0.00", usd(0))
	assert.Equal(t, "$12,000.50", usd(12000.5))
}

func TestInternalDataFocused(t *testing.T) {
	perf := &canned{name: "category_performance", result: perfResult}
	regional := &canned{name: "regional_performance", result: regionalResult}
	top := &canned{name: "top_products", result: topResult}
	r := registryOf(t, perf, regional, top)

	res, store, err := runStrategy(t, r, InternalData{}, "How is Electronics performing?")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ToolCalls)

	payload, ok := store.Get("internal_data")
	require.True(t, ok)
	finding := payload.(types.Finding)

	assert.Equal(t, "internal_data_analyst", finding.Analyst)
	assert.Equal(t, "Electronics", finding.Subject)
	assert.Contains(t, finding.Headline, "$2,400,000.50")
	assert.Contains(t, finding.Headline, "84500 units")
	require.Len(t, finding.Bullets, 3)
	assert.Contains(t, finding.Bullets[1], "Strongest region West")
	assert.Contains(t, finding.Bullets[2], "Smart Watch")
	assert.Equal(t, 28.40, finding.Metrics["avg_order_value"])
	assert.Equal(t, []string{"category_performance", "regional_performance", "top_products"}, finding.SourceTools)

	// Focused drill-down asks for the named category each time.
	require.Len(t, perf.calls, 1)
	assert.Equal(t, "Electronics", perf.calls[0].Category)
	require.Len(t, top.calls, 1)
	assert.Equal(t, 5, top.calls[0].Limit)
}

func TestInternalDataSurvey(t *testing.T) {
	perf := &canned{name: "category_performance", result: perfResult}
	r := registryOf(t, perf,
		&canned{name: "regional_performance", result: regionalResult},
		&canned{name: "top_products", result: topResult})

	res, store, err := runStrategy(t, r, InternalData{}, "How is the company doing overall?")
	require.NoError(t, err)

	// One performance call per category, no drill-down calls.
	assert.Equal(t, len(tool.Categories()), res.ToolCalls)
	assert.Len(t, perf.calls, len(tool.Categories()))
	assert.Equal(t, "Electronics", perf.calls[0].Category)
	assert.Equal(t, "Grocery", perf.calls[len(perf.calls)-1].Category)

	payload, _ := store.Get("internal_data")
	finding := payload.(types.Finding)
	assert.Equal(t, "All categories", finding.Subject)
	assert.Contains(t, finding.Headline, "leads at")
}

func TestInternalDataNarratesGaps(t *testing.T) {
	r := registryOf(t,
		&canned{name: "category_performance", result: perfResult},
		&canned{name: "regional_performance", result: tool.NoData("No regional data for category: Electronics")},
		&canned{name: "top_products", result: topResult})

	_, store, err := runStrategy(t, r, InternalData{}, "Electronics check")
	require.NoError(t, err)

	payload, _ := store.Get("internal_data")
	finding := payload.(types.Finding)
	assert.Contains(t, finding.Bullets, "Gap: No regional data for category: Electronics")
	assert.NotContains(t, finding.SourceTools, "regional_performance")
}

func TestInternalDataEscalatesToolError(t *testing.T) {
	r := registryOf(t,
		&canned{name: "category_performance", result: tool.Errorf("querying category performance: disk I/O error")},
		&canned{name: "regional_performance", result: regionalResult},
		&canned{name: "top_products", result: topResult})

	res, store, err := runStrategy(t, r, InternalData{}, "Electronics check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category_performance failed")
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.False(t, store.Has("internal_data"))
}

func TestMarketResearch(t *testing.T) {
	search := &canned{name: "market_search", result: tool.Success([]tool.Record{
		{"title": "Upgrade cycle accelerates", "source": "Retail Wire",
			"published": "2026-08-01", "summary": "Replacement windows shorten."},
	})}
	r := registryOf(t, search)

	res, store, err := runStrategy(t, r, MarketResearch{}, "Electronics outlook")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ToolCalls)
	assert.Equal(t, "Electronics", search.calls[0].Category)
	assert.Equal(t, 5, search.calls[0].Limit)

	payload, _ := store.Get("market_research")
	finding := payload.(types.Finding)
	assert.Equal(t, "Electronics retail", finding.Subject)
	assert.Contains(t, finding.Headline, "1 recent market signals")
	assert.Contains(t, finding.Bullets[0], "Retail Wire")
	assert.Equal(t, 1.0, finding.Metrics["articles"])
}

func TestMarketResearchNoCoverage(t *testing.T) {
	r := registryOf(t, &canned{name: "market_search",
		result: tool.NoData("No market coverage found for: retail market trends")})

	_, store, err := runStrategy(t, r, MarketResearch{}, "general outlook")
	require.NoError(t, err)

	payload, _ := store.Get("market_research")
	finding := payload.(types.Finding)
	assert.Contains(t, finding.Headline, "No recent market coverage")
	require.Len(t, finding.Bullets, 1)
	assert.Contains(t, finding.Bullets[0], "Gap: ")
}

func TestTrendAnalystFocused(t *testing.T) {
	monthly := &canned{name: "monthly_trend", result: monthlyResult}
	yoy := &canned{name: "yoy_comparison", result: yoyResult}
	share := &canned{name: "category_share", result: shareResult}
	r := registryOf(t, monthly, yoy, share)

	res, store, err := runStrategy(t, r, TrendAnalyst{}, "Electronics trends")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ToolCalls)
	assert.Equal(t, 12, monthly.calls[0].Months)

	payload, _ := store.Get("trend_analysis")
	finding := payload.(types.Finding)
	assert.Equal(t, "Electronics", finding.Subject)
	assert.Contains(t, finding.Headline, "+14.29%")
	assert.Equal(t, 14.29, finding.Metrics["yoy_growth_pct"])
	assert.Equal(t, 23.50, finding.Metrics["share_pct"])

	var sawShareBullet bool
	for _, b := range finding.Bullets {
		if b == "Electronics holds 23.50% of company revenue, rank 2 of 2 categories." {
			sawShareBullet = true
		}
	}
	assert.True(t, sawShareBullet, "share bullet missing: %v", finding.Bullets)
}

func TestTrendAnalystSurveyFollowsLeader(t *testing.T) {
	monthly := &canned{name: "monthly_trend", result: monthlyResult}
	yoy := &canned{name: "yoy_comparison", result: yoyResult}
	share := &canned{name: "category_share", result: shareResult}
	r := registryOf(t, monthly, yoy, share)

	res, store, err := runStrategy(t, r, TrendAnalyst{}, "What should we watch?")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ToolCalls)

	// The share table leads; the follow-up calls target its leader.
	require.Len(t, monthly.calls, 1)
	assert.Equal(t, "Grocery", monthly.calls[0].Category)
	require.Len(t, yoy.calls, 1)
	assert.Equal(t, "Grocery", yoy.calls[0].Category)

	payload, _ := store.Get("trend_analysis")
	assert.Equal(t, "Grocery", payload.(types.Finding).Subject)
}

func TestTrendAnalystSurveyEmptyShare(t *testing.T) {
	share := &canned{name: "category_share", result: tool.NoData("No category data found")}
	r := registryOf(t, share,
		&canned{name: "monthly_trend", result: monthlyResult},
		&canned{name: "yoy_comparison", result: yoyResult})

	res, store, err := runStrategy(t, r, TrendAnalyst{}, "What should we watch?")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ToolCalls)

	payload, _ := store.Get("trend_analysis")
	finding := payload.(types.Finding)
	assert.Equal(t, "No historical sales data available", finding.Headline)
}
