// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyst

import (
	"context"
	"fmt"

	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// InternalData pulls current performance metrics from the sales store
// (R2.1). With a category named in the task it drills into that category:
// overall performance, regional breakdown, top products. Without one it
// surveys performance across every category instead.
type InternalData struct{}

func (InternalData) Name() string      { return "internal_data_analyst" }
func (InternalData) OutputKey() string { return "internal_data" }

func (a InternalData) Next(_ context.Context, task types.Task, history []worker.Exchange) (worker.Step, error) {
	if err := escalate(history); err != nil {
		return worker.Step{}, err
	}

	plan := internalPlan(task)
	if len(history) < len(plan) {
		return plan[len(history)], nil
	}
	return worker.Finalize(a.finding(task, history)), nil
}

func internalPlan(task types.Task) []worker.Step {
	focus, ok := DetectCategory(task.Question)
	if !ok {
		steps := make([]worker.Step, 0, len(tool.Categories()))
		for _, c := range tool.Categories() {
			steps = append(steps, worker.Invoke("category_performance", tool.Args{Category: c}))
		}
		return steps
	}
	return []worker.Step{
		worker.Invoke("category_performance", tool.Args{Category: focus}),
		worker.Invoke("regional_performance", tool.Args{Category: focus}),
		worker.Invoke("top_products", tool.Args{Category: focus, Limit: 5}),
	}
}

func (a InternalData) finding(task types.Task, history []worker.Exchange) types.Finding {
	f := types.Finding{
		Analyst:     a.Name(),
		Metrics:     map[string]float64{},
		SourceTools: succeeded(history),
	}

	focus, focused := DetectCategory(task.Question)
	if !focused {
		f.Subject = "All categories"
		return a.surveyFinding(f, history)
	}
	f.Subject = focus

	for _, ex := range history {
		if !ex.Result.OK() {
			f.Bullets = append(f.Bullets, "Gap: "+ex.Result.Message)
			continue
		}
		switch ex.Call.Tool {
		case "category_performance":
			rec := ex.Result.Records[0]
			f.Metrics["total_revenue"] = number(rec, "total_revenue")
			f.Metrics["total_units"] = number(rec, "total_units")
			f.Metrics["avg_order_value"] = number(rec, "avg_order_value")
			f.Headline = fmt.Sprintf("%s generated %s on %.0f units (%s to %s)",
				focus, usd(number(rec, "total_revenue")), number(rec, "total_units"),
				str(rec, "earliest_date"), str(rec, "latest_date"))
			f.Bullets = append(f.Bullets, fmt.Sprintf(
				"%s revenue %s across %.0f units, average order value %s.",
				focus, usd(number(rec, "total_revenue")), number(rec, "total_units"),
				usd(number(rec, "avg_order_value"))))
		case "regional_performance":
			recs := ex.Result.Records
			strongest, weakest := recs[0], recs[len(recs)-1]
			f.Bullets = append(f.Bullets, fmt.Sprintf(
				"Strongest region %s (%s); weakest %s (%s) of %d regions.",
				str(strongest, "region"), usd(number(strongest, "total_revenue")),
				str(weakest, "region"), usd(number(weakest, "total_revenue")), len(recs)))
		case "top_products":
			recs := ex.Result.Records
			f.Bullets = append(f.Bullets, fmt.Sprintf(
				"Top product %s at %s; top %d products span %s down to %s.",
				str(recs[0], "product_name"), usd(number(recs[0], "total_revenue")),
				len(recs), usd(number(recs[0], "total_revenue")),
				usd(number(recs[len(recs)-1], "total_revenue"))))
		}
	}

	if f.Headline == "" {
		f.Headline = fmt.Sprintf("No internal performance data available for %s", focus)
	}
	return f
}

func (a InternalData) surveyFinding(f types.Finding, history []worker.Exchange) types.Finding {
	var leader string
	var leaderRevenue float64

	for _, ex := range history {
		if !ex.Result.OK() {
			f.Bullets = append(f.Bullets, "Gap: "+ex.Result.Message)
			continue
		}
		rec := ex.Result.Records[0]
		category := str(rec, "category")
		revenue := number(rec, "total_revenue")
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %s revenue, %.0f units.",
			category, usd(revenue), number(rec, "total_units")))
		if revenue > leaderRevenue {
			leader, leaderRevenue = category, revenue
		}
	}

	if leader == "" {
		f.Headline = "No internal performance data available in any category"
	} else {
		f.Metrics["leader_revenue"] = leaderRevenue
		f.Headline = fmt.Sprintf("Across all categories, %s leads at %s", leader, usd(leaderRevenue))
	}
	return f
}
