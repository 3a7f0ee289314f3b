// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyst

import (
	"context"
	"fmt"

	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// TrendAnalyst examines historical sales patterns (R4.1). With a category
// named in the task it pulls that category's monthly trend, year-over-year
// growth, and share of company revenue. Without one it reads the share
// table first and follows whichever category leads it.
type TrendAnalyst struct{}

func (TrendAnalyst) Name() string      { return "trend_analyst" }
func (TrendAnalyst) OutputKey() string { return "trend_analysis" }

func (a TrendAnalyst) Next(_ context.Context, task types.Task, history []worker.Exchange) (worker.Step, error) {
	if err := escalate(history); err != nil {
		return worker.Step{}, err
	}

	if focus, ok := DetectCategory(task.Question); ok {
		switch len(history) {
		case 0:
			return worker.Invoke("monthly_trend", tool.Args{Category: focus}), nil
		case 1:
			return worker.Invoke("yoy_comparison", tool.Args{Category: focus}), nil
		case 2:
			return worker.Invoke("category_share", tool.Args{}), nil
		}
		return worker.Finalize(a.finding(focus, history)), nil
	}

	// No category in the task: read the share table and follow its leader.
	if len(history) == 0 {
		return worker.Invoke("category_share", tool.Args{}), nil
	}
	share := history[0].Result
	if !share.OK() {
		f := types.Finding{
			Analyst:  a.Name(),
			Headline: "No historical sales data available",
			Bullets:  []string{"Gap: " + share.Message},
		}
		return worker.Finalize(f), nil
	}
	leader := str(share.Records[0], "category")
	switch len(history) {
	case 1:
		return worker.Invoke("monthly_trend", tool.Args{Category: leader}), nil
	case 2:
		return worker.Invoke("yoy_comparison", tool.Args{Category: leader}), nil
	}
	return worker.Finalize(a.finding(leader, history)), nil
}

func (a TrendAnalyst) finding(focus string, history []worker.Exchange) types.Finding {
	f := types.Finding{
		Analyst:     a.Name(),
		Subject:     focus,
		Metrics:     map[string]float64{},
		SourceTools: succeeded(history),
	}

	for _, ex := range history {
		if !ex.Result.OK() {
			f.Bullets = append(f.Bullets, "Gap: "+ex.Result.Message)
			continue
		}
		recs := ex.Result.Records
		switch ex.Call.Tool {
		case "monthly_trend":
			// Records arrive most recent month first.
			latest, oldest := recs[0], recs[len(recs)-1]
			f.Metrics["latest_month_revenue"] = number(latest, "monthly_revenue")
			f.Bullets = append(f.Bullets, fmt.Sprintf(
				"%s monthly revenue ran %s (%s) to %s (%s) over %d months.",
				focus, usd(number(oldest, "monthly_revenue")), str(oldest, "month"),
				usd(number(latest, "monthly_revenue")), str(latest, "month"), len(recs)))
			if len(recs) >= 2 {
				prev := number(recs[1], "monthly_revenue")
				if prev != 0 {
					delta := (number(latest, "monthly_revenue") - prev) / prev * 100
					f.Bullets = append(f.Bullets, fmt.Sprintf(
						"Latest month %s moved %s against the prior month.",
						str(latest, "month"), signedPct(delta)))
				}
			}
		case "yoy_comparison":
			latest := recs[len(recs)-1]
			if growth := latest["yoy_growth_pct"]; growth != nil {
				f.Metrics["yoy_growth_pct"] = number(latest, "yoy_growth_pct")
				f.Headline = fmt.Sprintf("%s trending %s year over year",
					focus, signedPct(number(latest, "yoy_growth_pct")))
				f.Bullets = append(f.Bullets, fmt.Sprintf(
					"Year %.0f: %s revenue, %s over the prior year.",
					number(latest, "year"),
					usd(number(latest, "annual_revenue")),
					signedPct(number(latest, "yoy_growth_pct"))))
			} else {
				f.Bullets = append(f.Bullets, fmt.Sprintf(
					"Single tracked year %.0f: %s revenue, no prior year to compare.",
					number(latest, "year"), usd(number(latest, "annual_revenue"))))
			}
		case "category_share":
			for rank, rec := range recs {
				if str(rec, "category") == focus {
					f.Metrics["share_pct"] = number(rec, "pct_of_total")
					f.Bullets = append(f.Bullets, fmt.Sprintf(
						"%s holds %.2f%% of company revenue, rank %d of %d categories.",
						focus, number(rec, "pct_of_total"), rank+1, len(recs)))
					break
				}
			}
		}
	}

	if f.Headline == "" {
		if len(f.SourceTools) > 0 {
			f.Headline = fmt.Sprintf("Historical pattern review for %s", focus)
		} else {
			f.Headline = fmt.Sprintf("No trend data available for %s", focus)
		}
	}
	return f
}
