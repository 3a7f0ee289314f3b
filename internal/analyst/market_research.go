// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyst

import (
	"context"
	"fmt"

	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// MarketResearch gathers external context from the market feed (R3.1). It
// makes a single search scoped to the task's category when one is named,
// or to the retail sector broadly when not.
type MarketResearch struct{}

func (MarketResearch) Name() string      { return "market_research_analyst" }
func (MarketResearch) OutputKey() string { return "market_research" }

func (a MarketResearch) Next(_ context.Context, task types.Task, history []worker.Exchange) (worker.Step, error) {
	if err := escalate(history); err != nil {
		return worker.Step{}, err
	}

	if len(history) == 0 {
		args := tool.Args{Limit: 5}
		if focus, ok := DetectCategory(task.Question); ok {
			args.Category = focus
		}
		return worker.Invoke("market_search", args), nil
	}
	return worker.Finalize(a.finding(task, history)), nil
}

func (a MarketResearch) finding(task types.Task, history []worker.Exchange) types.Finding {
	scope := "the retail sector"
	if focus, ok := DetectCategory(task.Question); ok {
		scope = focus + " retail"
	}

	f := types.Finding{
		Analyst:     a.Name(),
		Subject:     scope,
		Metrics:     map[string]float64{},
		SourceTools: succeeded(history),
	}

	res := history[0].Result
	if !res.OK() {
		f.Headline = fmt.Sprintf("No recent market coverage found for %s", scope)
		f.Bullets = append(f.Bullets, "Gap: "+res.Message)
		return f
	}

	f.Metrics["articles"] = float64(len(res.Records))
	f.Headline = fmt.Sprintf("%d recent market signals on %s", len(res.Records), scope)
	for _, rec := range res.Records {
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s (%s, %s): %s",
			str(rec, "title"), str(rec, "source"), str(rec, "published"),
			str(rec, "summary")))
	}
	return f
}
