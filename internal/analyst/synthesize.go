// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyst

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Synthesizer adapts Synthesize to the pipeline's synthesis-stage
// interface. Merging findings is pure computation; it never fails.
type Synthesizer struct{}

func (Synthesizer) Synthesize(_ context.Context, task types.Task, inputs map[string]any) (any, error) {
	return Synthesize(task, inputs), nil
}

// AnalystKeys lists the shared-state keys the shipped analysts publish to,
// in brief section order.
var AnalystKeys = []string{"internal_data", "market_research", "trend_analysis"}

var sectionTitles = map[string]string{
	"internal_data":   "Internal Performance",
	"market_research": "Market Context",
	"trend_analysis":  "Historical Trends",
}

// Synthesize merges the available findings into one executive brief. Every
// present source contributes an identifiable section; sources that are
// missing or carried gaps are named in Brief.Gaps rather than papered
// over. Recommendations are derived from the findings' metrics, so they
// draw on internal and external evidence together instead of restating
// either report.
func Synthesize(task types.Task, inputs map[string]any) types.Brief {
	brief := types.Brief{
		Title: "Research Brief: " + task.Question,
	}

	findings := make(map[string]types.Finding)
	for _, key := range orderedKeys(inputs) {
		payload, ok := inputs[key]
		if !ok {
			brief.Gaps = append(brief.Gaps, fmt.Sprintf("no %s contribution was published", key))
			continue
		}

		finding, ok := payload.(types.Finding)
		if !ok {
			// A foreign payload still gets a traceable section.
			brief.Sections = append(brief.Sections, types.BriefSection{
				Key:    key,
				Title:  sectionTitle(key),
				Points: []string{fmt.Sprintf("%v", payload)},
			})
			continue
		}
		findings[key] = finding

		section := types.BriefSection{
			Key:   key,
			Title: sectionTitle(key),
		}
		if finding.Headline != "" {
			section.Points = append(section.Points, finding.Headline+".")
		}
		for _, bullet := range finding.Bullets {
			if gap, ok := strings.CutPrefix(bullet, "Gap: "); ok {
				brief.Gaps = append(brief.Gaps, fmt.Sprintf("%s: %s", finding.Analyst, gap))
				continue
			}
			section.Points = append(section.Points, bullet)
		}
		brief.Sections = append(brief.Sections, section)
	}

	brief.Headline = headline(findings)
	brief.Recommendations = recommend(findings)
	return brief
}

// orderedKeys returns the analyst keys first, in declared order, then any
// extra input keys sorted.
func orderedKeys(inputs map[string]any) []string {
	keys := make([]string, 0, len(inputs))
	seen := make(map[string]bool)
	for _, k := range AnalystKeys {
		keys = append(keys, k)
		seen[k] = true
	}

	var extra []string
	for k := range inputs {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func sectionTitle(key string) string {
	if title, ok := sectionTitles[key]; ok {
		return title
	}
	return key
}

// headline leads with the internal picture and folds in the trend
// direction when both are available.
func headline(findings map[string]types.Finding) string {
	internal, haveInternal := findings["internal_data"]
	trend, haveTrend := findings["trend_analysis"]
	mkt, haveMarket := findings["market_research"]

	switch {
	case haveInternal && haveTrend && trend.Headline != "":
		return internal.Headline + "; " + trend.Headline
	case haveInternal:
		return internal.Headline
	case haveTrend:
		return trend.Headline
	case haveMarket:
		return mkt.Headline
	}
	return "No findings available"
}

// recommend turns the findings' metrics into two or three action items.
func recommend(findings map[string]types.Finding) []string {
	var recs []string

	if trend, ok := findings["trend_analysis"]; ok {
		if growth, ok := trend.Metrics["yoy_growth_pct"]; ok {
			if growth >= 0 {
				recs = append(recs, fmt.Sprintf(
					"Sustain momentum in %s: revenue is tracking %s year over year, so protect inventory depth ahead of peak months.",
					trend.Subject, signedPct(growth)))
			} else {
				recs = append(recs, fmt.Sprintf(
					"Arrest the %s year-over-year slide in %s: revisit pricing and assortment before the next planning cycle.",
					signedPct(growth), trend.Subject))
			}
		}
	}

	if mkt, ok := findings["market_research"]; ok {
		if articles := mkt.Metrics["articles"]; articles > 0 {
			recs = append(recs, fmt.Sprintf(
				"Reconcile these internal figures against the %.0f external market signals before committing spend.",
				articles))
		} else {
			recs = append(recs, "Commission fresh market research; no recent external coverage was found to validate internal signals.")
		}
	}

	if internal, ok := findings["internal_data"]; ok {
		if aov, ok := internal.Metrics["avg_order_value"]; ok {
			recs = append(recs, fmt.Sprintf(
				"Test bundles in %s to lift the %s average order value.",
				internal.Subject, usd(aov)))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Re-run the analysis once data sources are restored; no metrics were available to act on.")
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}
