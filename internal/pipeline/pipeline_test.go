// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/insight-engine/internal/analyst"
	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// countingSynth wraps a synthesizer and records whether it ran.
type countingSynth struct {
	calls int
	inner Synthesizer
}

func (c *countingSynth) Synthesize(ctx context.Context, task types.Task, inputs map[string]any) (any, error) {
	c.calls++
	return c.inner.Synthesize(ctx, task, inputs)
}

func finding(analystName string) types.Finding {
	return types.Finding{
		Analyst:  analystName,
		Subject:  "Electronics",
		Headline: analystName + " headline",
		Bullets:  []string{analystName + " observed strong weekend sales"},
		Metrics:  map[string]float64{"revenue": 1200},
	}
}

func teamStage(t *testing.T, strategies ...worker.Strategy) *FanOut {
	t.Helper()
	f, err := NewFanOut("research_team", newEngine(t), strategies, types.FailFast)
	if err != nil {
		t.Fatalf("NewFanOut: %v", err)
	}
	return f
}

func briefStage(t *testing.T, synth Synthesizer) *Synthesis {
	t.Helper()
	s, err := NewSynthesis("synthesizer", analyst.AnalystKeys, "research_brief", synth)
	if err != nil {
		t.Fatalf("NewSynthesis: %v", err)
	}
	return s
}

func TestNewValidatesTopology(t *testing.T) {
	team := teamStage(t,
		stub{name: "internal", key: "internal_data", payload: "x"},
		stub{name: "market", key: "market_research", payload: "x"},
	)

	// Synthesis requires a key no stage produces.
	synth := briefStage(t, analyst.Synthesizer{})
	if _, err := New(team, synth); err == nil {
		t.Error("pipeline accepted a synthesis stage with an unproduced required key")
	}

	// Two stages producing the same key.
	clash := teamStage(t, stub{name: "other", key: "internal_data", payload: "y"})
	if _, err := New(team, clash); err == nil {
		t.Error("pipeline accepted two stages producing the same key")
	}

	if _, err := New(); err == nil {
		t.Error("pipeline accepted zero stages")
	}
}

func TestSynthesisMissingDependency(t *testing.T) {
	counting := &countingSynth{inner: analyst.Synthesizer{}}
	synth := briefStage(t, counting)

	store := state.New()
	if err := store.Put("internal_data", finding("internal")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	results, err := synth.Run(context.Background(), task, store, io.Discard)
	var missing *MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingDependencyError", err)
	}
	if len(missing.Keys) != 2 {
		t.Errorf("missing keys = %v, want the two unwritten keys", missing.Keys)
	}
	// Execute prefixes the stage name when it wraps a stage error, so the
	// message itself must not repeat it.
	if strings.Contains(missing.Error(), "synthesizer") {
		t.Errorf("error message embeds the stage name: %q", missing.Error())
	}

	// No partial merge: the synthesizer never ran and nothing was
	// published.
	if counting.calls != 0 {
		t.Errorf("synthesizer ran %d times before its inputs existed", counting.calls)
	}
	if store.Has("research_brief") {
		t.Error("partial merge published")
	}
	if results[0].Status != types.StatusFailed {
		t.Errorf("status = %s, want failed", results[0].Status)
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	team := teamStage(t,
		stub{name: "internal_data_analyst", key: "internal_data",
			payload: finding("internal_data_analyst")},
		stub{name: "market_research_analyst", key: "market_research",
			payload: finding("market_research_analyst")},
		stub{name: "trend_analyst", key: "trend_analysis",
			payload: finding("trend_analyst")},
	)
	synth := briefStage(t, analyst.Synthesizer{})

	p, err := New(team, synth)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := p.Execute(context.Background(), task, io.Discard)
	if res.Status != types.RunOK {
		t.Fatalf("status = %s (%s), want success", res.Status, res.FailureCause)
	}
	if res.RunID == "" {
		t.Error("run has no ID")
	}
	if len(res.Results) != 4 {
		t.Errorf("got %d stage results, want 4", len(res.Results))
	}

	brief, ok := res.Final.(types.Brief)
	if !ok {
		t.Fatalf("final payload is %T, want types.Brief", res.Final)
	}

	// Lossless coverage: every source key contributes an identifiable
	// section.
	contributed := make(map[string]bool)
	for _, section := range brief.Sections {
		contributed[section.Key] = true
	}
	for _, key := range analyst.AnalystKeys {
		if !contributed[key] {
			t.Errorf("source %s has no traceable section in the brief", key)
		}
	}

	// The snapshot carries the three findings plus the brief.
	if len(res.State) != 4 {
		t.Errorf("state snapshot has %d keys, want 4: %v", len(res.State), res.State)
	}
}

func TestExecuteBestEffortProducesPartialBrief(t *testing.T) {
	team, err := NewFanOut("research_team", newEngine(t), []worker.Strategy{
		stub{name: "internal_data_analyst", key: "internal_data",
			payload: finding("internal_data_analyst")},
		stub{name: "market_research_analyst", key: "market_research",
			failure: errors.New("market feed returned HTTP 500")},
		stub{name: "trend_analyst", key: "trend_analysis",
			payload: finding("trend_analyst")},
	}, types.BestEffort)
	if err != nil {
		t.Fatalf("NewFanOut: %v", err)
	}
	synth := briefStage(t, analyst.Synthesizer{}).WithPartialInputs()

	p, err := New(team, synth)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := p.Execute(context.Background(), task, io.Discard)
	if res.Status != types.RunOK {
		t.Fatalf("status = %s (%s), want success with partial findings",
			res.Status, res.FailureCause)
	}

	brief, ok := res.Final.(types.Brief)
	if !ok {
		t.Fatalf("final payload is %T, want types.Brief", res.Final)
	}

	// The surviving analysts contribute sections; the failed one shows up
	// as a named gap, not a section.
	contributed := make(map[string]bool)
	for _, section := range brief.Sections {
		contributed[section.Key] = true
	}
	if !contributed["internal_data"] || !contributed["trend_analysis"] {
		t.Errorf("surviving findings missing from brief sections: %v", brief.Sections)
	}
	if contributed["market_research"] {
		t.Error("failed analyst contributed a section")
	}
	gapped := false
	for _, gap := range brief.Gaps {
		if strings.Contains(gap, "market_research") {
			gapped = true
		}
	}
	if !gapped {
		t.Errorf("missing finding not named in gaps: %v", brief.Gaps)
	}

	// Two findings plus the brief; the failed worker's key never appears.
	if len(res.State) != 3 {
		t.Errorf("state snapshot has %d keys, want 3: %v", len(res.State), res.State)
	}
	if _, ok := res.State["market_research"]; ok {
		t.Error("failed worker's key present in snapshot")
	}
}

func TestSynthesisPartialWithNoInputs(t *testing.T) {
	counting := &countingSynth{inner: analyst.Synthesizer{}}
	synth := briefStage(t, counting).WithPartialInputs()

	results, err := synth.Run(context.Background(), task, state.New(), io.Discard)
	if err == nil {
		t.Fatal("synthesis merged an empty input set")
	}
	if counting.calls != 0 {
		t.Errorf("synthesizer ran %d times with nothing to merge", counting.calls)
	}
	if results[0].Status != types.StatusFailed {
		t.Errorf("status = %s, want failed", results[0].Status)
	}
}

func TestExecuteFailureStopsBeforeSynthesis(t *testing.T) {
	team := teamStage(t,
		stub{name: "internal_data_analyst", key: "internal_data",
			payload: finding("internal_data_analyst")},
		stub{name: "market_research_analyst", key: "market_research",
			delay: 60 * time.Millisecond, failure: errors.New("market feed returned HTTP 500")},
		stub{name: "trend_analyst", key: "trend_analysis",
			payload: finding("trend_analyst")},
	)
	counting := &countingSynth{inner: analyst.Synthesizer{}}
	synth := briefStage(t, counting)

	p, err := New(team, synth)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := p.Execute(context.Background(), task, io.Discard)
	if res.Status != types.RunFailed {
		t.Fatalf("status = %s, want failed", res.Status)
	}
	if !strings.Contains(res.FailureCause, "research_team") ||
		!strings.Contains(res.FailureCause, "market feed") {
		t.Errorf("FailureCause = %q, want stage name and root cause", res.FailureCause)
	}
	if counting.calls != 0 {
		t.Error("synthesis ran after the fan-out stage failed")
	}
	if res.Final != nil {
		t.Errorf("failed run carries a final payload: %v", res.Final)
	}

	// Diagnostics: the two committed findings survive in the snapshot.
	for _, key := range []string{"internal_data", "trend_analysis"} {
		if _, ok := res.State[key]; !ok {
			t.Errorf("committed key %s missing from failure snapshot", key)
		}
	}
	if _, ok := res.State["market_research"]; ok {
		t.Error("failed worker's key present in snapshot")
	}
}
