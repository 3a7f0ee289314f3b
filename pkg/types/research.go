// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the insight-engine pipeline.
// Implements: prd001-pipeline (Task, PipelineResult, R2.1-R2.4);
//
//	prd002-fan-out (StageResult, R3.1);
//	prd007-analysts (Finding, Brief, R1.2, R4.1-R4.3).
//
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

import "time"

// Task describes the research question driving one pipeline run. It is
// immutable once a run starts; analysts derive tool arguments from it but
// never modify it.
type Task struct {
	// Question is the free-text research question, e.g.
	// "How is Electronics performing and where is it heading?".
	Question string `json:"question" yaml:"question"`
}

// StageStatus reports how a worker or stage finished.
type StageStatus string

const (
	StatusOK     StageStatus = "ok"
	StatusFailed StageStatus = "failed"
)

// StageResult is the record of one worker execution. Exactly one is produced
// per worker per run, whether the worker succeeded or not.
type StageResult struct {
	// Worker is the worker name from its spec.
	Worker string `json:"worker" yaml:"worker"`

	// OutputKey is the shared-state key the worker publishes to.
	OutputKey string `json:"output_key" yaml:"output_key"`

	// Payload is the worker's published content. Opaque to the engine;
	// nil when the worker failed.
	Payload any `json:"payload,omitempty" yaml:"payload,omitempty"`

	// Status is ok or failed.
	Status StageStatus `json:"status" yaml:"status"`

	// Err holds the failure cause when Status is failed.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// ToolCalls counts the tool invocations the worker made.
	ToolCalls int `json:"tool_calls" yaml:"tool_calls"`

	// Elapsed is the worker's wall-clock execution time.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// RunStatus reports how a whole pipeline run finished.
type RunStatus string

const (
	RunOK     RunStatus = "success"
	RunFailed RunStatus = "failed"
)

// PipelineResult is the outcome of one pipeline run: the synthesized payload
// on success, plus the full shared-state snapshot and per-worker results for
// diagnostics either way.
type PipelineResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Task echoes the run's input.
	Task Task `json:"task" yaml:"task"`

	// Status is success or failed.
	Status RunStatus `json:"status" yaml:"status"`

	// Final is the synthesis output. Empty unless every stage succeeded;
	// a failed run never carries a partially merged result.
	Final any `json:"final,omitempty" yaml:"final,omitempty"`

	// FailureCause names the first failure that stopped the run.
	FailureCause string `json:"failure_cause,omitempty" yaml:"failure_cause,omitempty"`

	// State is the shared-state snapshot at the moment the run ended,
	// including keys committed before a failure.
	State map[string]any `json:"state" yaml:"state"`

	// Results lists every worker execution in stage order.
	Results []StageResult `json:"results" yaml:"results"`

	// Started and Elapsed time the run.
	Started time.Time     `json:"started" yaml:"started"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Finding is the payload each analyst publishes: a headline plus the specific
// data points backing it. The engine treats payloads as opaque; Finding is the
// contract between the shipped analysts and the synthesizer.
type Finding struct {
	// Analyst is the worker that produced the finding.
	Analyst string `json:"analyst" yaml:"analyst"`

	// Subject is what the finding is about: a category name or a broader
	// scope such as "All categories".
	Subject string `json:"subject" yaml:"subject"`

	// Headline is the one-sentence takeaway.
	Headline string `json:"headline" yaml:"headline"`

	// Bullets are the specific figures and observations, one per line.
	Bullets []string `json:"bullets" yaml:"bullets"`

	// Metrics carries the key numbers behind the bullets so downstream
	// consumers can compute with them instead of parsing prose.
	Metrics map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// SourceTools names the tools consulted, in call order.
	SourceTools []string `json:"source_tools" yaml:"source_tools"`
}

// BriefSection is one source's contribution to the final brief, traceable to
// the shared-state key it came from.
type BriefSection struct {
	// Key is the shared-state key this section was built from.
	Key string `json:"key" yaml:"key"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Points are the section's data points, condensed from the finding.
	Points []string `json:"points" yaml:"points"`
}

// Brief is the synthesized research brief: every available source contributes
// an identifiable section, and the recommendations draw on more than one of
// them.
type Brief struct {
	// Title restates the research question.
	Title string `json:"title" yaml:"title"`

	// Headline is the lead finding across all sources.
	Headline string `json:"headline" yaml:"headline"`

	// Sections carry each source's condensed contribution.
	Sections []BriefSection `json:"sections" yaml:"sections"`

	// Recommendations are the closing action items.
	Recommendations []string `json:"recommendations" yaml:"recommendations"`

	// Gaps names sources that were expected but unavailable, so a partial
	// brief is explicit about what it is missing.
	Gaps []string `json:"gaps,omitempty" yaml:"gaps,omitempty"`
}
