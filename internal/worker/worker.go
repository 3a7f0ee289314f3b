// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs one analyst strategy to completion under enforced
// bounds. The engine owns the loop: the strategy only ever decides the
// next tool call or the final payload, while the engine enforces the
// per-worker timeout, the tool budget, and the rule that a strategy with
// tools available must consult at least one before finalizing.
// Implements: prd003-worker (R1-R5);
//
//	docs/ARCHITECTURE § Worker Engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Call names one tool invocation a strategy wants made.
type Call struct {
	Tool string    `json:"tool" yaml:"tool"`
	Args tool.Args `json:"args" yaml:"args"`
}

// Exchange pairs a call with the result the gateway returned for it.
// Strategies see the full exchange history when deciding their next step.
type Exchange struct {
	Call   Call
	Result tool.Result
}

// Step is a strategy decision: either the next call or, with Call nil, the
// final payload.
type Step struct {
	Call  *Call
	Final any
}

// Invoke builds a tool-call step.
func Invoke(name string, args tool.Args) Step {
	return Step{Call: &Call{Tool: name, Args: args}}
}

// Finalize builds a finishing step carrying the worker's payload.
func Finalize(payload any) Step {
	return Step{Final: payload}
}

// Strategy decides, from the task and the exchanges so far, what a worker
// does next. Implementations must be safe to drive from a single goroutine
// and must honor ctx in anything that blocks.
type Strategy interface {
	// Name identifies the worker in results and diagnostics.
	Name() string
	// OutputKey is the shared state key the final payload is published to.
	OutputKey() string
	// Next returns the next step. Returning an error fails the worker.
	Next(ctx context.Context, task types.Task, history []Exchange) (Step, error)
}

// ErrNoToolCalls rejects a final payload produced without consulting any
// tool while tools were available. Narrating data nobody fetched is a
// strategy bug, not a degraded result.
var ErrNoToolCalls = errors.New("finalized without calling any tool")

// ErrToolBudget rejects a strategy that keeps calling tools past the
// configured maximum instead of converging on a payload.
var ErrToolBudget = errors.New("tool call budget exhausted")

// Engine drives strategies against one tool registry.
type Engine struct {
	registry *tool.Registry
	timeout  time.Duration
	maxCalls int
}

// NewEngine builds an engine. Zero config values fall back to the shared
// worker defaults.
func NewEngine(registry *tool.Registry, cfg types.WorkerConfig) *Engine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultWorkerTimeout
	}
	maxCalls := cfg.MaxToolCalls
	if maxCalls <= 0 {
		maxCalls = types.DefaultMaxToolCalls
	}
	return &Engine{registry: registry, timeout: timeout, maxCalls: maxCalls}
}

// Run executes one strategy to completion and publishes its payload to the
// store under the strategy's output key. The returned error is non-nil
// exactly when the stage result is failed; the result always carries the
// worker name, call count, and elapsed time for diagnostics.
func (e *Engine) Run(ctx context.Context, task types.Task, strat Strategy, store *state.Store) (types.StageResult, error) {
	started := time.Now()
	res := types.StageResult{
		Worker:    strat.Name(),
		OutputKey: strat.OutputKey(),
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	hasTools := len(e.registry.Names()) > 0

	var history []Exchange
	for {
		if err := ctx.Err(); err != nil {
			return fail(res, started, len(history),
				fmt.Errorf("worker %s: %w", strat.Name(), err))
		}

		step, err := strat.Next(ctx, task, history)
		if err != nil {
			return fail(res, started, len(history),
				fmt.Errorf("worker %s: %w", strat.Name(), err))
		}

		if step.Call == nil {
			if hasTools && len(history) == 0 {
				return fail(res, started, 0,
					fmt.Errorf("worker %s: %w", strat.Name(), ErrNoToolCalls))
			}
			if err := store.Put(strat.OutputKey(), step.Final); err != nil {
				return fail(res, started, len(history),
					fmt.Errorf("worker %s: publishing result: %w", strat.Name(), err))
			}
			res.Status = types.StatusOK
			res.Payload = step.Final
			res.ToolCalls = len(history)
			res.Elapsed = time.Since(started)
			return res, nil
		}

		if len(history) >= e.maxCalls {
			return fail(res, started, len(history),
				fmt.Errorf("worker %s: %w after %d calls", strat.Name(), ErrToolBudget, len(history)))
		}

		result := e.registry.Invoke(ctx, step.Call.Tool, step.Call.Args)
		history = append(history, Exchange{Call: *step.Call, Result: result})
	}
}

func fail(res types.StageResult, started time.Time, calls int, err error) (types.StageResult, error) {
	res.Status = types.StatusFailed
	res.Err = err.Error()
	res.ToolCalls = calls
	res.Elapsed = time.Since(started)
	return res, err
}
