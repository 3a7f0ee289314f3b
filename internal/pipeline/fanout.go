// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences research stages over one shared state store.
// A FanOut stage runs its workers concurrently and joins on the barrier; a
// Synthesis stage merges the keys earlier stages published. The Pipeline
// validates the key topology at construction, so a run can only fail for
// runtime reasons, never because a stage was wired to read a key nothing
// writes.
// Implements: prd001-pipeline (R1-R4), prd002-fan-out (R1-R5);
//
//	docs/ARCHITECTURE § Pipeline, § Fan-Out.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Stage is one step of a pipeline. Run blocks until the stage has fully
// resolved: every worker it launched has returned, whether or not the
// stage as a whole failed. The returned results cover every worker the
// stage ran, in spec order, failures included.
type Stage interface {
	// Name identifies the stage in progress output and failure causes.
	Name() string
	// Produces lists the state keys the stage writes on success.
	Produces() []string
	// Requires lists the state keys the stage reads. They must be
	// produced by an earlier stage.
	Requires() []string
	Run(ctx context.Context, task types.Task, store *state.Store, w io.Writer) ([]types.StageResult, error)
}

// FanOut runs a fixed set of worker strategies concurrently and blocks
// until all of them have completed, failed, or timed out.
type FanOut struct {
	name       string
	engine     *worker.Engine
	strategies []worker.Strategy
	policy     types.FailurePolicy
}

// NewFanOut builds a fan-out stage. Worker names and output keys must be
// unique within the stage; a collision is a wiring bug and fails
// construction. An empty policy defaults to fail-fast.
func NewFanOut(name string, engine *worker.Engine, strategies []worker.Strategy, policy types.FailurePolicy) (*FanOut, error) {
	if name == "" {
		return nil, fmt.Errorf("fan-out stage has an empty name")
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("fan-out stage %s has no workers", name)
	}
	switch policy {
	case "":
		policy = types.FailFast
	case types.FailFast, types.BestEffort:
	default:
		return nil, fmt.Errorf("fan-out stage %s: unknown failure policy %q", name, policy)
	}

	names := make(map[string]bool, len(strategies))
	keys := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		if names[s.Name()] {
			return nil, fmt.Errorf("fan-out stage %s: duplicate worker name %q", name, s.Name())
		}
		if keys[s.OutputKey()] {
			return nil, fmt.Errorf("fan-out stage %s: workers share output key %q", name, s.OutputKey())
		}
		names[s.Name()] = true
		keys[s.OutputKey()] = true
	}

	return &FanOut{name: name, engine: engine, strategies: strategies, policy: policy}, nil
}

func (f *FanOut) Name() string { return f.name }

func (f *FanOut) Produces() []string {
	keys := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		keys[i] = s.OutputKey()
	}
	return keys
}

func (f *FanOut) Requires() []string { return nil }

// Run launches one goroutine per strategy and waits at the barrier. Under
// fail-fast the first failure cancels the siblings' contexts and fails the
// stage; keys committed before the failure stay in the store for
// diagnostics. Under best-effort every worker runs to completion and the
// stage succeeds as long as at least one of them did. Either way Run
// returns only after every launched worker has returned. Progress lines
// are buffered per worker and written in declaration order once the
// barrier releases, so workers never share the writer.
func (f *FanOut) Run(ctx context.Context, task types.Task, store *state.Store, w io.Writer) ([]types.StageResult, error) {
	results := make([]types.StageResult, len(f.strategies))
	progress := make([]string, len(f.strategies))

	p := pool.New().WithContext(ctx)
	if f.policy == types.FailFast {
		p = p.WithCancelOnError().WithFirstError()
	}

	for i, strat := range f.strategies {
		i, strat := i, strat
		p.Go(func(ctx context.Context) error {
			res, err := f.engine.Run(ctx, task, strat, store)
			results[i] = res
			if err != nil {
				progress[i] = fmt.Sprintf("  worker %s failed: %v\n", strat.Name(), err)
				return err
			}
			progress[i] = fmt.Sprintf("  worker %s published %s (%d tool calls, %s)\n",
				strat.Name(), strat.OutputKey(), res.ToolCalls, res.Elapsed.Round(time.Millisecond))
			return nil
		})
	}
	err := p.Wait()

	for _, line := range progress {
		io.WriteString(w, line)
	}

	if f.policy == types.BestEffort {
		failed := 0
		for _, res := range results {
			if res.Status == types.StatusFailed {
				failed++
			}
		}
		if failed == len(results) {
			return results, fmt.Errorf("all %d workers failed: %w", failed, err)
		}
		if failed > 0 {
			fmt.Fprintf(w, "  continuing with %d of %d workers (best-effort)\n",
				len(results)-failed, len(results))
		}
		return results, nil
	}

	if err != nil {
		return results, err
	}
	return results, nil
}
