// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Pipeline is an ordered sequence of stages sharing one state store per
// run. The definition is constructed once and reused across runs; all
// per-run state lives in the store Execute creates.
type Pipeline struct {
	stages   []Stage
	finalKey string
}

// New validates the stage topology and returns the pipeline. Every key a
// stage requires must be produced by an earlier stage, and no two stages
// may produce the same key. The last stage's sole produced key becomes the
// run's final payload key.
func New(stages ...Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline has no stages")
	}

	produced := make(map[string]string) // key -> producing stage
	for _, st := range stages {
		for _, key := range st.Requires() {
			if _, ok := produced[key]; !ok {
				return nil, fmt.Errorf("stage %s requires key %q that no earlier stage produces",
					st.Name(), key)
			}
		}
		for _, key := range st.Produces() {
			if prev, ok := produced[key]; ok {
				return nil, fmt.Errorf("stages %s and %s both produce key %q",
					prev, st.Name(), key)
			}
			produced[key] = st.Name()
		}
	}

	last := stages[len(stages)-1]
	if keys := last.Produces(); len(keys) != 1 {
		return nil, fmt.Errorf("final stage %s must produce exactly one key, got %d",
			last.Name(), len(keys))
	}

	return &Pipeline{stages: stages, finalKey: last.Produces()[0]}, nil
}

// Execute runs the stages strictly in order over a fresh store. A stage
// starts only after the previous one resolved successfully; on a stage
// failure the run stops there and the result carries the failure cause
// plus whatever the store holds at that point. The final payload is set
// only when every stage succeeded.
func (p *Pipeline) Execute(ctx context.Context, task types.Task, w io.Writer) types.PipelineResult {
	started := time.Now()
	res := types.PipelineResult{
		RunID:   uuid.NewString(),
		Task:    task,
		Started: started,
	}
	store := state.New()

	for _, st := range p.stages {
		fmt.Fprintf(w, "stage %s\n", st.Name())

		stageResults, err := st.Run(ctx, task, store, w)
		res.Results = append(res.Results, stageResults...)
		if err != nil {
			res.Status = types.RunFailed
			res.FailureCause = fmt.Sprintf("stage %s: %v", st.Name(), err)
			res.State = store.Snapshot()
			res.Elapsed = time.Since(started)
			return res
		}
	}

	res.Status = types.RunOK
	res.State = store.Snapshot()
	res.Final, _ = store.Get(p.finalKey)
	res.Elapsed = time.Since(started)
	return res
}
