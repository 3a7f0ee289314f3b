// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/insight-engine/internal/state"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// MissingDependencyError reports a synthesis stage invoked before all of
// its required keys were written. Stage ordering makes this unreachable in
// a validated pipeline; hitting it means a construction bug. The message
// omits the stage name: the pipeline runner prefixes it when it wraps the
// error.
type MissingDependencyError struct {
	Stage string
	Keys  []string
}

func (e *MissingDependencyError) Error() string {
	return "required keys not yet written: " + strings.Join(e.Keys, ", ")
}

// Synthesizer merges the payloads stored under a synthesis stage's
// required keys into one output payload. Inputs is a copy; mutating it
// does not touch the store.
type Synthesizer interface {
	Synthesize(ctx context.Context, task types.Task, inputs map[string]any) (any, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, task types.Task, inputs map[string]any) (any, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, task types.Task, inputs map[string]any) (any, error) {
	return f(ctx, task, inputs)
}

// Synthesis is the join stage: it reads a fixed set of keys earlier stages
// published and writes one merged payload.
type Synthesis struct {
	name      string
	required  []string
	outputKey string
	synth     Synthesizer
	partial   bool
}

// NewSynthesis builds a synthesis stage over the given required keys.
func NewSynthesis(name string, required []string, outputKey string, synth Synthesizer) (*Synthesis, error) {
	if name == "" {
		return nil, fmt.Errorf("synthesis stage has an empty name")
	}
	if len(required) == 0 {
		return nil, fmt.Errorf("synthesis stage %s requires no keys", name)
	}
	if outputKey == "" {
		return nil, fmt.Errorf("synthesis stage %s has an empty output key", name)
	}
	if synth == nil {
		return nil, fmt.Errorf("synthesis stage %s has no synthesizer", name)
	}
	req := make([]string, len(required))
	copy(req, required)
	return &Synthesis{name: name, required: req, outputKey: outputKey, synth: synth}, nil
}

// WithPartialInputs lets the stage merge whichever required keys were
// actually written instead of demanding all of them, for pipelines whose
// earlier stages run best-effort. The synthesizer sees only the present
// keys and is expected to report the absent ones as gaps. At least one key
// must still be present; a fully empty input set fails the stage.
func (s *Synthesis) WithPartialInputs() *Synthesis {
	s.partial = true
	return s
}

func (s *Synthesis) Name() string { return s.name }

func (s *Synthesis) Produces() []string { return []string{s.outputKey} }

func (s *Synthesis) Requires() []string {
	req := make([]string, len(s.required))
	copy(req, s.required)
	return req
}

// Run collects the required keys and merges them. Outside partial mode a
// missing key fails with *MissingDependencyError before any merge work
// happens, so a partial merge can never be observed. In partial mode the
// present keys are merged and the absent ones are left for the
// synthesizer to narrate as gaps.
func (s *Synthesis) Run(ctx context.Context, task types.Task, store *state.Store, w io.Writer) ([]types.StageResult, error) {
	started := time.Now()
	res := types.StageResult{Worker: s.name, OutputKey: s.outputKey}

	var present, missing []string
	for _, key := range s.required {
		if store.Has(key) {
			present = append(present, key)
		} else {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 && !s.partial {
		sort.Strings(missing)
		err := &MissingDependencyError{Stage: s.name, Keys: missing}
		return s.fail(res, started, err), err
	}
	if len(present) == 0 {
		err := fmt.Errorf("no inputs to merge: none of %s were written",
			strings.Join(s.required, ", "))
		return s.fail(res, started, err), err
	}

	inputs := make(map[string]any, len(present))
	for _, key := range present {
		payload, _ := store.Get(key)
		inputs[key] = payload
	}

	payload, err := s.synth.Synthesize(ctx, task, inputs)
	if err != nil {
		return s.fail(res, started, fmt.Errorf("synthesizing: %w", err)), err
	}

	if err := store.Put(s.outputKey, payload); err != nil {
		return s.fail(res, started, fmt.Errorf("publishing synthesis: %w", err)), err
	}

	if len(missing) > 0 {
		fmt.Fprintf(w, "  %s merged %d of %d sources into %s (missing: %s)\n",
			s.name, len(present), len(s.required), s.outputKey, strings.Join(missing, ", "))
	} else {
		fmt.Fprintf(w, "  %s merged %d sources into %s\n", s.name, len(present), s.outputKey)
	}
	res.Status = types.StatusOK
	res.Payload = payload
	res.Elapsed = time.Since(started)
	return []types.StageResult{res}, nil
}

func (s *Synthesis) fail(res types.StageResult, started time.Time, err error) []types.StageResult {
	res.Status = types.StatusFailed
	res.Err = err.Error()
	res.Elapsed = time.Since(started)
	return []types.StageResult{res}
}
