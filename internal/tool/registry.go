// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var errEmptyName = errors.New("tool has an empty name")

// AlreadyRegisteredError reports a name collision during registration.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

// Registry dispatches invocations to registered tools. It owns argument
// validation, default filling, and the per-call time bound, so individual
// tools only ever see arguments their spec admits.
type Registry struct {
	timeout time.Duration
	tools   map[string]Tool
}

// NewRegistry returns an empty registry. A timeout of zero disables the
// per-call bound.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		timeout: timeout,
		tools:   make(map[string]Tool),
	}
}

// Register adds a tool under its own name. Registering an empty name or a
// name already taken is a configuration bug and fails.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return errEmptyName
	}
	if _, ok := r.tools[name]; ok {
		return &AlreadyRegisteredError{Name: name}
	}
	r.tools[name] = t
	return nil
}

// MustRegister is Register for wiring done at construction time, where a
// failure means the binary is miswired.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke validates args against the named tool's spec, fills defaults, and
// runs the tool under the registry's time bound. It never returns a Go
// error: unknown tools, rejected arguments, timeouts, and execution faults
// all come back as a StatusError result.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) Result {
	res := r.invoke(ctx, name, args)
	res.Tool = name
	return res
}

func (r *Registry) invoke(ctx context.Context, name string, args Args) Result {
	t, ok := r.tools[name]
	if !ok {
		return Errorf("unknown tool %q; available: %s", name, strings.Join(r.Names(), ", "))
	}
	spec := t.Spec()

	if args.Category != "" && !spec.AcceptsCategory {
		return Errorf("tool %q does not accept a category argument", name)
	}
	if args.Limit != 0 && !spec.AcceptsLimit {
		return Errorf("tool %q does not accept a limit argument", name)
	}
	if args.Months != 0 && !spec.AcceptsMonths {
		return Errorf("tool %q does not accept a months argument", name)
	}

	if spec.RequiresCategory && args.Category == "" {
		return Errorf("tool %q requires a category; valid categories: %s",
			name, strings.Join(Categories(), ", "))
	}
	if args.Category != "" {
		canonical, ok := NormalizeCategory(args.Category)
		if !ok {
			return Errorf("unknown category %q; valid categories: %s",
				args.Category, strings.Join(Categories(), ", "))
		}
		args.Category = canonical
	}

	if args.Limit < 0 {
		return Errorf("limit must be at least 1, got %d", args.Limit)
	}
	if args.Months < 0 {
		return Errorf("months must be at least 1, got %d", args.Months)
	}
	if spec.AcceptsLimit && args.Limit == 0 {
		args.Limit = spec.DefaultLimit
	}
	if spec.AcceptsMonths && args.Months == 0 {
		args.Months = spec.DefaultMonths
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan Result, 1)
	go func() { done <- t.Invoke(ctx, args) }()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Errorf("tool %q aborted: %v", name, ctx.Err())
	}
}
