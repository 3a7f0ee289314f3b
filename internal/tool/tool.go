// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tool is the gateway between worker strategies and the data tools
// they call. Every invocation passes through a Registry, which validates
// arguments against the tool's declared spec and converts every failure
// mode into a structured Result. Tools never surface Go errors to workers;
// a Result with StatusError is the only failure channel.
// Implements: prd004-tool-gateway (R1-R5);
//
//	docs/ARCHITECTURE § Tool Gateway.
package tool

import (
	"context"
	"fmt"
	"strings"
)

// Status classifies a tool invocation outcome.
type Status string

const (
	// StatusSuccess means the tool ran and produced at least one record.
	StatusSuccess Status = "success"
	// StatusNoData means the tool ran but its query matched nothing.
	StatusNoData Status = "no_data"
	// StatusError means the invocation failed: bad arguments, unknown
	// tool, timeout, or an execution fault.
	StatusError Status = "error"
)

// Record is one row of tool output. Field order for rendering comes from
// the tool's Spec, not from the map.
type Record map[string]any

// Result is the envelope every tool invocation returns.
type Result struct {
	Tool    string   `json:"tool" yaml:"tool"`
	Status  Status   `json:"status" yaml:"status"`
	Records []Record `json:"records,omitempty" yaml:"records,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// OK reports whether the invocation produced usable records.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Success wraps records in a StatusSuccess result. An empty slice is
// reported as StatusNoData so callers never branch on len(Records).
func Success(records []Record) Result {
	if len(records) == 0 {
		return NoData("query matched no rows")
	}
	return Result{Status: StatusSuccess, Records: records}
}

// NoData returns a StatusNoData result with an explanatory message.
func NoData(msg string) Result {
	return Result{Status: StatusNoData, Message: msg}
}

// Errorf returns a StatusError result. The message is the only payload;
// records are always nil on error.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Args carries the three arguments the gateway understands. Zero values
// mean "not provided": tools that accept the argument receive their
// declared default instead.
type Args struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Limit    int    `json:"limit,omitempty" yaml:"limit,omitempty"`
	Months   int    `json:"months,omitempty" yaml:"months,omitempty"`
}

// Spec declares which arguments a tool accepts, which it requires, the
// defaults it applies, and the fields its records carry.
type Spec struct {
	// Summary is a one-line description shown by the tools command.
	Summary string `json:"summary" yaml:"summary"`

	// AcceptsCategory permits the category argument; RequiresCategory
	// additionally rejects invocations that omit it.
	AcceptsCategory  bool `json:"accepts_category,omitempty" yaml:"accepts_category,omitempty"`
	RequiresCategory bool `json:"requires_category,omitempty" yaml:"requires_category,omitempty"`

	// AcceptsLimit permits the limit argument; DefaultLimit fills it
	// when omitted. Same shape for months.
	AcceptsLimit  bool `json:"accepts_limit,omitempty" yaml:"accepts_limit,omitempty"`
	DefaultLimit  int  `json:"default_limit,omitempty" yaml:"default_limit,omitempty"`
	AcceptsMonths bool `json:"accepts_months,omitempty" yaml:"accepts_months,omitempty"`
	DefaultMonths int  `json:"default_months,omitempty" yaml:"default_months,omitempty"`

	// Fields lists record keys in rendering order.
	Fields []string `json:"fields" yaml:"fields"`
}

// Tool is one callable data tool. Invoke receives arguments the registry
// has already validated and defaulted; it must honor ctx cancellation and
// must return rather than panic on execution faults.
type Tool interface {
	Name() string
	Spec() Spec
	Invoke(ctx context.Context, args Args) Result
}

// Categories returns the product categories tools recognize, in canonical
// form and fixed order.
func Categories() []string {
	return []string{
		"Electronics",
		"Clothing",
		"Home and Garden",
		"Sports",
		"Grocery",
	}
}

// NormalizeCategory maps a case-insensitive category name to its canonical
// form. The second return is false when the name is not a known category.
func NormalizeCategory(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, c := range Categories() {
		if strings.EqualFold(trimmed, c) {
			return c, true
		}
	}
	return "", false
}
