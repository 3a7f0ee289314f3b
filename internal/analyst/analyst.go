// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyst provides the strategies the pipeline ships with: three
// parallel research analysts and the synthesizer that merges their
// findings. Each analyst derives a deterministic call plan from the task,
// walks it through the tool gateway, and condenses the results into a
// Finding with exact figures. Tool errors escalate to worker failures;
// empty results are narrated as gaps instead.
// Implements: prd007-analysts (R1-R5);
//
//	docs/ARCHITECTURE § Analysts, § Synthesis.
package analyst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
)

// Team returns the three analyst strategies in their declared order.
func Team() []worker.Strategy {
	return []worker.Strategy{
		InternalData{},
		MarketResearch{},
		TrendAnalyst{},
	}
}

// DetectCategory returns the first product category named in the question,
// matched case-insensitively, in canonical form. ok is false when the
// question names none.
func DetectCategory(question string) (string, bool) {
	lower := strings.ToLower(question)
	for _, c := range tool.Categories() {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c, true
		}
	}
	return "", false
}

// escalate converts a gateway error result into a worker failure. Analysts
// call it before planning their next step so a broken backend stops the
// worker rather than producing a finding built on nothing.
func escalate(history []worker.Exchange) error {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	if last.Result.Status == tool.StatusError {
		return fmt.Errorf("tool %s failed: %s", last.Call.Tool, last.Result.Message)
	}
	return nil
}

// usd formats a dollar amount with thousands separators, keeping cents.
func usd(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteByte('$')
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// signedPct formats a percentage with an explicit sign, e.g. "+12.34%".
func signedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// number reads a numeric record field regardless of whether the scanner
// produced an int64 or a float64. Missing or null fields read as 0.
func number(rec tool.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// str reads a string record field, empty when missing.
func str(rec tool.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

// succeeded lists the tools in history that returned usable records.
func succeeded(history []worker.Exchange) []string {
	var names []string
	for _, ex := range history {
		if ex.Result.OK() {
			names = append(names, ex.Call.Tool)
		}
	}
	return names
}
