// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/market"
	"github.com/pdiddy/insight-engine/internal/retail"
	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the data tools analysts can call",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	// Listing specs needs no live backends; an unopened store would do,
	// but opening an in-memory one keeps the wiring identical to run.
	store, err := retail.Open(types.StoreConfig{Path: ":memory:"})
	if err != nil {
		return err
	}
	defer store.Close()

	registry := tool.NewRegistry(0)
	registry.MustRegister(retail.Tools(store)...)
	registry.MustRegister(market.NewSearchTool(market.NewClient(types.MarketConfig{})))

	fmt.Printf("%-22s  %-40s  %s\n", "Tool", "Arguments", "Summary")
	fmt.Println(strings.Repeat("-", 100))
	for _, name := range registry.Names() {
		t, _ := registry.Lookup(name)
		spec := t.Spec()
		fmt.Printf("%-22s  %-40s  %s\n", name, argUsage(spec), spec.Summary)
	}
	return nil
}

func argUsage(spec tool.Spec) string {
	var parts []string
	if spec.RequiresCategory {
		parts = append(parts, "category (required)")
	} else if spec.AcceptsCategory {
		parts = append(parts, "category")
	}
	if spec.AcceptsLimit {
		parts = append(parts, fmt.Sprintf("limit (default %d)", spec.DefaultLimit))
	}
	if spec.AcceptsMonths {
		parts = append(parts, fmt.Sprintf("months (default %d)", spec.DefaultMonths))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
