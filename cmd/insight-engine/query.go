// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/market"
	"github.com/pdiddy/insight-engine/internal/retail"
	"github.com/pdiddy/insight-engine/internal/tool"
)

var queryCmd = &cobra.Command{
	Use:   "query <tool>",
	Short: "Invoke a single data tool directly",
	Long: `Query runs one tool through the same gateway the analysts use and prints
its records. Useful for inspecting the seeded data or debugging a tool
without running the whole pipeline.

See 'insight-engine tools' for the available tools and their arguments.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("db", "", "sales database file (default data/retail.db)")
	queryCmd.Flags().String("market-endpoint", "", "market feed base URL")
	queryCmd.Flags().String("category", "", "product category argument")
	queryCmd.Flags().Int("limit", 0, "limit argument (tool default when omitted)")
	queryCmd.Flags().Int("months", 0, "months argument (tool default when omitted)")
	queryCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	store, err := retail.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := tool.NewRegistry(cfg.Worker.ToolTimeout)
	registry.MustRegister(retail.Tools(store)...)
	registry.MustRegister(market.NewSearchTool(market.NewClient(cfg.Market)))

	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	months, _ := cmd.Flags().GetInt("months")

	result := registry.Invoke(cmd.Context(), args[0], tool.Args{
		Category: category,
		Limit:    limit,
		Months:   months,
	})

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		renderToolResult(registry, args[0], result)
	}

	if result.Status == tool.StatusError {
		return fmt.Errorf("tool %s: %s", args[0], result.Message)
	}
	return nil
}

func renderToolResult(registry *tool.Registry, name string, result tool.Result) {
	if result.Status != tool.StatusSuccess {
		fmt.Printf("%s: %s\n", result.Status, result.Message)
		return
	}

	fields := fieldOrder(registry, name, result)
	widths := make([]int, len(fields))
	rows := make([][]string, len(result.Records))
	for i, field := range fields {
		widths[i] = len(field)
	}
	for r, rec := range result.Records {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = fmt.Sprintf("%v", rec[field])
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows[r] = row
	}

	for i, field := range fields {
		fmt.Printf("%-*s  ", widths[i], field)
	}
	fmt.Println()
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	fmt.Println(strings.Repeat("-", total))

	for _, row := range rows {
		for i, cell := range row {
			fmt.Printf("%-*s  ", widths[i], cell)
		}
		fmt.Println()
	}
	fmt.Printf("\n%d records\n", len(result.Records))
}

// fieldOrder renders columns in the tool's declared order, falling back to
// whatever keys the first record has.
func fieldOrder(registry *tool.Registry, name string, result tool.Result) []string {
	if t, ok := registry.Lookup(name); ok {
		if fields := t.Spec().Fields; len(fields) > 0 {
			return fields
		}
	}
	var fields []string
	for field := range result.Records[0] {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
