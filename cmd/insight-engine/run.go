// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/insight-engine/internal/analyst"
	"github.com/pdiddy/insight-engine/internal/market"
	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/internal/retail"
	"github.com/pdiddy/insight-engine/internal/tool"
	"github.com/pdiddy/insight-engine/internal/worker"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [question]",
	Short: "Run the research pipeline for a question",
	Long: `Run executes the full pipeline: the three analysts query their sources in
parallel, publish findings to the run's shared state, and the synthesizer
merges them into a research brief once all findings are in.

Progress goes to stderr; the brief goes to stdout. A failed run prints the
failure cause and the findings committed before the failure.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("task", "", "research question (alternative to positional args)")
	runCmd.Flags().String("db", "", "sales database file (default data/retail.db)")
	runCmd.Flags().String("market-endpoint", "", "market feed base URL (empty disables external coverage)")
	runCmd.Flags().String("policy", "", "failure policy: fail-fast or best-effort (default fail-fast)")
	runCmd.Flags().Bool("json", false, "output the full run result as JSON")
	runCmd.Flags().String("out", "", "also save the run result to a YAML file")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("task")
	if question == "" {
		question = strings.Join(args, " ")
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("provide a research question: insight-engine run \"How is Electronics performing?\"")
	}

	cfg := pipelineConfig(cmd)

	store, err := retail.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if n, err := store.Count(cmd.Context()); err != nil {
		return err
	} else if n == 0 {
		fmt.Fprintln(os.Stderr, "warning: sales database is empty; run `insight-engine seed` first")
	}

	registry := tool.NewRegistry(cfg.Worker.ToolTimeout)
	registry.MustRegister(retail.Tools(store)...)
	registry.MustRegister(market.NewSearchTool(market.NewClient(cfg.Market)))

	engine := worker.NewEngine(registry, cfg.Worker)
	team, err := pipeline.NewFanOut("research_team", engine, analyst.Team(), cfg.Policy)
	if err != nil {
		return err
	}
	synth, err := pipeline.NewSynthesis("synthesizer", analyst.AnalystKeys, "research_brief", analyst.Synthesizer{})
	if err != nil {
		return err
	}
	if cfg.Policy == types.BestEffort {
		// Best-effort runs finish with whatever findings survived; the
		// brief names the missing ones as gaps.
		synth = synth.WithPartialInputs()
	}
	p, err := pipeline.New(team, synth)
	if err != nil {
		return err
	}

	result := p.Execute(cmd.Context(), types.Task{Question: question}, os.Stderr)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeRunFile(out, cfg, result); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved run to", out)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding run result: %w", err)
		}
	} else {
		renderResult(result)
	}

	if result.Status == types.RunFailed {
		return fmt.Errorf("run %s failed: %s", result.RunID, result.FailureCause)
	}
	return nil
}

func renderResult(result types.PipelineResult) {
	brief, ok := result.Final.(types.Brief)
	if !ok {
		fmt.Printf("Run %s: %s\n", result.RunID, result.Status)
		for _, r := range result.Results {
			fmt.Printf("  %-28s %-18s %s\n", r.Worker, r.OutputKey, r.Status)
			if r.Err != "" {
				fmt.Printf("    %s\n", r.Err)
			}
		}
		return
	}

	fmt.Println(brief.Title)
	fmt.Println(strings.Repeat("=", len(brief.Title)))
	fmt.Println()
	fmt.Println(brief.Headline)

	for _, section := range brief.Sections {
		fmt.Printf("\n%s [%s]\n", section.Title, section.Key)
		for _, point := range section.Points {
			fmt.Println("  -", point)
		}
	}

	if len(brief.Recommendations) > 0 {
		fmt.Println("\nRecommendations")
		for _, rec := range brief.Recommendations {
			fmt.Println("  -", rec)
		}
	}
	if len(brief.Gaps) > 0 {
		fmt.Println("\nGaps")
		for _, gap := range brief.Gaps {
			fmt.Println("  -", gap)
		}
	}

	fmt.Printf("\n%d workers, %s total\n", len(result.Results)-1, result.Elapsed.Round(time.Millisecond))
}

// runFile is the durable YAML artifact for one run.
type runFile struct {
	SavedAt time.Time            `yaml:"saved_at"`
	Config  types.PipelineConfig `yaml:"config"`
	Result  types.PipelineResult `yaml:"result"`
}

func writeRunFile(path string, cfg types.PipelineConfig, result types.PipelineResult) error {
	// The API key stays out of the artifact.
	cfg.Market.APIKey = ""

	data, err := yaml.Marshal(runFile{
		SavedAt: time.Now().UTC(),
		Config:  cfg,
		Result:  result,
	})
	if err != nil {
		return fmt.Errorf("encoding run file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run file: %w", err)
	}
	return nil
}
