// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/retail"
	"github.com/pdiddy/insight-engine/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the sales database with synthetic retail data",
	Long: `Seed replaces the fct_daily_sales fact table with a deterministic
synthetic dataset: five categories, five regions, ten products per category,
one row per product per region per day. Identical flags always produce an
identical dataset.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("db", "", "sales database file (default data/retail.db)")
	seedCmd.Flags().String("from", "", "window start, YYYY-MM-DD (default 2020-01-01)")
	seedCmd.Flags().String("to", "", "window end, YYYY-MM-DD (default 2024-12-31)")
	seedCmd.Flags().Int64("seed", 0, "noise generator seed (default 42)")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	var genCfg seed.Config
	var err error
	if genCfg.From, err = dateFlag(cmd, "from"); err != nil {
		return err
	}
	if genCfg.To, err = dateFlag(cmd, "to"); err != nil {
		return err
	}
	genCfg.Seed, _ = cmd.Flags().GetInt64("seed")

	store, err := retail.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Seed(cmd.Context(), genCfg, os.Stdout); err != nil {
		return err
	}
	return nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s: %w", name, err)
	}
	return t, nil
}
