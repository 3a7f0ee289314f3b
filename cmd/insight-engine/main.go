// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the insight-engine CLI.
// Implements: prd001-pipeline, prd005-retail-data, prd006-market-feed,
//             prd008-seed-data (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/insight-engine/internal/secrets"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the insight-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "insight-engine",
	Short: "Parallel research pipeline over retail sales data",
	Long: `insight-engine runs a multi-stage research workflow: three analysts gather
internal sales figures, market coverage, and historical trends in parallel,
then a synthesizer merges their findings into one research brief.

Use seed to populate the sales database, run to execute the pipeline for a
research question, query to invoke a single data tool directly, and tools to
list the tools analysts can call.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./insight-engine.yaml or ~/.config/insight-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("insight-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "insight-engine"))
		}
	}

	viper.SetEnvPrefix("INSIGHT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig resolves the run configuration: explicit flags win over
// config file values, which win over the shared defaults.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.Store.Path = stringSetting(cmd, "db", "store.path", "data/retail.db")
	cfg.Market.Endpoint = stringSetting(cmd, "market-endpoint", "market.endpoint", "")
	cfg.Market.APIKey = viper.GetString("market.api_key")
	if cfg.Market.APIKey == "" {
		cfg.Market.APIKey = secrets.Resolve(loadedSecrets, secrets.MarketAPIKey,
			"INSIGHT_ENGINE_MARKET_API_KEY")
	}
	cfg.Market.Timeout = viper.GetDuration("market.timeout")
	cfg.Market.UserAgent = viper.GetString("market.user_agent")
	cfg.Market.MaxRetries = viper.GetInt("market.max_retries")
	cfg.Worker.Timeout = viper.GetDuration("worker.timeout")
	cfg.Worker.ToolTimeout = viper.GetDuration("worker.tool_timeout")
	cfg.Worker.MaxToolCalls = viper.GetInt("worker.max_tool_calls")
	cfg.Policy = types.FailurePolicy(stringSetting(cmd, "policy", "policy", ""))

	return cfg.WithDefaults()
}

// stringSetting reads a string from an explicitly set flag, then the config
// file, then the fallback. Commands that do not define the flag fall
// through to the config file.
func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
