package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "themis",
	Short: "Themis - rule-based decision engine",
	Long: `Themis is an open-source decision engine that evaluates JSON events
against versioned YAML rulesets.

Rules pair a condition tree with an outcome. Evaluation is first-match-wins
and deterministic: the same ruleset and event always produce the same
decision. Every loaded ruleset is content-addressed by its canonical
SHA-256, every load is recorded in a version registry, and every decision
can be written to a SQLite audit trail.

For more information, visit: https://github.com/mercator-hq/themis`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// loadConfig resolves the configuration for a command. An explicitly
// passed --config must exist; the default path is optional and falls
// back to built-in defaults plus environment overrides.
func loadConfig() (*config.Config, error) {
	if rootCmd.PersistentFlags().Changed("config") {
		return config.LoadConfigWithEnvOverrides(cfgFile)
	}
	return config.LoadConfigIfPresent(cfgFile)
}
