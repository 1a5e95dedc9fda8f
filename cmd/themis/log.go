package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/registry"
)

var logFlags struct {
	limit  int
	format string
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show ruleset change history",
	Long: `Show the ruleset change history recorded in the registry.

Each successful load appends a change with the ruleset's canonical SHA,
its declared version, the author, and the rule count. LLM-drafted
rulesets also carry the drafting prompt's SHA.

Examples:
  # Most recent changes
  themis log

  # Deeper history, as JSON
  themis log --limit 50 --format json`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&logFlags.limit, "limit", "n", 20, "maximum changes to show")
	logCmd.Flags().StringVar(&logFlags.format, "format", "text", "output format: text, json")
}

func runLog(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(logFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return cli.NewCommandError("log", err)
	}
	defer reg.Close()

	changes, err := reg.List(cmd.Context(), logFlags.limit)
	if err != nil {
		return cli.NewCommandError("log", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, changes)
	}

	if len(changes) == 0 {
		fmt.Println("No ruleset changes recorded")
		return nil
	}

	for _, change := range changes {
		fmt.Printf("%s  %.12s  v%-8s %3d rules  %s",
			change.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			change.SHA,
			change.Version,
			change.RuleCount,
			change.Author,
		)
		if change.PromptSHA != "" {
			fmt.Printf("  (llm draft %.12s)", change.PromptSHA)
		}
		fmt.Println()
	}
	return nil
}

// openRegistry opens the configured registry database.
func openRegistry(cfg *config.Config) (*registry.Registry, error) {
	if !cfg.Registry.Enabled {
		return nil, fmt.Errorf("registry is disabled in configuration")
	}
	return registry.NewRegistryWithConfig(registry.Config{
		Path:        cfg.Registry.Path,
		BusyTimeout: cfg.Registry.BusyTimeout,
	})
}
