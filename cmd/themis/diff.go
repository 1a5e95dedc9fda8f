package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/registry"
)

var auditDiffCmd = &cobra.Command{
	Use:   "diff <sha> <sha>",
	Short: "Diff two recorded rulesets",
	Long: `Show a line diff between two ruleset versions recorded in the registry.

SHAs may be abbreviated to any unique prefix, so the 12-character values
printed by "themis log" work directly.

Examples:
  # Diff two recorded rulesets
  themis audit diff 3e1f6b09a2c4 9d847fe210bb`,
	Args: cobra.ExactArgs(2),
	RunE: runAuditDiff,
}

func init() {
	auditCmd.AddCommand(auditDiffCmd)
}

func runAuditDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return cli.NewCommandError("audit diff", err)
	}
	defer reg.Close()

	ctx := cmd.Context()

	fromSHA, err := resolveSHA(ctx, reg, args[0])
	if err != nil {
		return cli.NewCommandError("audit diff", err)
	}
	toSHA, err := resolveSHA(ctx, reg, args[1])
	if err != nil {
		return cli.NewCommandError("audit diff", err)
	}

	diff, err := reg.Diff(ctx, fromSHA, toSHA)
	if err != nil {
		return cli.NewCommandError("audit diff", err)
	}

	fmt.Print(diff)
	return nil
}

// resolveSHA expands an abbreviated SHA to the full recorded value. Full
// 64-character SHAs pass through without a registry lookup.
func resolveSHA(ctx context.Context, reg *registry.Registry, ref string) (string, error) {
	if len(ref) == 64 {
		return ref, nil
	}
	if ref == "" {
		return "", fmt.Errorf("empty ruleset sha")
	}

	// List is capped; prefixes older than the window need the full SHA.
	changes, err := reg.List(ctx, 10000)
	if err != nil {
		return "", err
	}

	var match string
	for _, change := range changes {
		if !strings.HasPrefix(change.SHA, ref) {
			continue
		}
		if match != "" && match != change.SHA {
			return "", fmt.Errorf("ambiguous ruleset sha prefix %q", ref)
		}
		match = change.SHA
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", registry.ErrUnknownSHA, ref)
	}
	return match, nil
}
