package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/golden"
)

var testFlags struct {
	rulesetFile string
	goldenFile  string
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run golden regression cases",
	Long: `Execute golden cases against a ruleset.

A golden case file pins events to the decisions a ruleset must produce.
Each case names an event and the expected rule id (empty when no rule
should match), optionally with the full expected outcome. Run the cases
in CI to catch rule edits that change decisions you rely on.

Case Format (YAML):
  cases:
    - name: "large transfers get review"
      event:
        amount: 25000
      expect_rule_id: "high-value-review"
      expect_outcome:
        decision: "review"

    - name: "small transfers match nothing"
      event:
        amount: 10
      expect_rule_id: ""

Examples:
  # Run golden cases
  themis test --ruleset rules.yaml --golden cases.yaml`,
	RunE: runGoldenCases,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testFlags.rulesetFile, "ruleset", "r", "", "ruleset file to test")
	testCmd.Flags().StringVarP(&testFlags.goldenFile, "golden", "g", "", "golden case file")

	// Mark required flags - panic if this fails as it's a programming error
	for _, flag := range []string{"ruleset", "golden"} {
		if err := testCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}
}

func runGoldenCases(cmd *cobra.Command, args []string) error {
	cases, err := golden.LoadFile(testFlags.goldenFile)
	if err != nil {
		return cli.NewCommandError("test", fmt.Errorf("failed to load cases: %w", err))
	}

	eng, _, err := loadRuleset(testFlags.rulesetFile)
	if err != nil {
		return cli.NewCommandError("test", fmt.Errorf("failed to load ruleset: %w", err))
	}

	fmt.Println("Running golden cases...")
	fmt.Println()

	results := golden.Run(eng, cases)

	passed := 0
	failed := 0
	for _, result := range results {
		if result.Passed {
			passed++
			fmt.Printf("✓ %s\n", result.Name)
		} else {
			failed++
			fmt.Printf("✗ %s\n", result.Name)
			fmt.Printf("  %s\n", result.Detail)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d cases run, %d passed, %d failed\n", len(results), passed, failed)

	if failed > 0 {
		fmt.Println()
		fmt.Println("Failed cases:")
		for _, result := range results {
			if !result.Passed {
				fmt.Printf("  - %s\n", result.Name)
			}
		}
		return cli.NewCommandError("test", fmt.Errorf("%d of %d cases failed", failed, len(results)))
	}

	return nil
}
