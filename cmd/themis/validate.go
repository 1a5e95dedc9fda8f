package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
)

var validateFlags struct {
	rulesetFile string
	format      string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a ruleset file",
	Long: `Validate a ruleset file without starting a server.

The validate command parses the document and runs the same checks an
engine applies before activating a ruleset:
  - YAML/JSON syntax
  - document structure (version, rules, outcomes)
  - condition grammar (known types, well-formed operands)
  - unique rule ids

On success it prints the canonical SHA-256 the ruleset would serve under.

Examples:
  # Validate a ruleset
  themis validate --ruleset rules.yaml

  # JSON output for CI/CD
  themis validate --ruleset rules.yaml --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rulesetFile, "ruleset", "r", "", "ruleset file to validate")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")

	// Mark required flags - panic if this fails as it's a programming error
	if err := validateCmd.MarkFlagRequired("ruleset"); err != nil {
		panic(fmt.Sprintf("failed to mark ruleset flag as required: %v", err))
	}
}

// ValidationReport is the validate command's result for a ruleset file.
type ValidationReport struct {
	File      string `json:"file"`
	Valid     bool   `json:"valid"`
	Version   string `json:"version,omitempty"`
	RuleCount int    `json:"rule_count,omitempty"`
	RuleSHA   string `json:"rule_sha,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}

	report := validateRulesetFile(validateFlags.rulesetFile)

	if format == cli.FormatJSON {
		if err := cli.WriteJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		fmt.Printf("Validating %s...\n", report.File)
		if report.Valid {
			fmt.Println("✓ Syntax valid")
			fmt.Printf("✓ %d rules, all conditions valid\n", report.RuleCount)
			fmt.Printf("Rule SHA: %s\n", report.RuleSHA)
		} else {
			fmt.Printf("✗ Error: %s\n", report.Error)
		}
	}

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}

func validateRulesetFile(path string) ValidationReport {
	report := ValidationReport{File: path}

	eng, rs, err := loadRuleset(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	sha, _ := eng.RulesetSHA()
	report.Valid = true
	report.Version = rs.Version
	report.RuleCount = len(rs.Rules)
	report.RuleSHA = sha
	return report
}
