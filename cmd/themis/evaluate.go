package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/engine"
)

var evaluateFlags struct {
	rulesetFile string
	eventFile   string
	format      string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate events against a ruleset",
	Long: `Evaluate JSON events against a ruleset file.

The event input holds a single JSON object or an array of objects. Each
event is evaluated independently: rules run top to bottom and the first
match wins. Pass "-" to read events from standard input.

Examples:
  # Evaluate a single event
  themis evaluate --ruleset rules.yaml --event event.json

  # Pipe an event in
  echo '{"amount": 1500}' | themis evaluate -r rules.yaml -e -

  # JSON output for scripting
  themis evaluate -r rules.yaml -e event.json --format json`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.rulesetFile, "ruleset", "r", "", "ruleset file")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.eventFile, "event", "e", "", `event JSON file ("-" for stdin)`)
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "text", "output format: text, json")

	// Mark required flags - panic if this fails as it's a programming error
	for _, flag := range []string{"ruleset", "event"} {
		if err := evaluateCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(evaluateFlags.format)
	if err != nil {
		return err
	}

	eng, _, err := loadRuleset(evaluateFlags.rulesetFile)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	events, err := readEvents(evaluateFlags.eventFile)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	decisions, err := eng.EvaluateMany(events)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if format == cli.FormatJSON {
		// A single event renders as one decision (or null), an array as
		// an array.
		if len(decisions) == 1 {
			return cli.WriteJSON(os.Stdout, decisions[0])
		}
		return cli.WriteJSON(os.Stdout, decisions)
	}

	for i, decision := range decisions {
		if len(decisions) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("Event %d:\n", i+1)
		}
		printDecision(decision)
	}
	return nil
}

func printDecision(decision *engine.Decision) {
	if decision == nil {
		fmt.Println("No rules matched")
		return
	}

	outcome, err := json.Marshal(decision.Outcome)
	if err != nil {
		outcome = []byte(fmt.Sprintf("%v", decision.Outcome))
	}

	fmt.Printf("Rule ID: %s\n", decision.RuleID)
	fmt.Printf("Outcome: %s\n", outcome)
	fmt.Printf("Elapsed: %dµs\n", decision.ElapsedMicros)
}
