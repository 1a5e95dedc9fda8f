package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/generate"
	"mercator-hq/themis/pkg/telemetry/logging"
)

var genFlags struct {
	output   string
	endpoint string
	model    string
}

var genCmd = &cobra.Command{
	Use:   "gen [statement]...",
	Short: "Draft a ruleset from policy statements",
	Long: `Draft a ruleset from plain-language policy statements using an
OpenAI-compatible chat-completions endpoint.

The reply is parsed and safety-validated before anything is written, and
every rule is stamped with generated_by_llm plus the SHA-256 of the
drafting prompt, so provenance survives into the registry and audit
trail. Drafts are proposals: review them before loading.

The endpoint, model and API key come from the generate section of the
configuration (THEMIS_GENERATE_API_KEY is read from the environment);
flags override the file.

Examples:
  # Draft to stdout
  themis gen "Transactions over 10000 require manual review"

  # Several statements into one ruleset, saved for review
  themis gen --output draft.yaml \
    "Transactions over 10000 require manual review" \
    "Transactions from blocked countries are rejected"

  # Draft against a local endpoint
  themis gen --endpoint http://localhost:8000/v1/chat/completions \
    --model llama-3.1-8b "Inactive accounts are rejected"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGen,
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVarP(&genFlags.output, "output", "o", "", "write the draft to a file instead of stdout")
	genCmd.Flags().StringVar(&genFlags.endpoint, "endpoint", "", "override the chat-completions endpoint")
	genCmd.Flags().StringVar(&genFlags.model, "model", "", "override the drafting model")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	if genFlags.endpoint != "" {
		cfg.Generate.Endpoint = genFlags.endpoint
	}
	if genFlags.model != "" {
		cfg.Generate.Model = genFlags.model
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: "text",
		Writer: os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	generator, err := generate.New(generate.Config{
		Endpoint:    cfg.Generate.Endpoint,
		Model:       cfg.Generate.Model,
		APIKey:      cfg.Generate.APIKey,
		Timeout:     cfg.Generate.Timeout,
		MaxTokens:   cfg.Generate.MaxTokens,
		Temperature: cfg.Generate.Temperature,
	}, logger)
	if err != nil {
		return cli.NewCommandError("gen", err)
	}

	fmt.Fprintf(os.Stderr, "Drafting ruleset from %d statement(s) via %s...\n", len(args), cfg.Generate.Model)

	ctx := cli.SetupSignalHandler()
	draft, err := generator.Generate(ctx, args)
	if err != nil {
		return cli.NewCommandError("gen", err)
	}

	if genFlags.output == "" {
		_, err := os.Stdout.Write(draft.Document)
		return err
	}

	if err := os.WriteFile(genFlags.output, draft.Document, 0o644); err != nil {
		return cli.NewCommandError("gen", fmt.Errorf("failed to write draft: %w", err))
	}

	fmt.Printf("✓ Draft written to %s (%d rules)\n", genFlags.output, len(draft.RuleSet.Rules))
	fmt.Printf("Prompt SHA: %s\n", draft.PromptSHA)
	fmt.Println("Review the draft before loading it; drafts never activate automatically.")
	return nil
}
