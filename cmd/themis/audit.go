package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/audit/storage"
	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the decision audit trail",
	Long:  `Query and summarize recorded decisions, and diff recorded ruleset versions.`,
}

var auditLogFlags struct {
	ruleID string
	sha    string
	since  time.Duration
	limit  int
	format string
}

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recorded decisions",
	Long: `List decisions from the audit trail, newest first.

Examples:
  # Last 20 decisions
  themis audit log

  # Decisions produced by one rule in the last hour
  themis audit log --rule-id high-value-transfer --since 1h

  # Decisions under a specific ruleset version, as JSON
  themis audit log --sha 3e1f6b09a2c4... --format json`,
	RunE: runAuditLog,
}

var auditStatsFlags struct {
	since  time.Duration
	format string
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded decisions",
	Long: `Aggregate decision counts and latencies over a time window.

Examples:
  # Stats for the last 24 hours
  themis audit stats

  # Stats for the last week
  themis audit stats --since 168h`,
	RunE: runAuditStats,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditLogCmd)
	auditCmd.AddCommand(auditStatsCmd)

	auditLogCmd.Flags().StringVar(&auditLogFlags.ruleID, "rule-id", "", "filter by rule ID")
	auditLogCmd.Flags().StringVar(&auditLogFlags.sha, "sha", "", "filter by ruleset SHA")
	auditLogCmd.Flags().DurationVar(&auditLogFlags.since, "since", 0, "only decisions newer than this (e.g. 1h, 30m)")
	auditLogCmd.Flags().IntVarP(&auditLogFlags.limit, "limit", "n", 20, "maximum number of records")
	auditLogCmd.Flags().StringVar(&auditLogFlags.format, "format", "text", "output format (text, json)")

	auditStatsCmd.Flags().DurationVar(&auditStatsFlags.since, "since", 24*time.Hour, "aggregation window")
	auditStatsCmd.Flags().StringVar(&auditStatsFlags.format, "format", "text", "output format (text, json)")
}

func runAuditLog(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditLogFlags.format)
	if err != nil {
		return cli.NewCommandError("audit log", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	store, err := openAuditStorage(cfg)
	if err != nil {
		return cli.NewCommandError("audit log", err)
	}
	defer store.Close()

	query := &audit.Query{
		RuleID:     auditLogFlags.ruleID,
		RulesetSHA: auditLogFlags.sha,
		Limit:      auditLogFlags.limit,
	}
	if auditLogFlags.since > 0 {
		start := time.Now().Add(-auditLogFlags.since)
		query.StartTime = &start
	}

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("audit log", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %.12s  %-24s %6dµs  %s\n",
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.RulesetSHA,
			rec.RuleID,
			rec.ElapsedMicros,
			rec.Outcome,
		)
	}
	return nil
}

func runAuditStats(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditStatsFlags.format)
	if err != nil {
		return cli.NewCommandError("audit stats", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	store, err := openAuditStorage(cfg)
	if err != nil {
		return cli.NewCommandError("audit stats", err)
	}
	defer store.Close()

	since := time.Now().Add(-auditStatsFlags.since)

	stats, err := store.Stats(cmd.Context(), since)
	if err != nil {
		return cli.NewCommandError("audit stats", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, stats)
	}

	fmt.Printf("Audit statistics since %s\n", since.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Total decisions: %d\n", stats.TotalDecisions)
	fmt.Printf("  Unique rules:    %d\n", stats.UniqueRules)
	fmt.Printf("  Avg latency:     %.1fµs\n", stats.AvgElapsedMicros)
	fmt.Printf("  Max latency:     %dµs\n", stats.MaxElapsedMicros)
	return nil
}

// openAuditStorage opens the configured audit database for read access.
func openAuditStorage(cfg *config.Config) (*storage.SQLiteStorage, error) {
	if !cfg.Audit.Enabled {
		return nil, fmt.Errorf("audit is disabled in configuration")
	}
	return storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Audit.SQLite.Path,
		MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
		WALMode:      cfg.Audit.SQLite.WALMode,
		BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
	})
}
