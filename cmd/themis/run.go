package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/audit/recorder"
	"mercator-hq/themis/pkg/audit/retention"
	"mercator-hq/themis/pkg/audit/storage"
	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/engine"
	"mercator-hq/themis/pkg/loader"
	"mercator-hq/themis/pkg/registry"
	"mercator-hq/themis/pkg/server"
	"mercator-hq/themis/pkg/telemetry/logging"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	rulesetPath   string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the decision API server",
	Long: `Start the decision API server with the specified configuration.

The server loads the configured ruleset, then serves evaluation requests
over HTTP. Successful loads are recorded in the version registry, and
decisions are written to the audit trail when auditing is enabled. With
ruleset watching enabled, edits to the ruleset file reload atomically; a
bad edit leaves the previous ruleset serving.

Examples:
  # Start with default config
  themis run

  # Start with custom config
  themis run --config /etc/themis/config.yaml

  # Override listen address and ruleset
  themis run --listen 0.0.0.0:8080 --ruleset /srv/themis/rules.yaml

  # Validate config without starting the server
  themis run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVarP(&runFlags.rulesetPath, "ruleset", "r", "", "override ruleset file path")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.rulesetPath != "" {
		cfg.Ruleset.Path = runFlags.rulesetPath
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Cancelled on SIGINT/SIGTERM; a second signal exits immediately.
	ctx := cli.SetupSignalHandler()

	// Audit trail
	var (
		auditStore    audit.Storage
		auditRecorder *recorder.Recorder
	)
	if cfg.Audit.Enabled {
		slog.Info("initializing audit storage", "path", cfg.Audit.SQLite.Path)

		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
			WALMode:      cfg.Audit.SQLite.WALMode,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open audit storage: %w", err)
		}
		defer store.Close()
		auditStore = store

		auditRecorder = recorder.NewRecorder(store, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
		})
		defer auditRecorder.Close()

		// Retention runs on its cron schedule until shutdown.
		if cfg.Audit.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Audit.Retention.Days,
				PruneSchedule: cfg.Audit.Retention.PruneSchedule,
				MaxRecords:    cfg.Audit.Retention.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("audit retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Audit trail initialized")
	}

	// Ruleset version registry
	var reg *registry.Registry
	if cfg.Registry.Enabled {
		slog.Info("opening ruleset registry", "path", cfg.Registry.Path)

		reg, err = registry.NewRegistryWithConfig(registry.Config{
			Path:        cfg.Registry.Path,
			BusyTimeout: cfg.Registry.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open ruleset registry: %w", err)
		}
		defer reg.Close()

		fmt.Println("✓ Ruleset registry opened")
	}

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Engine and ruleset manager
	eng := engine.New(logger)
	source := loader.NewFileSource(cfg.Ruleset.Path, logger)

	manager, err := loader.NewManager(loader.Config{
		Author:           cfg.Ruleset.Author,
		Watch:            cfg.Ruleset.Watch,
		Path:             cfg.Ruleset.Path,
		DebounceInterval: cfg.Ruleset.DebounceInterval,
	}, source, eng, reg, collector, logger)
	if err != nil {
		return fmt.Errorf("failed to create ruleset manager: %w", err)
	}

	if err := manager.Load(ctx); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initial ruleset load failed: %w", err))
	}

	sha, _ := eng.RulesetSHA()
	fmt.Printf("✓ Ruleset loaded (%d rules, sha %.12s)\n", eng.RuleCount(), sha)

	if cfg.Ruleset.Watch {
		go func() {
			if err := manager.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("ruleset watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Watching %s for changes\n", cfg.Ruleset.Path)
	}

	// HTTP server
	deps := server.Dependencies{
		Engine:     eng,
		Loader:     manager,
		Parser:     parser.NewParser(),
		AuditStore: auditStore,
		Collector:  collector,
	}
	// Assigning a nil *Recorder would make the interface non-nil.
	if auditRecorder != nil {
		deps.Recorder = auditRecorder
	}

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, deps, logger)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until signal, context cancellation, or server error.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Themis v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("ruleset source", "path", cfg.Ruleset.Path, "watch", cfg.Ruleset.Watch)
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "path", cfg.Audit.SQLite.Path)
	}
	if cfg.Registry.Enabled {
		slog.Debug("registry enabled", "path", cfg.Registry.Path)
	}
}
