package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Ruleset defaults
	DefaultRulesetPath     = "./rules.yaml"
	DefaultRulesetAuthor   = "local"
	DefaultRulesetWatch    = false
	DefaultRulesetDebounce = 100 * time.Millisecond

	// Audit defaults
	DefaultAuditEnabled              = true
	DefaultAuditSQLitePath           = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns   = 10
	DefaultAuditSQLiteMaxIdleConns   = 5
	DefaultAuditSQLiteWALMode        = true
	DefaultAuditSQLiteBusyTimeout    = 5 * time.Second
	DefaultAuditRecorderAsyncBuffer  = 1000
	DefaultAuditRecorderWriteTimeout = 5 * time.Second
	DefaultAuditRetentionDays        = 90
	DefaultAuditRetentionSchedule    = "0 3 * * *"
	DefaultAuditRetentionMaxRecords  = int64(0)
	DefaultAuditQueryDefaultLimit    = 100
	DefaultAuditQueryMaxLimit        = 10000

	// Registry defaults
	DefaultRegistryEnabled     = true
	DefaultRegistryPath        = "data/registry.db"
	DefaultRegistryBusyTimeout = 5 * time.Second

	// Generate defaults
	DefaultGenerateEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultGenerateModel       = "gpt-4o-mini"
	DefaultGenerateTimeout     = 60 * time.Second
	DefaultGenerateMaxTokens   = 2048
	DefaultGenerateTemperature = 0.2

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "themis"
)

// DefaultConfig returns a Config with every field set to its default.
// LoadConfig decodes the configuration file over this value, so absent
// fields keep their defaults while explicit values, including explicit
// false booleans, win.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
		},
		Ruleset: RulesetConfig{
			Path:             DefaultRulesetPath,
			Author:           DefaultRulesetAuthor,
			Watch:            DefaultRulesetWatch,
			DebounceInterval: DefaultRulesetDebounce,
		},
		Audit: AuditConfig{
			Enabled: DefaultAuditEnabled,
			SQLite: SQLiteConfig{
				Path:         DefaultAuditSQLitePath,
				MaxOpenConns: DefaultAuditSQLiteMaxOpenConns,
				MaxIdleConns: DefaultAuditSQLiteMaxIdleConns,
				WALMode:      DefaultAuditSQLiteWALMode,
				BusyTimeout:  DefaultAuditSQLiteBusyTimeout,
			},
			Recorder: RecorderConfig{
				AsyncBuffer:  DefaultAuditRecorderAsyncBuffer,
				WriteTimeout: DefaultAuditRecorderWriteTimeout,
			},
			Retention: RetentionConfig{
				Days:          DefaultAuditRetentionDays,
				PruneSchedule: DefaultAuditRetentionSchedule,
				MaxRecords:    DefaultAuditRetentionMaxRecords,
			},
			Query: QueryConfig{
				DefaultLimit: DefaultAuditQueryDefaultLimit,
				MaxLimit:     DefaultAuditQueryMaxLimit,
			},
		},
		Registry: RegistryConfig{
			Enabled:     DefaultRegistryEnabled,
			Path:        DefaultRegistryPath,
			BusyTimeout: DefaultRegistryBusyTimeout,
		},
		Generate: GenerateConfig{
			Endpoint:    DefaultGenerateEndpoint,
			Model:       DefaultGenerateModel,
			Timeout:     DefaultGenerateTimeout,
			MaxTokens:   DefaultGenerateMaxTokens,
			Temperature: DefaultGenerateTemperature,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Path:      DefaultMetricsPath,
				Namespace: DefaultMetricsNamespace,
			},
		},
	}
}
