package config

import "time"

// Config is the root configuration structure for Themis. It contains all
// configuration sections for the HTTP API, ruleset loading, the audit
// trail, the version registry, rule drafting, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Ruleset contains configuration for ruleset loading: document path,
	// hot reload, and change attribution.
	Ruleset RulesetConfig `yaml:"ruleset"`

	// Audit contains configuration for decision audit recording, storage,
	// and retention.
	Audit AuditConfig `yaml:"audit"`

	// Registry contains configuration for the ruleset version registry.
	Registry RegistryConfig `yaml:"registry"`

	// Generate contains configuration for LLM-assisted rule drafting.
	Generate GenerateConfig `yaml:"generate"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	// before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// RulesetConfig contains configuration for ruleset loading.
type RulesetConfig struct {
	// Path is the ruleset document to load. Format is chosen by extension:
	// .json is JSON, everything else is YAML.
	// Default: "./rules.yaml"
	Path string `yaml:"path"`

	// Author is recorded against every ruleset version the server loads.
	// Default: "local"
	Author string `yaml:"author"`

	// Watch enables automatic reloading when the ruleset document changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after a file event before a
	// reload fires. Editor save sequences produce several events; the
	// debounce collapses them into one reload.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// AuditConfig contains configuration for the decision audit trail.
type AuditConfig struct {
	// Enabled controls whether decisions are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// SQLite contains audit storage configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query limit configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration for audit storage.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains async audit recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for enqueueing and writing a record.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains audit retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain audit records. Records older
	// than this are eligible for deletion. 0 keeps records forever.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep. 0 is unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains audit query limit configuration.
type QueryConfig struct {
	// DefaultLimit is the number of records returned when a query does not
	// specify a limit.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records a single query may return.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// RegistryConfig contains configuration for the ruleset version registry.
type RegistryConfig struct {
	// Enabled controls whether loaded rulesets are recorded in the registry.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the file path for the registry SQLite database.
	// Default: "data/registry.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// GenerateConfig contains configuration for LLM-assisted rule drafting.
type GenerateConfig struct {
	// Endpoint is the chat-completions URL of an OpenAI-compatible API.
	// Default: "https://api.openai.com/v1/chat/completions"
	Endpoint string `yaml:"endpoint"`

	// Model is the model name to request.
	// Default: "gpt-4o-mini"
	Model string `yaml:"model"`

	// APIKey is the bearer token for the API. This should typically be
	// provided via the THEMIS_GENERATE_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for a drafting request.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxTokens caps the completion length.
	// Default: 2048
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls sampling randomness (0.0 to 2.0). Drafting
	// wants near-deterministic output.
	// Default: 0.2
	Temperature float64 `yaml:"temperature"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "themis"
	Namespace string `yaml:"namespace"`

	// EvaluationDurationBuckets defines histogram buckets for evaluation
	// duration in seconds. Evaluations are linear scans over in-memory
	// rules, so the default buckets run from 1µs to 16ms.
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
}
