package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRuleset(&cfg.Ruleset)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateRegistry(&cfg.Registry)...)
	errs = append(errs, validateGenerate(&cfg.Generate)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateRuleset validates ruleset source configuration.
func validateRuleset(cfg *RulesetConfig) []FieldError {
	var errs []FieldError

	// An empty path is allowed: the server can start without a ruleset and
	// receive one over the API. Watching requires a path to watch.
	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "ruleset.path",
			Message: "path is required when watch is enabled",
		})
	}

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "ruleset.debounce_interval",
			Message: "debounce interval must be positive",
		})
	}
	if cfg.DebounceInterval > time.Minute {
		errs = append(errs, FieldError{
			Field:   "ruleset.debounce_interval",
			Message: "debounce interval exceeds reasonable limit (1m)",
		})
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If auditing is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.path",
			Message: "SQLite path is required when audit is enabled",
		})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.max_open_conns",
			Message: "max open connections must be non-negative",
		})
	}
	if cfg.SQLite.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.busy_timeout",
			Message: "busy timeout must be positive",
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}
	if cfg.Recorder.AsyncBuffer > 1000000 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer exceeds reasonable limit (1,000,000)",
		})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}

	if cfg.Query.DefaultLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit must be at least 1",
		})
	}
	if cfg.Query.MaxLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.query.max_limit",
			Message: "max limit must be at least 1",
		})
	}
	if cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit cannot exceed max limit",
		})
	}

	return errs
}

// validateRegistry validates ruleset registry configuration.
func validateRegistry(cfg *RegistryConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "registry.path",
			Message: "path is required when registry is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "registry.busy_timeout",
			Message: "busy timeout must be positive",
		})
	}

	return errs
}

// validateGenerate validates rule generation configuration.
func validateGenerate(cfg *GenerateConfig) []FieldError {
	var errs []FieldError

	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "generate.endpoint",
			Message: "endpoint is required",
		})
	} else if _, err := url.Parse(cfg.Endpoint); err != nil {
		errs = append(errs, FieldError{
			Field:   "generate.endpoint",
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "generate.model",
			Message: "model is required",
		})
	}

	// API key can be empty here; it is often injected via THEMIS_GENERATE_API_KEY
	// and the gen command fails with a clear error when it is missing.

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "generate.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxTokens < 0 {
		errs = append(errs, FieldError{
			Field:   "generate.max_tokens",
			Message: "max tokens must be non-negative",
		})
	}
	if cfg.Temperature < 0.0 || cfg.Temperature > 2.0 {
		errs = append(errs, FieldError{
			Field:   "generate.temperature",
			Message: "temperature must be between 0.0 and 2.0",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "metrics namespace is required when metrics are enabled",
			})
		}
		for i, b := range cfg.Metrics.EvaluationDurationBuckets {
			if b <= 0 {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.evaluation_duration_buckets",
					Message: "histogram buckets must be positive",
				})
				break
			}
			if i > 0 && b <= cfg.Metrics.EvaluationDurationBuckets[i-1] {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.evaluation_duration_buckets",
					Message: "histogram buckets must be strictly increasing",
				})
				break
			}
		}
	}

	return errs
}
