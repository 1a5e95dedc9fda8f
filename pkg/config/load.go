package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over DefaultConfig, so fields absent from the file
// keep their defaults. The result is validated before being returned.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention THEMIS_SECTION_FIELD (e.g., THEMIS_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Defaults
//  2. YAML file
//  3. Environment variable overrides
//  4. Validation of the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadConfigIfPresent behaves like LoadConfigWithEnvOverrides, except
// that a missing file is not an error: defaults plus environment
// overrides are returned instead. Commands that can run without a
// configuration file use this so the default --config path does not
// have to exist.
func LoadConfigIfPresent(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}
	return LoadConfigWithEnvOverrides(path)
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format THEMIS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("THEMIS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("THEMIS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	// Ruleset overrides
	if val := os.Getenv("THEMIS_RULESET_PATH"); val != "" {
		cfg.Ruleset.Path = val
	}
	if val := os.Getenv("THEMIS_RULESET_AUTHOR"); val != "" {
		cfg.Ruleset.Author = val
	}
	if val := os.Getenv("THEMIS_RULESET_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ruleset.Watch = b
		}
	}
	if val := os.Getenv("THEMIS_RULESET_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Ruleset.DebounceInterval = d
		}
	}

	// Audit overrides
	if val := os.Getenv("THEMIS_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("THEMIS_AUDIT_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_AUDIT_RECORDER_ASYNC_BUFFER"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Recorder.AsyncBuffer = i
		}
	}
	if val := os.Getenv("THEMIS_AUDIT_RECORDER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Recorder.WriteTimeout = d
		}
	}
	if val := os.Getenv("THEMIS_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("THEMIS_AUDIT_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.Retention.PruneSchedule = val
	}
	if val := os.Getenv("THEMIS_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}

	// Registry overrides
	if val := os.Getenv("THEMIS_REGISTRY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Registry.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_REGISTRY_PATH"); val != "" {
		cfg.Registry.Path = val
	}
	if val := os.Getenv("THEMIS_REGISTRY_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Registry.BusyTimeout = d
		}
	}

	// Generate overrides
	if val := os.Getenv("THEMIS_GENERATE_ENDPOINT"); val != "" {
		cfg.Generate.Endpoint = val
	}
	if val := os.Getenv("THEMIS_GENERATE_MODEL"); val != "" {
		cfg.Generate.Model = val
	}
	if val := os.Getenv("THEMIS_GENERATE_API_KEY"); val != "" {
		cfg.Generate.APIKey = val
	}
	if val := os.Getenv("THEMIS_GENERATE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Generate.Timeout = d
		}
	}
	if val := os.Getenv("THEMIS_GENERATE_MAX_TOKENS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Generate.MaxTokens = i
		}
	}
	if val := os.Getenv("THEMIS_GENERATE_TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Generate.Temperature = f
		}
	}

	// Telemetry overrides
	if val := os.Getenv("THEMIS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("THEMIS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("THEMIS_TELEMETRY_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.AddSource = b
		}
	}
	if val := os.Getenv("THEMIS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("THEMIS_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("THEMIS_TELEMETRY_METRICS_NAMESPACE"); val != "" {
		cfg.Telemetry.Metrics.Namespace = val
	}
}
