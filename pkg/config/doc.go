// Package config defines the configuration structure for Themis and the
// loading pipeline that produces a validated Config from a YAML file,
// defaults, and environment variable overrides.
//
// # Loading Sequence
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Defaults (DefaultConfig)
//  2. YAML file (LoadConfig)
//  3. Environment variables (LoadConfigWithEnvOverrides)
//
// The decoder is seeded with DefaultConfig before the file is parsed, so a
// field absent from the file keeps its default while an explicit value,
// including an explicit false, is honored.
//
// # Environment Variables
//
// Overrides follow the naming convention THEMIS_SECTION_FIELD:
//
//	THEMIS_SERVER_LISTEN_ADDRESS=0.0.0.0:8080
//	THEMIS_RULESET_PATH=/etc/themis/rules.yaml
//	THEMIS_AUDIT_SQLITE_PATH=/var/lib/themis/audit.db
//	THEMIS_TELEMETRY_LOGGING_LEVEL=debug
//
// # Validation
//
// Validate checks the whole configuration and collects every violation into
// a single ValidationError, so an operator sees all problems at once rather
// than fixing them one restart at a time.
package config
