package audit

import (
	"context"
	"time"
)

// Record is the persisted audit trail entry for a single decision.
type Record struct {
	// ID is a UUID v4 assigned at recording time.
	ID string `json:"id"`

	// RuleID identifies the rule that produced the decision.
	RuleID string `json:"rule_id"`

	// RulesetSHA is the content hash of the ruleset active at decision time.
	RulesetSHA string `json:"rule_sha"`

	// Outcome is the decision outcome as JSON text.
	Outcome string `json:"outcome"`

	// ElapsedMicros is the evaluation time recorded on the decision.
	ElapsedMicros int64 `json:"elapsed_us"`

	// Timestamp is the decision construction time.
	Timestamp time.Time `json:"timestamp"`

	// PayloadHash is a 16-hex-char prefix of the SHA-256 over the
	// canonical JSON form of the evaluated event, or "unknown" when the
	// event was empty or unavailable.
	PayloadHash string `json:"payload_hash"`

	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`
}

// Query defines filter parameters for retrieving audit records.
type Query struct {
	// RuleID filters by the rule that produced the decision.
	RuleID string `json:"rule_id,omitempty"`

	// RulesetSHA filters by ruleset content hash.
	RulesetSHA string `json:"rule_sha,omitempty"`

	// StartTime and EndTime bound the decision timestamp, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Limit caps the number of records returned. Zero means the backend
	// default (100).
	Limit int `json:"limit,omitempty"`

	// Offset skips N records for pagination.
	Offset int `json:"offset,omitempty"`

	// SortOrder orders results by decision timestamp: "asc" or "desc"
	// (default).
	SortOrder string `json:"sort_order,omitempty"`
}

// Stats aggregates decisions over a time window.
type Stats struct {
	TotalDecisions   int64   `json:"total_decisions"`
	AvgElapsedMicros float64 `json:"avg_elapsed_us"`
	MaxElapsedMicros int64   `json:"max_elapsed_us"`
	UniqueRules      int64   `json:"unique_rules_triggered"`
}

// Storage is the interface for audit record backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, ordered by decision
	// timestamp. Returns an empty slice when nothing matches.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Stats aggregates decisions with timestamps at or after since.
	Stats(ctx context.Context, since time.Time) (*Stats, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Used by retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}
