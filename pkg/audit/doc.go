// Package audit defines the decision audit trail: the record written for
// every decision the engine produces, the query model for retrieving
// records, and the Storage interface implemented by the backends in
// pkg/audit/storage.
//
// Records store a short hash of the evaluated event rather than the event
// itself, so the trail proves which payload produced a decision without
// persisting potentially sensitive field values. The full ruleset behind
// each decision is recoverable through pkg/registry via the record's
// ruleset SHA.
//
// Subpackages: storage (SQLite and in-memory backends), recorder (async
// write path), retention (scheduled pruning).
package audit
