// Package recorder turns engine decisions into audit records and writes
// them to a storage backend asynchronously.
//
// # Recording Flow
//
//  1. The engine evaluates an event and produces a decision
//  2. Record() builds an audit record from the decision and the event
//  3. The record is enqueued on a buffered channel (non-blocking)
//  4. A background goroutine drains the channel and writes to storage
//  5. Close() drains remaining records before shutdown
//
// # Basic Usage
//
//	recorder := recorder.NewRecorder(storage, &recorder.Config{
//	    Enabled:      true,
//	    AsyncBuffer:  1000,
//	    WriteTimeout: 5 * time.Second,
//	})
//	defer recorder.Close()
//
//	decision, err := eng.Evaluate(event)
//	if err == nil && decision != nil {
//	    recorder.Record(ctx, decision, event)
//	}
//
// # Payload Fingerprints
//
// The audit trail never stores event payloads. Each record carries a
// truncated SHA-256 fingerprint of the canonicalized payload instead,
// which is enough to correlate identical events across records:
//
//   - Payloads are canonicalized per RFC 8785 before hashing
//   - The fingerprint keeps the first 16 hex characters of the digest
//   - Empty or unencodable payloads are marked "unknown"
//
// # Backpressure
//
// When the channel buffer is full, Record() waits up to WriteTimeout for
// space and then drops the record, returning an *audit.RecorderError. A
// full buffer slows callers down but never blocks them indefinitely.
package recorder
