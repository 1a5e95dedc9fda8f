// Package handlers implements the HTTP handlers for the decision API.
//
// Routes:
//
//	POST /api/v1/rulesets        upload and activate a ruleset document
//	GET  /api/v1/rulesets/active identity of the active ruleset
//	POST /api/v1/evaluate        evaluate one event
//	POST /api/v1/evaluate/batch  evaluate a batch of events
//	GET  /api/v1/audit/records   query the decision audit log
//	GET  /api/v1/audit/stats     aggregate decision statistics
//	GET  /health                 liveness
//	GET  /ready                  readiness (ruleset loaded)
//
// Error responses share one envelope:
//
//	{"error": {"message": "...", "type": "parse_error"}}
//
// with types parse_error (400), rule_validation_error (422), no_ruleset
// (409), bad_request (400) and internal_error (500).
package handlers
