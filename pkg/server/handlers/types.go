package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mercator-hq/themis/pkg/dsl/ast"
	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/dsl/validator"
	"mercator-hq/themis/pkg/engine"
)

// RulesetLoader applies an already-parsed ruleset document to the running
// engine, recording it in the version registry and metrics.
type RulesetLoader interface {
	Apply(ctx context.Context, rs *ast.RuleSet, origin string) error
}

// DecisionRecorder enqueues audit records for decisions.
type DecisionRecorder interface {
	Record(ctx context.Context, decision *engine.Decision, event engine.Event) error
}

// ErrorResponse is the JSON error envelope for all API errors.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error message and a stable machine-readable type.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Error types returned in ErrorDetail.Type.
const (
	ErrTypeParse          = "parse_error"
	ErrTypeRuleValidation = "rule_validation_error"
	ErrTypeNoRuleset      = "no_ruleset"
	ErrTypeBadRequest     = "bad_request"
	ErrTypeInternal       = "internal_error"
)

// writeJSON writes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes the error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Message: message, Type: errType}})
}

// writeLoadError maps a ruleset load failure to its HTTP status: 400 for
// malformed documents, 422 for well-formed documents that break a semantic
// rule, 500 otherwise.
func writeLoadError(w http.ResponseWriter, err error) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadRequest, ErrTypeParse, parseErr.Error())
		return
	}

	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusUnprocessableEntity, ErrTypeRuleValidation, validationErr.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, ErrTypeInternal, err.Error())
}
