package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mercator-hq/themis/pkg/audit"
)

// maxAuditLimit caps the number of records one query can return.
const maxAuditLimit = 1000

// AuditRecordsResponse is the response body for audit record queries.
type AuditRecordsResponse struct {
	Records []*audit.Record `json:"records"`
	Count   int             `json:"count"`
}

// AuditRecordsHandler serves decision audit records.
type AuditRecordsHandler struct {
	storage audit.Storage
}

// NewAuditRecordsHandler creates the audit record query handler.
func NewAuditRecordsHandler(storage audit.Storage) *AuditRecordsHandler {
	return &AuditRecordsHandler{storage: storage}
}

// ServeHTTP handles GET /api/v1/audit/records with optional query
// parameters rule_id, since (hours, default 24) and limit (default 100).
func (h *AuditRecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sinceHours, err := positiveIntParam(r, "since", 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, err.Error())
		return
	}
	limit, err := positiveIntParam(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, err.Error())
		return
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	startTime := time.Now().Add(-time.Duration(sinceHours) * time.Hour)
	query := &audit.Query{
		RuleID:    r.URL.Query().Get("rule_id"),
		StartTime: &startTime,
		Limit:     limit,
	}

	records, err := h.storage.Query(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrTypeInternal, "audit query failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AuditRecordsResponse{Records: records, Count: len(records)})
}

// AuditStatsResponse is the response body for audit statistics.
type AuditStatsResponse struct {
	WindowHours int          `json:"window_hours"`
	Stats       *audit.Stats `json:"stats"`
}

// AuditStatsHandler serves aggregate decision statistics.
type AuditStatsHandler struct {
	storage audit.Storage
}

// NewAuditStatsHandler creates the audit statistics handler.
func NewAuditStatsHandler(storage audit.Storage) *AuditStatsHandler {
	return &AuditStatsHandler{storage: storage}
}

// ServeHTTP handles GET /api/v1/audit/stats with an optional hours window
// (default 24).
func (h *AuditStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours, err := positiveIntParam(r, "hours", 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, err.Error())
		return
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats, err := h.storage.Stats(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrTypeInternal, "audit stats failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AuditStatsResponse{WindowHours: hours, Stats: stats})
}

// positiveIntParam parses a positive integer query parameter, returning the
// default when the parameter is absent.
func positiveIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + " parameter: " + strconv.Quote(e.value) + " (want a positive integer)"
}
