package handlers

import (
	"net/http"
	"time"

	"mercator-hq/themis/pkg/engine"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler handles readiness check requests. The service is ready once
// a ruleset has been loaded successfully.
type ReadyHandler struct {
	engine *engine.Engine
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(eng *engine.Engine) *ReadyHandler {
	return &ReadyHandler{engine: eng}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sha, loaded := h.engine.RulesetSHA()

	status := "ready"
	statusCode := http.StatusOK
	if !loaded {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":    status,
		"rule_sha":  sha,
		"timestamp": time.Now().Unix(),
	})
}
