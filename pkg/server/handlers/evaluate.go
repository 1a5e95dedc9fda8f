package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/themis/pkg/engine"
	"mercator-hq/themis/pkg/server/middleware"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// EvaluateRequest is the request body for single-event evaluation.
type EvaluateRequest struct {
	Event engine.Event `json:"event"`
}

// EvaluateResponse is the response body for single-event evaluation.
// Decision is null when no rule matched.
type EvaluateResponse struct {
	Decision *engine.Decision `json:"decision"`
}

// EvaluateHandler evaluates a single event against the active ruleset.
type EvaluateHandler struct {
	engine    *engine.Engine
	recorder  DecisionRecorder
	collector *metrics.Collector
}

// NewEvaluateHandler creates the evaluation handler. The recorder and
// collector are optional; pass nil to disable audit recording or metrics.
func NewEvaluateHandler(eng *engine.Engine, recorder DecisionRecorder, collector *metrics.Collector) *EvaluateHandler {
	return &EvaluateHandler{engine: eng, recorder: recorder, collector: collector}
}

// ServeHTTP handles POST /api/v1/evaluate.
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Event == nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "missing event")
		return
	}

	start := time.Now()
	decision, err := h.engine.Evaluate(req.Event)
	duration := time.Since(start)

	if err != nil {
		h.recordEvaluation(metrics.ResultError, duration, nil)
		if errors.Is(err, engine.ErrNoRuleset) {
			writeError(w, http.StatusConflict, ErrTypeNoRuleset, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		return
	}

	if decision != nil {
		h.recordEvaluation(metrics.ResultMatch, duration, decision)
		h.audit(r, decision, req.Event)
	} else {
		h.recordEvaluation(metrics.ResultNoMatch, duration, nil)
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{Decision: decision})
}

// recordEvaluation updates evaluation metrics for one event.
func (h *EvaluateHandler) recordEvaluation(result string, duration time.Duration, decision *engine.Decision) {
	if h.collector == nil {
		return
	}
	h.collector.RecordEvaluation(result, duration)
	if decision != nil {
		h.collector.RecordDecision(decision.RuleID)
	}
}

// audit enqueues an audit record for a decision. The recorder is async; a
// returned error means the record was dropped after its write timeout.
func (h *EvaluateHandler) audit(r *http.Request, decision *engine.Decision, event engine.Event) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(r.Context(), decision, event); err != nil {
		slog.WarnContext(r.Context(), "audit record dropped",
			"rule_id", decision.RuleID,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
}

// BatchEvaluateRequest is the request body for batch evaluation.
type BatchEvaluateRequest struct {
	Events []engine.Event `json:"events"`
}

// BatchEvaluateResponse carries one entry per input event, null where no
// rule matched.
type BatchEvaluateResponse struct {
	Decisions []*engine.Decision `json:"decisions"`
}

// maxBatchEvents caps the number of events accepted in one batch call.
const maxBatchEvents = 1000

// BatchEvaluateHandler evaluates a batch of events against one snapshot of
// the active ruleset.
type BatchEvaluateHandler struct {
	engine    *engine.Engine
	recorder  DecisionRecorder
	collector *metrics.Collector
}

// NewBatchEvaluateHandler creates the batch evaluation handler.
func NewBatchEvaluateHandler(eng *engine.Engine, recorder DecisionRecorder, collector *metrics.Collector) *BatchEvaluateHandler {
	return &BatchEvaluateHandler{engine: eng, recorder: recorder, collector: collector}
}

// ServeHTTP handles POST /api/v1/evaluate/batch.
func (h *BatchEvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "missing events")
		return
	}
	if len(req.Events) > maxBatchEvents {
		writeError(w, http.StatusRequestEntityTooLarge, ErrTypeBadRequest, "too many events in batch")
		return
	}

	start := time.Now()
	decisions, err := h.engine.EvaluateMany(req.Events)
	duration := time.Since(start)

	if err != nil {
		if h.collector != nil {
			h.collector.RecordEvaluation(metrics.ResultError, duration)
		}
		if errors.Is(err, engine.ErrNoRuleset) {
			writeError(w, http.StatusConflict, ErrTypeNoRuleset, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		return
	}

	// Counters are per event; the batch duration is amortized across
	// events for the histogram.
	perEvent := duration / time.Duration(len(decisions))
	for i, decision := range decisions {
		if h.collector != nil {
			result := metrics.ResultNoMatch
			if decision != nil {
				result = metrics.ResultMatch
				h.collector.RecordDecision(decision.RuleID)
			}
			h.collector.RecordEvaluation(result, perEvent)
		}
		if decision != nil && h.recorder != nil {
			if err := h.recorder.Record(r.Context(), decision, req.Events[i]); err != nil {
				slog.WarnContext(r.Context(), "audit record dropped",
					"rule_id", decision.RuleID,
					"request_id", middleware.GetRequestID(r.Context()),
					"error", err,
				)
			}
		}
	}

	writeJSON(w, http.StatusOK, BatchEvaluateResponse{Decisions: decisions})
}
