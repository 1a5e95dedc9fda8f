package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/audit/storage"
)

func seedRecords(t *testing.T, store audit.Storage, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		record := &audit.Record{
			ID:            fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			RuleID:        "high-value",
			RulesetSHA:    "abc123",
			Outcome:       `{"decision":"flag"}`,
			ElapsedMicros: int64(10 + i),
			Timestamp:     time.Now().Add(-time.Duration(i) * time.Minute),
			PayloadHash:   "deadbeefdeadbeef",
			RecordedAt:    time.Now(),
		}
		if err := store.Store(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAuditRecordsHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer func() { _ = store.Close() }()
	seedRecords(t, store, 5)

	handler := NewAuditRecordsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/records", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp AuditRecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 5 {
		t.Errorf("count = %d, want 5", resp.Count)
	}
	if len(resp.Records) != 5 {
		t.Errorf("records = %d, want 5", len(resp.Records))
	}
}

func TestAuditRecordsHandler_Limit(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer func() { _ = store.Close() }()
	seedRecords(t, store, 5)

	handler := NewAuditRecordsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/records?limit=2", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp AuditRecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestAuditRecordsHandler_RuleIDFilter(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer func() { _ = store.Close() }()
	seedRecords(t, store, 3)

	other := &audit.Record{
		ID:          "11111111-1111-1111-1111-111111111111",
		RuleID:      "velocity",
		RulesetSHA:  "abc123",
		Outcome:     `{"decision":"block"}`,
		Timestamp:   time.Now(),
		PayloadHash: "cafecafecafecafe",
		RecordedAt:  time.Now(),
	}
	if err := store.Store(context.Background(), other); err != nil {
		t.Fatal(err)
	}

	handler := NewAuditRecordsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/records?rule_id=velocity", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp AuditRecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Records[0].RuleID != "velocity" {
		t.Errorf("rule_id = %q, want velocity", resp.Records[0].RuleID)
	}
}

func TestAuditRecordsHandler_BadParams(t *testing.T) {
	handler := NewAuditRecordsHandler(storage.NewMemoryStorage())

	tests := []string{
		"/api/v1/audit/records?limit=zero",
		"/api/v1/audit/records?limit=-5",
		"/api/v1/audit/records?since=yesterday",
		"/api/v1/audit/records?since=0",
	}

	for _, target := range tests {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, w.Code)
		}
	}
}

func TestAuditStatsHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer func() { _ = store.Close() }()
	seedRecords(t, store, 4)

	handler := NewAuditStatsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/stats?hours=48", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp AuditStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.WindowHours != 48 {
		t.Errorf("window_hours = %d, want 48", resp.WindowHours)
	}
	if resp.Stats == nil {
		t.Fatal("stats = nil")
	}
	if resp.Stats.TotalDecisions != 4 {
		t.Errorf("total_decisions = %d, want 4", resp.Stats.TotalDecisions)
	}
	if resp.Stats.UniqueRules != 1 {
		t.Errorf("unique_rules_triggered = %d, want 1", resp.Stats.UniqueRules)
	}
}

func TestAuditStatsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewAuditStatsHandler(storage.NewMemoryStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/stats", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
