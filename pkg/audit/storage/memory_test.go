package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/themis/pkg/audit"
)

// TestMemoryStorage_StoreAndQuery tests storing and querying records.
func TestMemoryStorage_StoreAndQuery(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	record := &audit.Record{
		ID:            "test-id-1",
		RuleID:        "high-value-us",
		RulesetSHA:    "abc123",
		Outcome:       `{"decision":"review"}`,
		ElapsedMicros: 42,
		Timestamp:     now,
		PayloadHash:   "deadbeefdeadbeef",
		RecordedAt:    now,
	}

	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	results, err := storage.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
	if results[0].ID != "test-id-1" {
		t.Errorf("Expected ID 'test-id-1', got '%s'", results[0].ID)
	}
	if results[0].Outcome != `{"decision":"review"}` {
		t.Errorf("Expected outcome to round-trip, got '%s'", results[0].Outcome)
	}
}

// TestMemoryStorage_QueryWithTimeRange tests time range filtering.
func TestMemoryStorage_QueryWithTimeRange(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	records := []*audit.Record{
		{ID: "old-record", RuleID: "r1", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "recent-record", RuleID: "r1", Timestamp: now.Add(-30 * time.Minute)},
		{ID: "new-record", RuleID: "r1", Timestamp: now},
	}

	for _, record := range records {
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	startTime := now.Add(-1 * time.Hour)
	results, err := storage.Query(ctx, &audit.Query{StartTime: &startTime})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("Expected 2 records, got %d", len(results))
	}
	for _, r := range results {
		if r.ID == "old-record" {
			t.Error("Old record should not be in results")
		}
	}

	endTime := now.Add(-1 * time.Hour)
	results, err = storage.Query(ctx, &audit.Query{EndTime: &endTime})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
	if results[0].ID != "old-record" {
		t.Errorf("Expected 'old-record', got '%s'", results[0].ID)
	}
}

// TestMemoryStorage_QueryWithFilters tests rule and ruleset filters.
func TestMemoryStorage_QueryWithFilters(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	records := []*audit.Record{
		{ID: "record-1", RuleID: "high-value-us", RulesetSHA: "sha-a", Timestamp: now},
		{ID: "record-2", RuleID: "velocity-check", RulesetSHA: "sha-a", Timestamp: now},
		{ID: "record-3", RuleID: "high-value-us", RulesetSHA: "sha-b", Timestamp: now},
	}

	for _, record := range records {
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	tests := []struct {
		name          string
		query         *audit.Query
		expectedCount int
		expectedIDs   []string
	}{
		{
			name:          "filter by rule id",
			query:         &audit.Query{RuleID: "high-value-us"},
			expectedCount: 2,
			expectedIDs:   []string{"record-1", "record-3"},
		},
		{
			name:          "filter by ruleset sha",
			query:         &audit.Query{RulesetSHA: "sha-a"},
			expectedCount: 2,
			expectedIDs:   []string{"record-1", "record-2"},
		},
		{
			name:          "combined filters",
			query:         &audit.Query{RuleID: "high-value-us", RulesetSHA: "sha-b"},
			expectedCount: 1,
			expectedIDs:   []string{"record-3"},
		},
		{
			name:          "no match",
			query:         &audit.Query{RuleID: "unknown-rule"},
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := storage.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}

			if len(results) != tt.expectedCount {
				t.Errorf("Expected %d records, got %d", tt.expectedCount, len(results))
			}

			foundIDs := make(map[string]bool)
			for _, r := range results {
				foundIDs[r.ID] = true
			}
			for _, expectedID := range tt.expectedIDs {
				if !foundIDs[expectedID] {
					t.Errorf("Expected to find record %s", expectedID)
				}
			}
		})
	}
}

// TestMemoryStorage_QuerySortOrder tests ascending and descending ordering.
func TestMemoryStorage_QuerySortOrder(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		record := &audit.Record{
			ID:        fmt.Sprintf("record-%d", i),
			RuleID:    "r1",
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	// Default order is newest first.
	results, err := storage.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if results[0].ID != "record-2" || results[2].ID != "record-0" {
		t.Errorf("Expected descending order, got %s..%s", results[0].ID, results[2].ID)
	}

	results, err = storage.Query(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if results[0].ID != "record-0" || results[2].ID != "record-2" {
		t.Errorf("Expected ascending order, got %s..%s", results[0].ID, results[2].ID)
	}
}

// TestMemoryStorage_QueryWithPagination tests limit and offset.
func TestMemoryStorage_QueryWithPagination(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 10; i++ {
		record := &audit.Record{
			ID:        fmt.Sprintf("record-%02d", i),
			RuleID:    "r1",
			Timestamp: now.Add(time.Duration(i) * time.Second),
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	results, err := storage.Query(ctx, &audit.Query{Limit: 5})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Expected 5 records, got %d", len(results))
	}

	results, err = storage.Query(ctx, &audit.Query{Limit: 3, Offset: 5, SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(results))
	}
	if results[0].ID != "record-05" {
		t.Errorf("Expected pagination to start at record-05, got %s", results[0].ID)
	}

	results, err = storage.Query(ctx, &audit.Query{Offset: 100})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 records, got %d", len(results))
	}
}

// TestMemoryStorage_Count tests counting records.
func TestMemoryStorage_Count(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	count, err := storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected count 0, got %d", count)
	}

	now := time.Now()
	for i := 0; i < 5; i++ {
		rule := "r1"
		if i >= 3 {
			rule = "r2"
		}
		record := &audit.Record{
			ID:        fmt.Sprintf("record-%d", i),
			RuleID:    rule,
			Timestamp: now,
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	count, err = storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected count 5, got %d", count)
	}

	count, err = storage.Count(ctx, &audit.Query{RuleID: "r2"})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

// TestMemoryStorage_Stats tests aggregate statistics.
func TestMemoryStorage_Stats(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()

	// Empty storage yields zeroed stats.
	stats, err := storage.Stats(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.TotalDecisions != 0 || stats.AvgElapsedMicros != 0 || stats.MaxElapsedMicros != 0 || stats.UniqueRules != 0 {
		t.Errorf("Expected zeroed stats, got %+v", stats)
	}

	records := []*audit.Record{
		{ID: "d1", RuleID: "r1", ElapsedMicros: 10, Timestamp: now},
		{ID: "d2", RuleID: "r1", ElapsedMicros: 30, Timestamp: now},
		{ID: "d3", RuleID: "r2", ElapsedMicros: 20, Timestamp: now},
		{ID: "stale", RuleID: "r3", ElapsedMicros: 500, Timestamp: now.Add(-2 * time.Hour)},
	}
	for _, record := range records {
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	stats, err = storage.Stats(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.TotalDecisions != 3 {
		t.Errorf("Expected 3 decisions, got %d", stats.TotalDecisions)
	}
	if stats.AvgElapsedMicros != 20 {
		t.Errorf("Expected avg 20, got %f", stats.AvgElapsedMicros)
	}
	if stats.MaxElapsedMicros != 30 {
		t.Errorf("Expected max 30, got %d", stats.MaxElapsedMicros)
	}
	if stats.UniqueRules != 2 {
		t.Errorf("Expected 2 unique rules, got %d", stats.UniqueRules)
	}
}

// TestMemoryStorage_Delete tests deleting records.
func TestMemoryStorage_Delete(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 5; i++ {
		rule := "r1"
		if i >= 3 {
			rule = "r2"
		}
		record := &audit.Record{
			ID:        fmt.Sprintf("record-%d", i),
			RuleID:    rule,
			Timestamp: now,
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	deleted, err := storage.Delete(ctx, &audit.Query{RuleID: "r1"})
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}

	count, err := storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 remaining records, got %d", count)
	}

	results, err := storage.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	for _, r := range results {
		if r.RuleID != "r2" {
			t.Errorf("Expected only r2 records, found %s", r.RuleID)
		}
	}
}

// TestMemoryStorage_Close tests closing the storage.
func TestMemoryStorage_Close(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	record := &audit.Record{ID: "test-record", RuleID: "r1", Timestamp: time.Now()}
	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	if err := storage.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if storage.Size() != 0 {
		t.Errorf("Expected storage to be cleared after Close(), got %d records", storage.Size())
	}
}

// TestMemoryStorage_RecordIsolation tests that stored records are isolated from mutations.
func TestMemoryStorage_RecordIsolation(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	original := &audit.Record{
		ID:        "isolation-test",
		RuleID:    "high-value-us",
		Timestamp: time.Now(),
	}
	if err := storage.Store(ctx, original); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	original.RuleID = "mutated-rule"

	results, err := storage.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
	if results[0].RuleID != "high-value-us" {
		t.Errorf("Expected stored record to be isolated from mutations, got rule_id=%s", results[0].RuleID)
	}

	results[0].RuleID = "another-mutation"

	again := storage.GetByID("isolation-test")
	if again == nil {
		t.Fatal("GetByID() returned nil")
	}
	if again.RuleID != "high-value-us" {
		t.Errorf("Expected stored record to be isolated from query result mutations, got rule_id=%s", again.RuleID)
	}
}

// TestMemoryStorage_ThreadSafety tests concurrent access.
func TestMemoryStorage_ThreadSafety(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() { done <- true }()

			record := &audit.Record{
				ID:        fmt.Sprintf("record-%d", id),
				RuleID:    "r1",
				Timestamp: time.Now(),
			}
			if err := storage.Store(ctx, record); err != nil {
				t.Errorf("Store() failed: %v", err)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	count, err := storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 records after concurrent writes, got %d", count)
	}

	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			if _, err := storage.Query(ctx, &audit.Query{}); err != nil {
				t.Errorf("Query() failed: %v", err)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
