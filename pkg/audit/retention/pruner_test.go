package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/audit/storage"
)

// storeAgedRecord stores a record whose timestamp is the given number of days old.
func storeAgedRecord(t *testing.T, store audit.Storage, id string, daysOld int) {
	t.Helper()

	record := &audit.Record{
		ID:        id,
		RuleID:    "r1",
		Timestamp: time.Now().AddDate(0, 0, -daysOld),
	}
	if err := store.Store(context.Background(), record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
}

// TestPruner_PruneOldRecords tests pruning records older than retention period.
func TestPruner_PruneOldRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7

	pruner := NewPruner(store, config)

	ctx := context.Background()

	storeAgedRecord(t, store, "old-1", 10)
	storeAgedRecord(t, store, "old-2", 8)
	storeAgedRecord(t, store, "recent-1", 5)
	storeAgedRecord(t, store, "recent-2", 3)

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 4 {
		t.Fatalf("Expected 4 records, got %d", count)
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 2 {
		t.Errorf("Expected 2 deleted records, got %d", deleted)
	}

	count, _ = store.Count(ctx, &audit.Query{})
	if count != 2 {
		t.Errorf("Expected 2 remaining records, got %d", count)
	}

	results, _ := store.Query(ctx, &audit.Query{})
	for _, r := range results {
		if r.ID == "old-1" || r.ID == "old-2" {
			t.Errorf("Old record %s should have been deleted", r.ID)
		}
	}
}

// TestPruner_RetentionDisabled tests that pruning is skipped when retention is 0.
func TestPruner_RetentionDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 0 // Disabled

	pruner := NewPruner(store, config)

	ctx := context.Background()
	storeAgedRecord(t, store, "old-record", 100)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 0 {
		t.Errorf("Expected 0 deleted records when retention disabled, got %d", deleted)
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 1 {
		t.Errorf("Expected 1 record to remain, got %d", count)
	}
}

// TestPruner_EmptyStorage tests pruning an empty storage.
func TestPruner_EmptyStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	pruner := NewPruner(store, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 deleted records on empty storage, got %d", deleted)
	}
}

// TestPruner_CustomRetentionPeriod tests a shorter retention window.
func TestPruner_CustomRetentionPeriod(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 30

	pruner := NewPruner(store, config)

	ctx := context.Background()
	storeAgedRecord(t, store, "ancient", 60)
	storeAgedRecord(t, store, "borderline", 29)
	storeAgedRecord(t, store, "fresh", 1)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted record, got %d", deleted)
	}

	results, _ := store.Query(ctx, &audit.Query{})
	for _, r := range results {
		if r.ID == "ancient" {
			t.Error("Record outside retention window should have been deleted")
		}
	}
}

// TestPruner_PruneByCount tests count-based pruning of the oldest records.
func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := &Config{
		RetentionDays: 0, // Age-based pruning disabled
		MaxRecords:    5,
	}

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 10; i++ {
		record := &audit.Record{
			ID:        fmt.Sprintf("record-%02d", i),
			RuleID:    "r1",
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	if deleted != 5 {
		t.Errorf("Expected 5 deleted records, got %d", deleted)
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 5 {
		t.Errorf("Expected 5 remaining records, got %d", count)
	}

	// The oldest five must be gone, the newest five must remain.
	results, _ := store.Query(ctx, &audit.Query{SortOrder: "asc"})
	if len(results) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(results))
	}
	if results[0].ID != "record-05" {
		t.Errorf("Expected oldest survivor record-05, got %s", results[0].ID)
	}
}

// TestPruner_CountWithinLimit tests that count-based pruning is a no-op
// when the record count is at or below the limit.
func TestPruner_CountWithinLimit(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := &Config{
		RetentionDays: 0,
		MaxRecords:    10,
	}

	pruner := NewPruner(store, config)

	ctx := context.Background()
	storeAgedRecord(t, store, "a", 1)
	storeAgedRecord(t, store, "b", 2)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 deleted records, got %d", deleted)
	}
}

// TestPruner_BothAgeAndCount tests both phases running in one pass.
func TestPruner_BothAgeAndCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := &Config{
		RetentionDays: 7,
		MaxRecords:    3,
	}

	pruner := NewPruner(store, config)

	ctx := context.Background()

	// Four records past the retention window, five within it.
	for i, daysOld := range []int{12, 11, 10, 9} {
		storeAgedRecord(t, store, fmt.Sprintf("old-%d", i), daysOld)
	}
	for i, daysOld := range []int{5, 4, 3, 2, 1} {
		storeAgedRecord(t, store, fmt.Sprintf("recent-%d", i), daysOld)
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	// Age phase removes 4, count phase trims the remaining 5 down to 3.
	if deleted != 6 {
		t.Errorf("Expected 6 deleted records, got %d", deleted)
	}

	count, _ := store.Count(ctx, &audit.Query{})
	if count != 3 {
		t.Errorf("Expected 3 remaining records, got %d", count)
	}
}

// BenchmarkPruner_Prune benchmarks a pruning pass over a populated store.
func BenchmarkPruner_Prune(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store := storage.NewMemoryStorage()
		now := time.Now()
		for j := 0; j < 1000; j++ {
			record := &audit.Record{
				ID:        fmt.Sprintf("record-%d", j),
				RuleID:    "r1",
				Timestamp: now.AddDate(0, 0, -j%200),
			}
			_ = store.Store(ctx, record)
		}
		pruner := NewPruner(store, &Config{RetentionDays: 90})
		b.StartTimer()

		_, _ = pruner.Prune(ctx)
	}
}
