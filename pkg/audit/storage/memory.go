package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mercator-hq/themis/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory map.
// Intended for tests and ephemeral deployments; contents are lost on restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store saves a copy of the record in memory.
func (s *MemoryStorage) Store(_ context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query retrieves audit records matching the query filters.
func (s *MemoryStorage) Query(_ context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*audit.Record{}
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			recordCopy := *record
			matched = append(matched, &recordCopy)
		}
	}

	sortRecords(matched, query)

	offset := query.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count returns the number of audit records matching the query filters.
func (s *MemoryStorage) Count(_ context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Stats aggregates decisions with timestamps at or after since.
func (s *MemoryStorage) Stats(_ context.Context, since time.Time) (*audit.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &audit.Stats{}
	var totalElapsed int64
	rules := make(map[string]struct{})

	for _, record := range s.records {
		if record.Timestamp.Before(since) {
			continue
		}
		stats.TotalDecisions++
		totalElapsed += record.ElapsedMicros
		if record.ElapsedMicros > stats.MaxElapsedMicros {
			stats.MaxElapsedMicros = record.ElapsedMicros
		}
		rules[record.RuleID] = struct{}{}
	}

	if stats.TotalDecisions > 0 {
		stats.AvgElapsedMicros = float64(totalElapsed) / float64(stats.TotalDecisions)
	}
	stats.UniqueRules = int64(len(rules))

	return stats, nil
}

// Delete removes audit records matching the query filters.
// Returns the number of records deleted.
func (s *MemoryStorage) Delete(_ context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, record := range s.records {
		if s.matchesQuery(record, query) {
			delete(s.records, id)
			count++
		}
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.Record)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func (s *MemoryStorage) matchesQuery(record *audit.Record, query *audit.Query) bool {
	// Time range filter
	if query.StartTime != nil && record.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Timestamp.After(*query.EndTime) {
		return false
	}

	// Rule/ruleset filter
	if query.RuleID != "" && record.RuleID != query.RuleID {
		return false
	}
	if query.RulesetSHA != "" && record.RulesetSHA != query.RulesetSHA {
		return false
	}

	return true
}

// GetByID retrieves a single audit record by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}

	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// sortRecords orders records by timestamp, falling back to ID so that
// results are deterministic when timestamps collide.
func sortRecords(records []*audit.Record, query *audit.Query) {
	asc := strings.EqualFold(query.SortOrder, "asc")
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			if asc {
				return records[i].ID < records[j].ID
			}
			return records[i].ID > records[j].ID
		}
		if asc {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
