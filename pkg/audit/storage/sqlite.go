package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/themis/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists an audit record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	query := `
		INSERT INTO decisions (
			id, rule_id, rule_sha, outcome, elapsed_us, timestamp, payload_hash, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.RuleID,
		record.RulesetSHA,
		record.Outcome,
		record.ElapsedMicros,
		record.Timestamp.UTC(),
		record.PayloadHash,
		record.RecordedAt.UTC(),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves audit records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, rule_id, rule_sha, outcome, elapsed_us, timestamp, payload_hash, recorded_at FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sqlQuery += " ORDER BY timestamp " + sortOrder(query)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record := &audit.Record{}
		err := rows.Scan(
			&record.ID,
			&record.RuleID,
			&record.RulesetSHA,
			&record.Outcome,
			&record.ElapsedMicros,
			&record.Timestamp,
			&record.PayloadHash,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of audit records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Stats aggregates decisions with timestamps at or after since.
func (s *SQLiteStorage) Stats(ctx context.Context, since time.Time) (*audit.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			AVG(elapsed_us),
			MAX(elapsed_us),
			COUNT(DISTINCT rule_id)
		FROM decisions
		WHERE timestamp >= ?
	`

	var (
		total  int64
		avg    sql.NullFloat64
		max    sql.NullInt64
		unique int64
	)
	if err := s.db.QueryRowContext(ctx, query, since.UTC()).Scan(&total, &avg, &max, &unique); err != nil {
		return nil, audit.NewStorageError("sqlite", "stats", err)
	}

	return &audit.Stats{
		TotalDecisions:   total,
		AvgElapsedMicros: avg.Float64,
		MaxElapsedMicros: max.Int64,
		UniqueRules:      unique,
	}, nil
}

// Delete removes audit records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite audit storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without the WHERE keyword) and its arguments.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.RuleID != "" {
		conditions = append(conditions, "rule_id = ?")
		args = append(args, query.RuleID)
	}
	if query.RulesetSHA != "" {
		conditions = append(conditions, "rule_sha = ?")
		args = append(args, query.RulesetSHA)
	}
	if query.StartTime != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, query.StartTime.UTC())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, query.EndTime.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// sortOrder maps the query's sort order to SQL, defaulting to newest first.
func sortOrder(query *audit.Query) string {
	if strings.EqualFold(query.SortOrder, "asc") {
		return "ASC"
	}
	return "DESC"
}
