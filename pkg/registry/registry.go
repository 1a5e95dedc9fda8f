package registry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Change is one recorded ruleset version.
type Change struct {
	// SHA is the canonical SHA-256 of the ruleset, as computed by the engine.
	SHA string `json:"rule_sha"`

	// Version is the ruleset document's declared version string.
	Version string `json:"version"`

	// Author identifies who loaded the ruleset (operator, service account).
	Author string `json:"author"`

	// PromptSHA is the fingerprint of the drafting prompt for
	// LLM-generated rulesets. Empty for hand-written rulesets.
	PromptSHA string `json:"prompt_sha,omitempty"`

	// Generator names the model that drafted the ruleset, if any.
	Generator string `json:"generator,omitempty"`

	// RuleCount is the number of rules in the ruleset.
	RuleCount int `json:"rule_count"`

	// Content is the full ruleset document. Omitted from listings;
	// fetch a single change with Get to read it.
	Content string `json:"content,omitempty"`

	// CreatedAt is when the ruleset was first recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Config configures the registry database.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Registry stores ruleset changes in SQLite.
//
// The registry uses a write-ahead log for concurrent read performance and a
// single-writer connection pool, matching SQLite's locking model.
type Registry struct {
	db        *sql.DB
	mu        sync.RWMutex
	closeOnce sync.Once

	// preparedStatements contains pre-compiled SQL statements for reuse
	recordStmt *sql.Stmt
	getStmt    *sql.Stmt
	latestStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// NewRegistry opens (or creates) a registry database with default settings.
func NewRegistry(dbPath string) (*Registry, error) {
	return NewRegistryWithConfig(Config{
		Path:        dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewRegistryWithConfig opens a registry database with custom configuration.
func NewRegistryWithConfig(cfg Config) (*Registry, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// The modernc driver takes pragmas via _pragma query parameters.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	r := &Registry{db: db}

	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := r.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return r, nil
}

// initSchema creates the database schema if it doesn't exist.
func (r *Registry) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rule_changes (
		rule_sha TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		author TEXT NOT NULL,
		prompt_sha TEXT NOT NULL DEFAULT '',
		generator TEXT NOT NULL DEFAULT '',
		rule_count INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rule_changes_created_at ON rule_changes(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (r *Registry) prepareStatements() error {
	var err error

	r.recordStmt, err = r.db.Prepare(`
		INSERT INTO rule_changes (rule_sha, version, author, prompt_sha, generator, rule_count, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (rule_sha) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	r.getStmt, err = r.db.Prepare(`
		SELECT rule_sha, version, author, prompt_sha, generator, rule_count, content, created_at
		FROM rule_changes
		WHERE rule_sha = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	r.latestStmt, err = r.db.Prepare(`
		SELECT rule_sha, version, author, prompt_sha, generator, rule_count, content, created_at
		FROM rule_changes
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare latest statement: %w", err)
	}

	r.listStmt, err = r.db.Prepare(`
		SELECT rule_sha, version, author, prompt_sha, generator, rule_count, created_at
		FROM rule_changes
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Record stores a ruleset change. Recording is idempotent: if the SHA is
// already present the existing row is kept unchanged, including its original
// author and timestamp.
func (r *Registry) Record(ctx context.Context, change *Change) error {
	if change == nil {
		return fmt.Errorf("change cannot be nil")
	}
	if change.SHA == "" {
		return fmt.Errorf("change sha cannot be empty")
	}
	if change.Content == "" {
		return fmt.Errorf("change content cannot be empty")
	}

	createdAt := change.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.recordStmt.ExecContext(ctx,
		change.SHA,
		change.Version,
		change.Author,
		change.PromptSHA,
		change.Generator,
		change.RuleCount,
		change.Content,
		createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record change: %w", err)
	}

	return nil
}

// Get retrieves a recorded change by ruleset SHA, including its content.
// Returns (nil, nil) when the SHA has never been recorded.
func (r *Registry) Get(ctx context.Context, sha string) (*Change, error) {
	if sha == "" {
		return nil, fmt.Errorf("sha cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return scanChange(r.getStmt.QueryRowContext(ctx, sha))
}

// Latest returns the most recently recorded change, including its content.
// Returns (nil, nil) when the registry is empty.
func (r *Registry) Latest(ctx context.Context) (*Change, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return scanChange(r.latestStmt.QueryRowContext(ctx))
}

// List returns up to limit changes, newest first. Content is omitted from
// the results; use Get to fetch a full document. A non-positive limit
// defaults to 100.
func (r *Registry) List(ctx context.Context, limit int) ([]*Change, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.listStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	var changes []*Change
	for rows.Next() {
		var (
			change    Change
			createdAt int64
		)
		err := rows.Scan(
			&change.SHA,
			&change.Version,
			&change.Author,
			&change.PromptSHA,
			&change.Generator,
			&change.RuleCount,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		change.CreatedAt = time.Unix(createdAt, 0)
		changes = append(changes, &change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return changes, nil
}

// Close releases resources held by the registry.
// Close is idempotent and safe to call multiple times.
func (r *Registry) Close() error {
	var closeErr error

	r.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{r.recordStmt, r.getStmt, r.latestStmt, r.listStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if r.db != nil {
			_, _ = r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = r.db.Close()
		}
	})

	return closeErr
}

// scanChange scans a single change row, mapping sql.ErrNoRows to (nil, nil).
func scanChange(row *sql.Row) (*Change, error) {
	var (
		change    Change
		createdAt int64
	)
	err := row.Scan(
		&change.SHA,
		&change.Version,
		&change.Author,
		&change.PromptSHA,
		&change.Generator,
		&change.RuleCount,
		&change.Content,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan change: %w", err)
	}

	change.CreatedAt = time.Unix(createdAt, 0)
	return &change, nil
}
