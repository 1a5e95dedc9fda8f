package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Decision audit records
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    rule_id TEXT NOT NULL,
    rule_sha TEXT NOT NULL,
    outcome TEXT NOT NULL,
    elapsed_us INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    payload_hash TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
CREATE INDEX IF NOT EXISTS idx_decisions_rule_id ON decisions(rule_id);
CREATE INDEX IF NOT EXISTS idx_decisions_rule_sha ON decisions(rule_sha);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
