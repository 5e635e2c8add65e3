package journal

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    job TEXT NOT NULL,
    source TEXT NOT NULL,

    -- Unix milliseconds
    started_at INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,

    status TEXT NOT NULL,
    error TEXT,

    kept INTEGER NOT NULL,
    dropped INTEGER NOT NULL,
    warnings INTEGER NOT NULL,

    -- JSON array of names
    dropped_names TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_job_started ON runs(job, started_at);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
