package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver. Default: "sqlite"
	Driver string

	// WALMode enables write-ahead logging. Default: true
	WALMode bool

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "retain.db",
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSQLiteStore opens (creating if needed) a journal database.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, newStoreError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, newStoreError("sqlite", "open", fmt.Errorf("unknown driver %q", config.Driver))
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "journal.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, newStoreError(config.Driver, "open", err)
	}

	// PRAGMAs are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("journal opened",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	backend := s.config.Driver

	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStoreError(backend, "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return newStoreError(backend, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStoreError(backend, "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newStoreError(backend, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStoreError(backend, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStoreError(backend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	names, err := json.Marshal(run.DroppedNames)
	if err != nil {
		return newStoreError(s.config.Driver, "record", err)
	}

	var errorVal interface{}
	if run.Error != "" {
		errorVal = run.Error
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, job, source, started_at, duration_ms,
			status, error, kept, dropped, warnings, dropped_names
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Job, run.Source, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
		run.Status, errorVal, run.Kept, run.Dropped, run.Warnings, string(names),
	)
	if err != nil {
		return newStoreError(s.config.Driver, "record", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]*Run, error) {
	var conditions []string
	var args []interface{}
	if q.Job != "" {
		conditions = append(conditions, "job = ?")
		args = append(args, q.Job)
	}
	if !q.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, q.Since.UnixMilli())
	}

	query := `SELECT id, job, source, started_at, duration_ms, status, error,
		kept, dropped, warnings, dropped_names FROM runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT %d", q.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStoreError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		var (
			r          Run
			startedMs  int64
			durationMs int64
			errText    sql.NullString
			names      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Job, &r.Source, &startedMs, &durationMs, &r.Status, &errText,
			&r.Kept, &r.Dropped, &r.Warnings, &names); err != nil {
			return nil, newStoreError(s.config.Driver, "scan", err)
		}
		r.StartedAt = time.UnixMilli(startedMs).UTC()
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Error = errText.String
		if names.Valid && names.String != "" {
			if err := json.Unmarshal([]byte(names.String), &r.DroppedNames); err != nil {
				return nil, newStoreError(s.config.Driver, "scan", err)
			}
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError(s.config.Driver, "list", err)
	}
	return runs, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, newStoreError(s.config.Driver, "prune", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, newStoreError(s.config.Driver, "prune", err)
	}
	if n > 0 {
		s.logger.Info("pruned journal", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if cerr := s.db.Close(); cerr != nil {
			err = newStoreError(s.config.Driver, "close", cerr)
		}
	})
	return err
}

// Open builds a store from a driver name. "memory" returns a MemoryStore;
// anything else is passed to NewSQLiteStore.
func Open(driver, path string, busyTimeout time.Duration) (Store, error) {
	if driver == "memory" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(&SQLiteConfig{
		Path:        path,
		Driver:      driver,
		WALMode:     true,
		BusyTimeout: busyTimeout,
	})
}
