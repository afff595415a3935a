// Package storage provides SQLite-based persistence for script state and run
// history. Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrUnsupportedValue is returned by Persist for values that are not nil, a
// bool, a number or a string.
var ErrUnsupportedValue = errors.New("storage: unsupported value type")

// Value kinds stored in the kv table.
const (
	kindNil    = "nil"
	kindBool   = "bool"
	kindNumber = "number"
	kindString = "string"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// RunRecord summarises one finished headless run.
type RunRecord struct {
	ID            int64
	Script        string
	Frames        int
	MeanMS        float64
	P99MS         float64
	MaxMS         float64
	DrawCalls     int
	TransformHash uint64
	CreatedAt     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			kind TEXT NOT NULL,
			num REAL,
			str TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			script TEXT NOT NULL,
			frames INTEGER NOT NULL,
			mean_ms REAL NOT NULL DEFAULT 0,
			p99_ms REAL NOT NULL DEFAULT 0,
			max_ms REAL NOT NULL DEFAULT 0,
			draw_calls INTEGER NOT NULL DEFAULT 0,
			transform_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_script ON runs(script, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Persist stores value under namespace/key, replacing any previous value.
// Integers are stored as numbers and come back from Restore as float64.
func (s *Store) Persist(namespace, key string, value any) error {
	kind, num, str, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (namespace, key, kind, num, str, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace, key) DO UPDATE SET
		   kind = excluded.kind, num = excluded.num, str = excluded.str, updated_at = excluded.updated_at`,
		namespace, key, kind, num, str,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot persist %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Restore returns the value stored under namespace/key. The second result is
// false when the key was never persisted.
func (s *Store) Restore(namespace, key string) (any, bool, error) {
	var kind string
	var num sql.NullFloat64
	var str sql.NullString

	err := s.db.QueryRow(
		"SELECT kind, num, str FROM kv WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&kind, &num, &str)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot restore %s/%s: %w", namespace, key, err)
	}

	switch kind {
	case kindNil:
		return nil, true, nil
	case kindBool:
		return num.Float64 != 0, true, nil
	case kindNumber:
		return num.Float64, true, nil
	case kindString:
		return str.String, true, nil
	default:
		return nil, false, fmt.Errorf("storage: unknown value kind %q for %s/%s", kind, namespace, key)
	}
}

// Keys lists the keys stored in a namespace in lexical order.
func (s *Store) Keys(namespace string) ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv WHERE namespace = ? ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return keys, nil
}

// ClearNamespace deletes every key in a namespace.
func (s *Store) ClearNamespace(namespace string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE namespace = ?", namespace)
	if err != nil {
		return fmt.Errorf("storage: cannot clear %s: %w", namespace, err)
	}
	return nil
}

func encodeValue(value any) (kind string, num sql.NullFloat64, str sql.NullString, err error) {
	switch v := value.(type) {
	case nil:
		return kindNil, num, str, nil
	case bool:
		f := 0.0
		if v {
			f = 1
		}
		return kindBool, sql.NullFloat64{Float64: f, Valid: true}, str, nil
	case float64:
		return kindNumber, sql.NullFloat64{Float64: v, Valid: true}, str, nil
	case float32:
		return kindNumber, sql.NullFloat64{Float64: float64(v), Valid: true}, str, nil
	case int:
		return kindNumber, sql.NullFloat64{Float64: float64(v), Valid: true}, str, nil
	case int64:
		return kindNumber, sql.NullFloat64{Float64: float64(v), Valid: true}, str, nil
	case uint32:
		return kindNumber, sql.NullFloat64{Float64: float64(v), Valid: true}, str, nil
	case string:
		return kindString, num, sql.NullString{String: v, Valid: true}, nil
	default:
		return "", num, str, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (script, frames, mean_ms, p99_ms, max_ms, draw_calls, transform_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Script, r.Frames, r.MeanMS, r.P99MS, r.MaxMS, r.DrawCalls, formatHash(r.TransformHash),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Runs retrieves the most recent runs, newest first. An empty script name
// lists runs of every script.
func (s *Store) Runs(script string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, script, frames, mean_ms, p99_ms, max_ms, draw_calls, transform_hash, created_at
		 FROM runs
		 WHERE ? = '' OR script = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		script, script, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var hash string
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Script, &r.Frames, &r.MeanMS, &r.P99MS, &r.MaxMS, &r.DrawCalls, &hash, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if r.TransformHash, err = strconv.ParseUint(hash, 16, 64); err != nil {
			return nil, fmt.Errorf("storage: bad transform hash %q: %w", hash, err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
