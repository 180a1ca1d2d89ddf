// Package archive keeps a local SQLite ledger of exported reports and
// history bundles.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Format identifies the kind of exported artifact.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPDF    Format = "pdf"
	FormatBundle Format = "bundle"
)

// Record is one exported artifact.
type Record struct {
	ID          string            `json:"id"`
	Module      string            `json:"module"`
	Format      Format            `json:"format"`
	Path        string            `json:"path"`
	ResultID    string            `json:"result_id,omitempty"`
	ThreatLevel string            `json:"threat_level,omitempty"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Config configures the ledger.
type Config struct {
	// DatabasePath is the SQLite file. Default: ~/.cybershield/exports.db
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// MaxRecords caps the ledger; older rows are pruned on insert. 0 disables.
	MaxRecords int `yaml:"max_records" json:"max_records"`
}

// DefaultConfig returns the default ledger configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = os.TempDir()
	}
	return &Config{
		DatabasePath: filepath.Join(home, ".cybershield", "exports.db"),
		MaxRecords:   1000,
	}
}

// Store is the SQLite-backed export ledger.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	cfg *Config
}

// Open opens (or creates) the ledger database.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultConfig().DatabasePath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps PRAGMAs and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		format TEXT NOT NULL,
		path TEXT NOT NULL,
		result_id TEXT,
		threat_level TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_module ON exports(module);
	CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts an export record, filling ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	metadataJSON := []byte("{}")
	if len(rec.Metadata) > 0 {
		if data, err := json.Marshal(rec.Metadata); err == nil {
			metadataJSON = data
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (id, module, format, path, result_id, threat_level, size, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Module, string(rec.Format), rec.Path, rec.ResultID,
		rec.ThreatLevel, rec.Size, string(metadataJSON), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}

	if s.cfg.MaxRecords > 0 {
		if _, err := s.pruneLocked(ctx, s.cfg.MaxRecords); err != nil {
			return fmt.Errorf("prune exports: %w", err)
		}
	}
	return nil
}

// RecordFile records an export of the file at path, reading its size.
func (s *Store) RecordFile(ctx context.Context, module string, format Format, path, resultID, level string) (*Record, error) {
	rec := &Record{
		Module:      module,
		Format:      format,
		Path:        path,
		ResultID:    resultID,
		ThreatLevel: level,
	}
	if info, err := os.Stat(path); err == nil {
		rec.Size = info.Size()
	}
	if err := s.Record(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns a record by ID, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, module, format, path, result_id, threat_level, size, metadata, created_at
		FROM exports WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// List returns the most recent records, newest first. An empty module lists
// every module; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, module string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module, format, path, result_id, threat_level, size, metadata, created_at
		FROM exports
		WHERE (? = '' OR module = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, module, module, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of records per module.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT module, COUNT(*) FROM exports GROUP BY module`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var module string
		var n int
		if err := rows.Scan(&module, &n); err != nil {
			return nil, err
		}
		counts[module] = n
	}
	return counts, rows.Err()
}

// Prune keeps the newest keep records and deletes the rest.
// Returns the number of records deleted.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(ctx, keep)
}

func (s *Store) pruneLocked(ctx context.Context, keep int) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM exports WHERE id NOT IN (
			SELECT id FROM exports ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// Ping checks that the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var format string
	var resultID, level, metadataJSON sql.NullString

	if err := row.Scan(
		&rec.ID, &rec.Module, &format, &rec.Path, &resultID,
		&level, &rec.Size, &metadataJSON, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Format = Format(format)
	rec.ResultID = resultID.String
	rec.ThreatLevel = level.String

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "{}" {
		var metadata map[string]string
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err == nil {
			rec.Metadata = metadata
		}
	}
	return &rec, nil
}
