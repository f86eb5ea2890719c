// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a log of asset conversion commands in SQLite so
// failed or slow compilations can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/assetconv/pkg/types"
)

// DefaultDBPath is used when HistoryConfig.DBPath is empty.
const DefaultDBPath = ".assetconv/history.db"

const defaultLimit = 50

// timeFormat has fixed-width fractional seconds so stored timestamps sort
// lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the conversion history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at cfg.DBPath, creating parent
// directories and the schema as needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			asset TEXT NOT NULL,
			result TEXT NOT NULL,
			base_path TEXT NOT NULL,
			command TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			stdout TEXT,
			stderr TEXT,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_asset ON conversions(asset)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one command invocation.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions
			(asset, result, base_path, command, exit_code, stdout, stderr, status, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Asset, rec.Result, rec.BasePath, rec.Command, rec.ExitCode,
		rec.Stdout, rec.Stderr, string(rec.Status),
		rec.StartedAt.UTC().Format(timeFormat), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", rec.Asset, err)
	}
	return nil
}

// QueryOptions filters List results. Zero values mean no filter.
type QueryOptions struct {
	Asset  string
	Status types.ConversionStatus
	Limit  int
}

// List returns recorded conversions, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ConversionRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Asset != "" {
		where = append(where, "asset = ?")
		args = append(args, opts.Asset)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT asset, result, base_path, command, exit_code, stdout, stderr, status, started_at, duration_ms
		FROM conversions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var (
			rec        types.ConversionRecord
			stdout     sql.NullString
			stderr     sql.NullString
			status     string
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&rec.Asset, &rec.Result, &rec.BasePath, &rec.Command, &rec.ExitCode,
			&stdout, &stderr, &status, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Stdout = stdout.String
		rec.Stderr = stderr.String
		rec.Status = types.ConversionStatus(status)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(timeFormat, startedAt); err == nil {
			rec.StartedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes records started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM conversions WHERE started_at < ?`,
		cutoff.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}
