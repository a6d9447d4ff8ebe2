// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of converted documents.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/slidegrid/pkg/types"
)

const defaultListLimit = 50

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the parent
// directory and schema when they do not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
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
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			mode TEXT NOT NULL,
			document_id TEXT,
			visible_name TEXT,
			page_count INTEGER NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one conversion to the ledger.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (source_path, output_path, mode, document_id, visible_name, page_count, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SourcePath, rec.OutputPath, string(rec.Mode), rec.DocumentID,
		rec.VisibleName, rec.PageCount, rec.ConvertedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", rec.SourcePath, err)
	}
	return nil
}

// QueryOptions filters List results.
type QueryOptions struct {
	// Source restricts results to one source path.
	Source string

	// Limit caps the number of rows. Zero means the default of 50; a
	// negative value returns everything.
	Limit int
}

// List returns recorded conversions, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ConversionRecord, error) {
	query := `SELECT source_path, output_path, mode, document_id, visible_name, page_count, converted_at
		FROM conversions`
	var args []any
	if opts.Source != "" {
		query += ` WHERE source_path = ?`
		args = append(args, opts.Source)
	}
	query += ` ORDER BY rowid DESC`

	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var (
			rec         types.ConversionRecord
			mode        string
			documentID  sql.NullString
			visibleName sql.NullString
			convertedAt string
		)
		if err := rows.Scan(&rec.SourcePath, &rec.OutputPath, &mode, &documentID,
			&visibleName, &rec.PageCount, &convertedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Mode = types.OutputMode(mode)
		rec.DocumentID = documentID.String
		rec.VisibleName = visibleName.String
		rec.ConvertedAt, err = time.Parse(time.RFC3339Nano, convertedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", convertedAt, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
