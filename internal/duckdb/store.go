// Package duckdb persists typing runs in DuckDB and caches parsed
// references on disk. Run tables are append-only and queryable; the
// reference cache is a gob file guarded by source fingerprints.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		created_at TIMESTAMP,
		vcf_path VARCHAR,
		vcf_size BIGINT,
		vcf_modtime TIMESTAMP,
		reference VARCHAR,
		protein VARCHAR,
		tolerance DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS run_edits (
		run_id VARCHAR,
		position BIGINT,
		kind VARCHAR,
		bases VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS run_mutations (
		run_id VARCHAR,
		ordinal INTEGER,
		protein VARCHAR,
		mutation VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS run_matches (
		run_id VARCHAR,
		name VARCHAR,
		first_detected VARCHAR,
		missing_fraction DOUBLE
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// appendRows bulk-inserts rows into table using the Appender API.
func (s *Store) appendRows(ctx context.Context, table string, rows [][]driver.Value) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender for %s: %w", table, err)
	}
	defer appender.Close()

	for _, row := range rows {
		if err := appender.AppendRow(row...); err != nil {
			return fmt.Errorf("append to %s: %w", table, err)
		}
	}

	return appender.Flush()
}
