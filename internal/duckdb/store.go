// Package duckdb exports query results into a DuckDB database, where they
// can be searched again or handed to other analysis tools.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding exported associations.
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
			return nil, fmt.Errorf("create export directory: %w", err)
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

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS associations (
		study VARCHAR,
		tissue VARCHAR,
		molecular_trait_id VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		gene_id VARCHAR,
		transcript VARCHAR,
		symbol VARCHAR,
		system VARCHAR,
		ma_samples BIGINT,
		maf DOUBLE,
		log_pvalue DOUBLE,
		beta DOUBLE,
		stderr_beta DOUBLE,
		vartype VARCHAR,
		ac BIGINT,
		an BIGINT,
		r2 DOUBLE,
		molecular_trait_object_id VARCHAR,
		median_tpm DOUBLE,
		rsid VARCHAR,
		tss_distance DOUBLE,
		tss_position DOUBLE,
		cs_index VARCHAR,
		cs_size BIGINT,
		pip DOUBLE,
		PRIMARY KEY (chrom, pos, ref, alt, study, tissue, gene_id, molecular_trait_id)
	)`)
	return err
}
