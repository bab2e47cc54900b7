// Package duckdb persists reconstructed isoforms and change tables to a
// queryable DuckDB database.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/betsig/GeneStructureTools/internal/compare"
	"github.com/betsig/GeneStructureTools/internal/isoform"
)

// Store manages a DuckDB connection for batch results.
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
			return nil, fmt.Errorf("create output directory: %w", err)
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS isoform_exons (
		isoform_id VARCHAR,
		event_id VARCHAR,
		transcript_id VARCHAR,
		set_label VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		seqname VARCHAR,
		exon_number INTEGER,
		start BIGINT,
		"end" BIGINT,
		strand TINYINT
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS orf_changes (
		event_id VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		transcript_id VARCHAR,
		id_x VARCHAR,
		id_y VARCHAR,
		frame_x INTEGER,
		frame_y INTEGER,
		orf_length_x BIGINT,
		orf_length_y BIGINT,
		utr5_x BIGINT,
		utr5_y BIGINT,
		utr3_x BIGINT,
		utr3_y BIGINT,
		nmd_x VARCHAR,
		nmd_y VARCHAR,
		similarity DOUBLE,
		similarity_na BOOLEAN,
		filtered VARCHAR,
		pvalue DOUBLE,
		psi_delta DOUBLE,
		PRIMARY KEY (event_id, transcript_id, id_x, id_y)
	)`)
	return err
}

// InsertPairs stores the exon rows of every isoform pair.
func (s *Store) InsertPairs(pairs []isoform.Pair) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO isoform_exons VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	insert := func(iso *isoform.Isoform) error {
		for _, e := range iso.Exons {
			if _, err := stmt.Exec(iso.ID, iso.EventID, iso.TranscriptID, iso.Set,
				iso.GeneID, iso.GeneName, iso.Seqname,
				e.ExonNumber, e.Start, e.End, e.Strand); err != nil {
				return err
			}
		}
		return nil
	}

	for _, p := range pairs {
		if err := insert(p.X); err != nil {
			return fmt.Errorf("insert isoform %s: %w", p.X.ID, err)
		}
		if err := insert(p.Y); err != nil {
			return fmt.Errorf("insert isoform %s: %w", p.Y.ID, err)
		}
	}

	return tx.Commit()
}

// InsertChanges stores change records.
func (s *Store) InsertChanges(changes []compare.Change) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO orf_changes VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range changes {
		if _, err := stmt.Exec(
			ch.EventID, ch.GeneID, ch.GeneName, ch.TranscriptID,
			ch.IDX, ch.IDY, ch.FrameX, ch.FrameY,
			ch.ORFLengthX, ch.ORFLengthY,
			ch.UTR5X, ch.UTR5Y, ch.UTR3X, ch.UTR3Y,
			string(ch.NMDX), string(ch.NMDY),
			ch.Similarity, ch.SimilarityNA,
			ch.Filtered, ch.PValue, ch.PsiDelta,
		); err != nil {
			return fmt.Errorf("insert change %s: %w", ch.EventID, err)
		}
	}

	return tx.Commit()
}

// ChangeCount returns the number of stored change records.
func (s *Store) ChangeCount() (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM orf_changes`).Scan(&count)
	return count, err
}

// IsoformCount returns the number of distinct stored isoforms.
func (s *Store) IsoformCount() (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT isoform_id) FROM isoform_exons`).Scan(&count)
	return count, err
}
