// Package transdb persists the substitution-table cache: one row per
// distinct 256-byte translation table, labeled with the shortnames of
// every byte-local transform that produces it.
package transdb

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE translations (
	translation_id INTEGER PRIMARY KEY UNIQUE NOT NULL,
	translation BLOB,
	algsstr TEXT
);`

// fetchBatch is how many rows a streaming read buffers from its cursor
// before handing them to the callback.
const fetchBatch = 1000

// Row is one stored translation table.
type Row struct {
	ID          int64  `db:"translation_id"`
	Translation []byte `db:"translation"`
	Algs        string `db:"algsstr"`
}

// Store wraps the sqlite file holding the cache.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens an existing cache file. A missing file is an error: the
// caller decides whether that means "run generate first" or "fall back".
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("substitution-table cache %q: %w", path, err)
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Create makes a fresh cache file, replacing any previous one.
func Create(path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing old cache %q: %w", path, err)
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %q: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Insert writes one table with its joined shortname label as a single
// statement, outside any transaction. InsertAll does not use it; it runs
// its own prepared statement inside one transaction.
func (s *Store) Insert(table []byte, algs string) error {
	_, err := s.db.Exec(
		`INSERT INTO translations (translation, algsstr) VALUES (?, ?)`,
		table, algs)
	return err
}

// InsertAll writes every group in one transaction.
func (s *Store) InsertAll(groups []Group) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		`INSERT INTO translations (translation, algsstr) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if _, err := stmt.Exec(g.Table[:], g.Label()); err != nil {
			return fmt.Errorf("inserting %s: %w", g.Label(), err)
		}
	}
	return tx.Commit()
}

// Count returns how many tables are stored.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM translations`)
	return n, err
}

// ForEach streams every stored row to fn in insertion order, pulling
// fetchBatch rows at a time. An fn error stops the walk.
func (s *Store) ForEach(fn func(table [256]byte, label string) error) error {
	rows, err := s.db.Queryx(
		`SELECT translation_id, translation, algsstr FROM translations
		 ORDER BY translation_id`)
	if err != nil {
		return fmt.Errorf("reading %q: %w", s.path, err)
	}
	defer rows.Close()

	batch := make([]Row, 0, fetchBatch)
	flush := func() error {
		for _, r := range batch {
			if len(r.Translation) != 256 {
				return fmt.Errorf("row %d in %q: table is %d bytes, want 256",
					r.ID, s.path, len(r.Translation))
			}
			var tab [256]byte
			copy(tab[:], r.Translation)
			if err := fn(tab, r.Algs); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var r Row
		if err := rows.StructScan(&r); err != nil {
			return fmt.Errorf("scanning row in %q: %w", s.path, err)
		}
		batch = append(batch, r)
		if len(batch) == fetchBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return flush()
}
