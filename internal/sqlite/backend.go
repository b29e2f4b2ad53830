// Package sqlite implements a record backend that keeps one row per node in a
// SQLite database file inside the data directory.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "arbor.db"

// Store implements types.RecordStore on a SQLite nodes table.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates dataDir if needed, opens (or creates) the database file and
// applies the schema. Unlike a cache, the database is the source of truth, so
// an existing file is kept.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers and keeps the file lock simple.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Save upserts rec keyed by its ID.
func (s *Store) Save(rec types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: empty identifier", types.ErrInvalidID)
	}
	children := rec.Children
	if children == nil {
		children = []string{}
	}
	childrenJSON, err := json.Marshal(children)
	if err != nil {
		return fmt.Errorf("marshaling children of %q: %w", rec.ID, err)
	}
	if _, err := s.db.Exec(upsertNode, rec.ID, rec.Parent, string(childrenJSON), rec.Height); err != nil {
		return fmt.Errorf("saving node %q: %w", rec.ID, err)
	}
	return nil
}

// LoadAll returns every row as a Record. A children column that is not a JSON
// string array is reported as types.ErrCorruptStore.
func (s *Store) LoadAll() ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.Query(selectNodes)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var rec types.Record
		var childrenJSON string
		if err := rows.Scan(&rec.ID, &rec.Parent, &childrenJSON, &rec.Height); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		if err := json.Unmarshal([]byte(childrenJSON), &rec.Children); err != nil {
			return nil, fmt.Errorf("%w: children of %q: %v", types.ErrCorruptStore, rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return records, nil
}

// Delete removes the row for id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	if _, err := s.db.Exec(deleteNode, id); err != nil {
		return fmt.Errorf("deleting node %q: %w", id, err)
	}
	return nil
}

// Wipe deletes every row from the nodes table.
func (s *Store) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	if _, err := s.db.Exec(deleteNodes); err != nil {
		return fmt.Errorf("deleting nodes: %w", err)
	}
	return nil
}

// Close releases the database handle. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
