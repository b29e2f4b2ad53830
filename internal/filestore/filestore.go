// Package filestore implements the default record backend: one JSON file per
// node, named by the node identifier, written with the temp-file, fsync,
// rename pattern so a reader never observes a half-written record.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

const (
	recordExt  = ".json"
	tempPrefix = ".record-"
	tempGlob   = ".record-*.tmp"
)

// Store implements types.RecordStore on a directory of <id>.json files.
type Store struct {
	mu     sync.Mutex
	dir    string
	closed bool
}

// Open creates dir if needed and returns a Store rooted there.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the record files.
func (s *Store) Dir() string {
	return s.dir
}

// Save atomically writes rec to <dir>/<id>.json.
func (s *Store) Save(rec types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	path, err := s.recordPath(rec.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record %q: %w", rec.ID, err)
	}
	return writeFileAtomic(path, data)
}

// LoadAll reads every <id>.json file in the directory. A file whose content
// cannot be decoded, or whose id field disagrees with its name, is reported
// as types.ErrCorruptStore.
func (s *Store) LoadAll() ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var records []types.Record
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var rec types.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", types.ErrCorruptStore, path, err)
		}
		if want := strings.TrimSuffix(filepath.Base(path), recordExt); rec.ID != want {
			return nil, fmt.Errorf("%w: %s holds record %q", types.ErrCorruptStore, path, rec.ID)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes <dir>/<id>.json if present.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	path, err := s.recordPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Wipe removes every record file and any temp file left by an interrupted
// write. The directory itself is kept.
func (s *Store) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	var errs []error
	for _, pattern := range []string{"*" + recordExt, tempGlob} {
		paths, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return fmt.Errorf("listing %s: %w", s.dir, err)
		}
		for _, path := range paths {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close marks the store closed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// recordPath maps an identifier onto its file. Identifiers must be a single
// path element so a record can never land outside the data directory.
func (s *Store) recordPath(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+recordExt), nil
}

// writeFileAtomic writes data to path using the temp-file, fsync, rename
// pattern.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
