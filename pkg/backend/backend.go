// Package backend provides the public factory for record stores. It picks the
// implementation named in types.Config while keeping the implementations
// themselves internal.
package backend

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mesh-intelligence/arbor/internal/badgerstore"
	"github.com/mesh-intelligence/arbor/internal/filestore"
	"github.com/mesh-intelligence/arbor/internal/sqlite"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

// badgerDirName is the subdirectory of DataDir holding BadgerDB files.
const badgerDirName = "badger"

// Open validates cfg and opens the configured record store rooted at
// cfg.DataDir. The caller must Close the returned store.
//
// Example:
//
//	store, err := backend.Open(types.Config{
//	    Backend: types.BackendFiles,
//	    DataDir: "treedata",
//	})
//	defer store.Close()
func Open(cfg types.Config) (types.RecordStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}

	switch cfg.Backend {
	case types.BackendFiles:
		return filestore.Open(dataDir)
	case types.BackendSQLite:
		return sqlite.Open(dataDir)
	case types.BackendBadger:
		bcfg := badgerstore.DefaultConfig(filepath.Join(dataDir, badgerDirName))
		bcfg.Logger = slog.Default().With("component", "badger")
		return badgerstore.Open(bcfg)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
