package store

import (
	"fmt"
	"path/filepath"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
)

// Config selects and tunes the backing database.
type Config struct {
	// Backend is "memory" or "leveldb".
	Backend string
	// Path is the leveldb directory, relative paths resolve against the datadir.
	Path    string
	CacheMB int
	Handles int
}

// DefaultConfig is a leveldb database under <datadir>/gateway.
func DefaultConfig() Config {
	return Config{
		Backend: "leveldb",
		Path:    "gateway",
		CacheMB: 64,
		Handles: 128,
	}
}

// LiteConfig keeps everything in memory.
func LiteConfig() Config {
	return Config{Backend: "memory"}
}

// NewMemStore returns a store over a fresh in-memory database.
func NewMemStore() *Store {
	return New(memorydb.New())
}

// Open opens the database described by cfg.
func Open(datadir string, cfg Config) (*Store, error) {
	db, err := openDB(datadir, cfg)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func openDB(datadir string, cfg Config) (kvdb.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memorydb.New(), nil
	case "leveldb":
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(datadir, path)
		}
		db, err := leveldb.New(path, cfg.CacheMB*1024*1024, cfg.Handles, func() error { return nil }, func() {})
		if err != nil {
			return nil, fmt.Errorf("open leveldb %s: %w", path, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: memory, leveldb)", cfg.Backend)
	}
}
