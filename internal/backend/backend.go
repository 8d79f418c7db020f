// Package backend selects and constructs the storage collaborator the
// ledger is wired to.
package backend

import (
	"fmt"
	"log/slog"

	"kopilka/internal/storage"
	"kopilka/internal/store"
	"kopilka/internal/store/memory"
)

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

type BackendType string

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds everything backend construction needs.
type Config struct {
	Type BackendType

	// Memory backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result carries the constructed store and its optional cleanup.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Detect returns the backend the configuration is capable of running.
// It is a pure function of its input: nothing is read from ambient
// globals, the caller decides what to do with the returned value.
func Detect(cfg Config) BackendType {
	if cfg.Type.IsValid() {
		return cfg.Type
	}
	if cfg.SQLiteDBPath != "" {
		return SQLiteBackend
	}
	return MemoryBackend
}

// Create constructs the store for the given configuration.
func Create(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch Detect(cfg) {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	default:
		dir := cfg.DataDirectory
		if dir == "" {
			dir = "data"
		}
		st, err := memory.NewFromDir(dir)
		if err != nil {
			return nil, fmt.Errorf("initialize memory backend: %w", err)
		}
		logger.Info("Initialized memory backend", "data_directory", dir)
		return &Result{Store: st, Cleanup: nil}, nil
	}
}
