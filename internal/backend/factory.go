package backend

import (
	"fmt"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/storage"
)

func noCleanup() error { return nil }

// Open constructs the backend named by cfg.DataBackend. The server,
// the worker, and the admin CLI all open their backend through here
// so they agree on what a given configuration points at.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	logger = logger.WithComponent(log.ComponentStorage)

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case MemoryBackend:
		logger.Warn("Using in-memory backend, data is lost on exit")
		return &Result{KV: storage.NewMemory(), Cleanup: noCleanup}, nil

	case FileBackend:
		kv, err := storage.NewFile(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file backend: %w", err)
		}
		logger.Info("Using file backend", "dir", cfg.DataDir)
		return &Result{KV: kv, Cleanup: noCleanup}, nil

	case SQLiteBackend:
		kv, err := storage.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
		return &Result{KV: kv, Cleanup: kv.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
