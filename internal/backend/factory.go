package backend

import (
	"fmt"
	"log/slog"

	"raiox/internal/kv/file"
	"raiox/internal/kv/memory"
	"raiox/internal/storage"
)

// Factory constructs snapshot stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore builds the snapshot store for the configured backend type.
func (f *Factory) CreateStore(config Config) (*Result, error) {
	switch config.Type {
	case Memory:
		f.logger.Info("Initialized memory snapshot backend")
		return &Result{Store: memory.New()}, nil

	case File:
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		store, err := file.New(dataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		f.logger.Info("Initialized file snapshot backend", "data_dir", dataDir)
		return &Result{Store: store}, nil

	case SQLite:
		if config.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite snapshot backend", "db_path", config.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
