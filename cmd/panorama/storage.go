package main

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/panorama/internal/config"
	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/internal/storage/memory"
	pgstorage "github.com/OCAP2/panorama/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/panorama/internal/storage/sqlite"
)

func createStorageBackend(storageCfg config.StorageConfig, logger *slog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		logger.Debug("Postgres storage backend selected")
		return pgstorage.New(pgstorage.Dependencies{
			TTL:    storageCfg.TTL,
			Logger: logger,
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(storageCfg.SQLite, storageCfg.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Debug("SQLite storage backend selected", "path", storageCfg.SQLite.Path)
		return backend, nil

	case "memory", "":
		logger.Debug("Memory storage backend selected", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory, storageCfg.TTL, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}
