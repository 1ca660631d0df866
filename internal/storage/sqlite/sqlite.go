// Package sqlitestorage implements the storage.Backend interface using SQLite.
// It wraps the GORM backend via composition; the only SQLite-specific concerns
// are opening the file or in-memory database and, for an in-memory database,
// dumping it to disk on Close via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/panorama/internal/config"
	"github.com/OCAP2/panorama/internal/database"
	gormstorage "github.com/OCAP2/panorama/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db     *gorm.DB
	cfg    config.SQLiteConfig
	logger *slog.Logger
}

// New opens the SQLite database at cfg.Path, or an in-memory one when the
// path is empty.
func New(cfg config.SQLiteConfig, ttl time.Duration, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:     db,
			TTL:    ttl,
			Logger: logger,
		}),
		db:     db,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close dumps an in-memory database when a dump path is configured and closes
// the connection.
func (b *Backend) Close() error {
	if b.cfg.Path == "" && b.cfg.DumpPath != "" {
		start := time.Now()
		if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
			b.logger.Error("Error dumping to disk", "error", err)
		} else {
			b.logger.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
		}
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
