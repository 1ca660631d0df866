// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/panorama/internal/database"
	gormstorage "github.com/OCAP2/panorama/internal/storage/gorm"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
// A nil DB is opened from the db.* config keys on Init.
type Dependencies struct {
	DB     *gorm.DB
	TTL    time.Duration
	Logger *slog.Logger
}

// Backend wraps the GORM backend with Postgres connection handling.
type Backend struct {
	*gormstorage.Backend
	deps  Dependencies
	owned bool
}

// New creates a new Postgres storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{deps: deps}
}

// Init connects when needed and migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDB()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.deps.DB = db
		b.owned = true
		b.deps.Logger.Info("Connected to database")
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.deps.DB,
		TTL:    b.deps.TTL,
		Logger: b.deps.Logger,
	})
	if err := b.Backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close closes the connection if Init opened it.
func (b *Backend) Close() error {
	if !b.owned || b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
