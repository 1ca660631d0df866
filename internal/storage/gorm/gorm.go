// Package gormstorage implements the storage.Backend interface on top of any
// GORM dialector. The sqlite and postgres backends wrap it and only differ in
// how they open and close the connection.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/panorama/internal/database"
	"github.com/OCAP2/panorama/internal/model"
	"github.com/OCAP2/panorama/internal/model/convert"
	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/pkg/core"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	TTL    time.Duration
	Logger *slog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
	now  func() time.Time
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		deps: deps,
		now:  time.Now,
	}
}

// SetClock replaces the time source used for the TTL.
func (b *Backend) SetClock(now func() time.Time) {
	b.now = now
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend has no database")
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.deps.Logger.Debug("scene cache schema ready", "dialect", b.deps.DB.Dialector.Name())
	return nil
}

// Close is a no-op; the wrapping backend owns the connection.
func (b *Backend) Close() error {
	return nil
}

// SaveScene replaces the scene's polygons in one transaction.
func (b *Backend) SaveScene(ctx context.Context, sceneID string, polygons []core.RemotePolygon) error {
	rows := make([]model.ScenePolygon, 0, len(polygons))
	for i, p := range polygons {
		row, err := convert.PolygonToGorm(sceneID, i, p)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	scene := model.Scene{
		SceneID:      sceneID,
		SavedAt:      b.now().UTC(),
		PolygonCount: len(rows),
	}

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scene_id = ?", sceneID).Delete(&model.ScenePolygon{}).Error; err != nil {
			return fmt.Errorf("failed to clear scene polygons: %w", err)
		}
		if err := tx.Save(&scene).Error; err != nil {
			return fmt.Errorf("failed to save scene: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to insert scene polygons: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.deps.Logger.Debug("scene saved", "scene", sceneID, "polygons", len(rows))
	return nil
}

// LoadScene returns the polygons of a fresh scene in saved order.
func (b *Backend) LoadScene(ctx context.Context, sceneID string) ([]core.RemotePolygon, error) {
	db := b.deps.DB.WithContext(ctx)

	var scene model.Scene
	err := db.Where("scene_id = ?", sceneID).First(&scene).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("scene %q: %w", sceneID, storage.ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	if storage.Expired(scene.SavedAt, b.deps.TTL, b.now()) {
		b.deps.Logger.Warn("cached scene is stale", "scene", sceneID, "savedAt", scene.SavedAt)
		return nil, fmt.Errorf("scene %q expired: %w", sceneID, storage.ErrSceneNotFound)
	}

	var rows []model.ScenePolygon
	if err := db.Where("scene_id = ?", sceneID).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load scene polygons: %w", err)
	}

	out := make([]core.RemotePolygon, 0, len(rows))
	for _, row := range rows {
		p, err := convert.PolygonFromGorm(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// DeleteScene removes the scene and its polygons.
func (b *Backend) DeleteScene(ctx context.Context, sceneID string) error {
	return b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scene_id = ?", sceneID).Delete(&model.ScenePolygon{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene polygons: %w", err)
		}
		if err := tx.Where("scene_id = ?", sceneID).Delete(&model.Scene{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene: %w", err)
		}
		return nil
	})
}
