// Package memory keeps cached scenes in memory and writes each one through to
// a JSON file so the cache survives restarts.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/panorama/internal/config"
	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/pkg/core"
)

// SceneRecord is one cached scene as held in memory and written to disk.
type SceneRecord struct {
	SceneID  string               `json:"sceneId"`
	SavedAt  time.Time            `json:"savedAt"`
	Polygons []core.RemotePolygon `json:"polygons"`
}

// Backend stores scenes in memory and exports them to JSON
type Backend struct {
	cfg    config.MemoryConfig
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	scenes map[string]*SceneRecord
	mu     sync.RWMutex
}

// New creates a new memory backend. An empty OutputDir disables file export.
func New(cfg config.MemoryConfig, ttl time.Duration, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		cfg:    cfg,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		scenes: make(map[string]*SceneRecord),
	}
}

// Init creates the output directory
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveScene stores a copy of polygons and writes the scene file.
func (b *Backend) SaveScene(ctx context.Context, sceneID string, polygons []core.RemotePolygon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := &SceneRecord{
		SceneID:  sceneID,
		SavedAt:  b.now().UTC(),
		Polygons: copyPolygons(polygons),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.scenes[sceneID] = rec
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := b.writeScene(rec); err != nil {
		return err
	}
	b.logger.Debug("scene saved", "scene", sceneID, "polygons", len(polygons))
	return nil
}

// LoadScene returns the cached polygons, reading the scene file when the
// scene is not in memory yet.
func (b *Backend) LoadScene(ctx context.Context, sceneID string) ([]core.RemotePolygon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.scenes[sceneID]
	if !ok && b.cfg.OutputDir != "" {
		var err error
		rec, err = b.readScene(sceneID)
		if err != nil {
			return nil, err
		}
		b.scenes[sceneID] = rec
		ok = true
	}
	if !ok {
		return nil, fmt.Errorf("scene %q: %w", sceneID, storage.ErrSceneNotFound)
	}
	if storage.Expired(rec.SavedAt, b.ttl, b.now()) {
		b.logger.Warn("cached scene is stale", "scene", sceneID, "savedAt", rec.SavedAt)
		return nil, fmt.Errorf("scene %q expired: %w", sceneID, storage.ErrSceneNotFound)
	}
	return copyPolygons(rec.Polygons), nil
}

// DeleteScene drops the scene from memory and disk.
func (b *Backend) DeleteScene(ctx context.Context, sceneID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.scenes, sceneID)
	if b.cfg.OutputDir == "" {
		return nil
	}
	for _, path := range []string{b.scenePath(sceneID, false), b.scenePath(sceneID, true)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove scene file: %w", err)
		}
	}
	return nil
}

// GetExportedFilePath returns the file a scene is written to.
func (b *Backend) GetExportedFilePath(sceneID string) string {
	return b.scenePath(sceneID, b.cfg.CompressOutput)
}

func (b *Backend) scenePath(sceneID string, compressed bool) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(sceneID)
	if compressed {
		return filepath.Join(b.cfg.OutputDir, name+".json.gz")
	}
	return filepath.Join(b.cfg.OutputDir, name+".json")
}

func copyPolygons(in []core.RemotePolygon) []core.RemotePolygon {
	out := make([]core.RemotePolygon, len(in))
	for i, p := range in {
		p.Config.Points = append([]core.SphericalPoint(nil), p.Config.Points...)
		out[i] = p
	}
	return out
}
