// Package cache keeps recently fetched scene polygons in process, in front of
// a persistent storage backend and the remote hotspot service.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/pkg/core"
)

// Fetcher loads the polygons of a scene from the remote service.
type Fetcher interface {
	List(ctx context.Context, sceneID string) ([]core.RemotePolygon, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, sceneID string) ([]core.RemotePolygon, error)

// List calls f.
func (f FetcherFunc) List(ctx context.Context, sceneID string) ([]core.RemotePolygon, error) {
	return f(ctx, sceneID)
}

// Source reports where a Fetch result came from.
type Source string

const (
	SourceMemory  Source = "memory"
	SourceBackend Source = "backend"
	SourceRemote  Source = "remote"
)

type entry struct {
	savedAt  time.Time
	polygons []core.RemotePolygon
}

// SceneCache maps scene ids to their polygons for the TTL window.
type SceneCache struct {
	mu      sync.RWMutex
	scenes  map[string]entry
	backend storage.Backend
	remote  Fetcher
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSceneCache creates a SceneCache. backend may be nil.
func NewSceneCache(backend storage.Backend, remote Fetcher, ttl time.Duration, logger *slog.Logger) *SceneCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SceneCache{
		scenes:  make(map[string]entry),
		backend: backend,
		remote:  remote,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (c *SceneCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the in-process polygons of a scene if they are still fresh.
func (c *SceneCache) Get(sceneID string) ([]core.RemotePolygon, bool) {
	c.mu.RLock()
	e, ok := c.scenes[sceneID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if storage.Expired(e.savedAt, c.ttl, c.now()) {
		c.logger.Warn("Stale scene cache entry", "sceneId", sceneID, "savedAt", e.savedAt)
		c.Invalidate(sceneID)
		return nil, false
	}
	return clonePolygons(e.polygons), true
}

// Set stores polygons for a scene. Empty results are ignored.
func (c *SceneCache) Set(sceneID string, polygons []core.RemotePolygon) {
	if len(polygons) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes[sceneID] = entry{savedAt: c.now(), polygons: clonePolygons(polygons)}
}

// Invalidate removes a scene from the in-process cache.
func (c *SceneCache) Invalidate(sceneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scenes, sceneID)
}

// Reset clears all scenes from the in-process cache.
func (c *SceneCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes = make(map[string]entry)
}

// Fetch returns the polygons of a scene, trying the in-process cache, then
// the backend, then the remote service. forceRefresh goes straight to remote.
func (c *SceneCache) Fetch(ctx context.Context, sceneID string, forceRefresh bool) ([]core.RemotePolygon, Source, error) {
	if !forceRefresh {
		if polygons, ok := c.Get(sceneID); ok {
			return polygons, SourceMemory, nil
		}
		if c.backend != nil {
			polygons, err := c.backend.LoadScene(ctx, sceneID)
			switch {
			case err == nil && len(polygons) > 0:
				c.Set(sceneID, polygons)
				return polygons, SourceBackend, nil
			case err != nil && !errors.Is(err, storage.ErrSceneNotFound):
				c.logger.WarnContext(ctx, "Failed to load scene from backend", "sceneId", sceneID, "error", err)
			}
		}
	}

	if c.remote == nil {
		return nil, "", fmt.Errorf("scene %s: %w", sceneID, storage.ErrSceneNotFound)
	}
	polygons, err := c.remote.List(ctx, sceneID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch scene %s: %w", sceneID, err)
	}
	if len(polygons) == 0 {
		return polygons, SourceRemote, nil
	}

	c.Set(sceneID, polygons)
	if c.backend != nil {
		if err := c.backend.SaveScene(ctx, sceneID, polygons); err != nil {
			c.logger.WarnContext(ctx, "Failed to save scene to backend", "sceneId", sceneID, "error", err)
		}
	}
	return polygons, SourceRemote, nil
}

// Forget drops a scene from the in-process cache and the backend.
func (c *SceneCache) Forget(ctx context.Context, sceneID string) error {
	c.Invalidate(sceneID)
	if c.backend == nil {
		return nil
	}
	if err := c.backend.DeleteScene(ctx, sceneID); err != nil && !errors.Is(err, storage.ErrSceneNotFound) {
		return fmt.Errorf("failed to delete scene %s: %w", sceneID, err)
	}
	return nil
}

func clonePolygons(in []core.RemotePolygon) []core.RemotePolygon {
	out := make([]core.RemotePolygon, len(in))
	for i, p := range in {
		p.Config.Points = slices.Clone(p.Config.Points)
		p.Extra = maps.Clone(p.Extra)
		out[i] = p
	}
	return out
}
