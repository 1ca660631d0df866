package storage

import (
	"context"
	"errors"
	"time"

	"github.com/OCAP2/panorama/pkg/core"
)

// DefaultTTL is how long a cached scene stays fresh.
const DefaultTTL = 24 * time.Hour

// ErrSceneNotFound is returned when a scene is not cached or its entry is
// older than the backend's TTL.
var ErrSceneNotFound = errors.New("scene not found")

// Backend is the interface all scene cache implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveScene replaces the cached polygons of a scene and restarts its TTL.
	SaveScene(ctx context.Context, sceneID string, polygons []core.RemotePolygon) error
	// LoadScene returns the cached polygons in saved order.
	LoadScene(ctx context.Context, sceneID string) ([]core.RemotePolygon, error)
	DeleteScene(ctx context.Context, sceneID string) error
}

// Expired reports whether an entry saved at savedAt is stale at now.
// A non-positive ttl never expires.
func Expired(savedAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(savedAt) > ttl
}
