package gormstorage

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/panorama/internal/database"
	"github.com/OCAP2/panorama/internal/model"
	"github.com/OCAP2/panorama/internal/storage"
	"github.com/OCAP2/panorama/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func newTestBackend(t *testing.T) (*Backend, *time.Time) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.GetSqliteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b := New(Dependencies{DB: db, TTL: storage.DefaultTTL})
	b.SetClock(func() time.Time { return now })
	require.NoError(t, b.Init())
	return b, &now
}

func polygon(id string, az float64) core.RemotePolygon {
	return core.RemotePolygon{
		ID:      id,
		Title:   "hotspot " + id,
		SceneID: "abc",
		Type:    core.HotspotLink,
		Polygon: true,
		Config: core.PolygonConfig{Points: []core.SphericalPoint{
			{Azimuth: az, VerticalAngle: 0},
			{Azimuth: az + 5, VerticalAngle: 0},
			{Azimuth: az + 2.5, VerticalAngle: 4},
		}},
	}
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestSaveAndLoad(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	in := []core.RemotePolygon{polygon("b", 40), polygon("a", -30)}
	require.NoError(t, b.SaveScene(ctx, "abc", in))

	got, err := b.LoadScene(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	var scene model.Scene
	require.NoError(t, b.DB().First(&scene, "scene_id = ?", "abc").Error)
	assert.Equal(t, 2, scene.PolygonCount)
}

func TestSave_ReplacesPrevious(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveScene(ctx, "abc", []core.RemotePolygon{polygon("a", 0), polygon("b", 10)}))
	require.NoError(t, b.SaveScene(ctx, "abc", []core.RemotePolygon{polygon("c", 20)}))

	got, err := b.LoadScene(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	var count int64
	require.NoError(t, b.DB().Model(&model.ScenePolygon{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoad_NotFound(t *testing.T) {
	b, _ := newTestBackend(t)

	_, err := b.LoadScene(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
}

func TestLoad_Expired(t *testing.T) {
	b, now := newTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.SaveScene(ctx, "abc", []core.RemotePolygon{polygon("a", 0)}))

	*now = now.Add(23 * time.Hour)
	_, err := b.LoadScene(ctx, "abc")
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	_, err = b.LoadScene(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
}

func TestDeleteScene(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveScene(ctx, "abc", []core.RemotePolygon{polygon("a", 0)}))
	require.NoError(t, b.SaveScene(ctx, "def", []core.RemotePolygon{polygon("b", 0)}))
	require.NoError(t, b.DeleteScene(ctx, "abc"))

	_, err := b.LoadScene(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)

	got, err := b.LoadScene(ctx, "def")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
