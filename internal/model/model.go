package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Scene{},
	&ScenePolygon{},
}

// Scene is one cached remote scene. SavedAt drives the staleness window.
type Scene struct {
	SceneID      string    `json:"sceneId" gorm:"primarykey;size:64"`
	SavedAt      time.Time `json:"savedAt" gorm:"index:idx_scene_saved_at"`
	PolygonCount int       `json:"polygonCount"`
}

func (*Scene) TableName() string {
	return "scenes"
}

// ScenePolygon is one polygon hotspot of a cached scene.
// Outline holds the WKB of a LineString whose X is azimuth (ath) and whose Y
// is the vertical angle (atv).
type ScenePolygon struct {
	ID       uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SceneID  string         `json:"sceneId" gorm:"size:64;index:idx_scene_polygon_scene_id"` // references Scene
	Position int            `json:"position"` // order within the scene
	RemoteID string         `json:"remoteId" gorm:"size:64"`
	Title    string         `json:"title" gorm:"size:255"`
	Type     string         `json:"type" gorm:"size:32"`
	Outline  []byte         `json:"-"`
	Extra    datatypes.JSON `json:"extra"` // opaque "config" object from the hotspot service
}

func (*ScenePolygon) TableName() string {
	return "scene_polygons"
}
