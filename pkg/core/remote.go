// pkg/core/remote.go
package core

// HotspotType is the category of a remote hotspot.
type HotspotType string

const (
	HotspotImage   HotspotType = "image"
	HotspotVideo   HotspotType = "video"
	HotspotLink    HotspotType = "link"
	HotspotArticle HotspotType = "article"
	HotspotPoint   HotspotType = "point"
)

var hotspotColors = map[HotspotType]string{
	HotspotImage:   "#667eea",
	HotspotVideo:   "#e91e63",
	HotspotLink:    "#00bcd4",
	HotspotArticle: "#ff9800",
	HotspotPoint:   "#4caf50",
}

// Color returns the display color for the hotspot type.
func (t HotspotType) Color() string {
	if c, ok := hotspotColors[t]; ok {
		return c
	}
	return hotspotColors[HotspotImage]
}

// Known reports whether t is one of the types the hotspot service accepts.
func (t HotspotType) Known() bool {
	_, ok := hotspotColors[t]
	return ok
}

// PolygonConfig carries the outline of a polygon hotspot.
type PolygonConfig struct {
	Points []SphericalPoint `json:"points"`
}

// RemotePolygon is a polygon hotspot as the remote service and the scene
// cache exchange it.
type RemotePolygon struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	SceneID string         `json:"scene_id"`
	Type    HotspotType    `json:"type"`
	Polygon bool           `json:"polygon"`
	Config  PolygonConfig  `json:"polygon_config"`
	Extra   map[string]any `json:"config,omitempty"`
}

// Points returns the outline points.
func (p RemotePolygon) Points() []SphericalPoint {
	return p.Config.Points
}
