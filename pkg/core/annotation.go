// pkg/core/annotation.go
package core

import "fmt"

// Kind identifies the drawing tool that produced an annotation.
type Kind string

const (
	KindBox      Kind = "box"
	KindCircle   Kind = "circle"
	KindPolygon  Kind = "polygon"
	KindFreeDraw Kind = "freeDraw"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBox, KindCircle, KindPolygon, KindFreeDraw:
		return k, nil
	default:
		return "", fmt.Errorf("unknown annotation kind %q", s)
	}
}

// MinVertices is the smallest vertex count the kind can be drawn with.
func (k Kind) MinVertices() int {
	if k == KindBox {
		return 4
	}
	return 3
}

// Annotation is a shape stored in spherical coordinates.
// SourceView is the view captured when the shape was drawn; rendering always
// uses the current view instead.
type Annotation struct {
	ID         string           `json:"id"`
	Kind       Kind             `json:"kind"`
	Vertices   []SphericalPoint `json:"vertices"`
	Label      string           `json:"label"`
	Color      string           `json:"color"`
	Type       HotspotType      `json:"type"`
	SourceView ViewState        `json:"sourceView"`
	RemoteID   string           `json:"remoteId,omitempty"`
}

// ToRemote builds the wire representation for the given scene.
func (a Annotation) ToRemote(sceneID string) RemotePolygon {
	points := make([]SphericalPoint, len(a.Vertices))
	copy(points, a.Vertices)
	t := a.Type
	if t == "" {
		t = HotspotImage
	}
	return RemotePolygon{
		ID:      a.RemoteID,
		Title:   a.Label,
		SceneID: sceneID,
		Type:    t,
		Polygon: true,
		Config:  PolygonConfig{Points: points},
	}
}
