// Package convert maps cached scene polygons between core and gorm models.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/panorama/internal/model"
	"github.com/OCAP2/panorama/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// pointsToLineString converts an outline to a geom.LineString (X=ath, Y=atv).
func pointsToLineString(points []core.SphericalPoint) (geom.LineString, error) {
	if len(points) == 0 {
		return geom.LineString{}, nil
	}
	coords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		coords = append(coords, p.Azimuth, p.VerticalAngle)
	}
	seq := geom.NewSequence(coords, geom.DimXY)
	return geom.NewLineString(seq)
}

// lineStringToPoints converts a geom.LineString back to an outline.
func lineStringToPoints(ls geom.LineString) []core.SphericalPoint {
	seq := ls.Coordinates()
	n := seq.Length()
	points := make([]core.SphericalPoint, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		points[i] = core.SphericalPoint{Azimuth: xy.X, VerticalAngle: xy.Y}
	}
	return points
}

// PolygonToGorm converts a core.RemotePolygon to a model.ScenePolygon.
func PolygonToGorm(sceneID string, position int, p core.RemotePolygon) (model.ScenePolygon, error) {
	m := model.ScenePolygon{
		SceneID:  sceneID,
		Position: position,
		RemoteID: p.ID,
		Title:    p.Title,
		Type:     string(p.Type),
	}
	if len(p.Config.Points) > 0 {
		ls, err := pointsToLineString(p.Config.Points)
		if err != nil {
			return model.ScenePolygon{}, fmt.Errorf("failed to build outline: %w", err)
		}
		m.Outline = ls.AsBinary()
	}
	m.Extra = datatypes.JSON("{}")
	if len(p.Extra) > 0 {
		extra, err := json.Marshal(p.Extra)
		if err != nil {
			return model.ScenePolygon{}, fmt.Errorf("failed to marshal polygon config: %w", err)
		}
		m.Extra = extra
	}
	return m, nil
}

// PolygonFromGorm converts a model.ScenePolygon to a core.RemotePolygon.
func PolygonFromGorm(m model.ScenePolygon) (core.RemotePolygon, error) {
	p := core.RemotePolygon{
		ID:      m.RemoteID,
		Title:   m.Title,
		SceneID: m.SceneID,
		Type:    core.HotspotType(m.Type),
		Polygon: true,
	}
	if len(m.Outline) > 0 {
		g, err := geom.UnmarshalWKB(m.Outline)
		if err != nil {
			return core.RemotePolygon{}, fmt.Errorf("failed to decode outline of polygon %d: %w", m.ID, err)
		}
		ls, ok := g.AsLineString()
		if !ok {
			return core.RemotePolygon{}, fmt.Errorf("outline of polygon %d is %s, not a LineString", m.ID, g.Type())
		}
		p.Config.Points = lineStringToPoints(ls)
	}
	if len(m.Extra) > 0 {
		if err := json.Unmarshal(m.Extra, &p.Extra); err != nil {
			return core.RemotePolygon{}, fmt.Errorf("failed to unmarshal polygon config: %w", err)
		}
		if len(p.Extra) == 0 {
			p.Extra = nil
		}
	}
	return p, nil
}
