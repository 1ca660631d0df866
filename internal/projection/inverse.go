package projection

import (
	"math"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/golang/geo/r3"
)

// edgeTolerance absorbs floating point error for points that sit exactly on
// the viewport border.
const edgeTolerance = 1e-9

// MinPolygonVertices is the fewest visible vertices a polygon can be drawn with.
const MinPolygonVertices = 3

// SphericalToScreen maps a direction on the sphere to a normalized viewport
// point. ok is false when the direction is behind the camera or outside the
// viewport.
func SphericalToScreen(p core.SphericalPoint, view core.ViewState) (pt core.ScreenPoint, ok bool) {
	az := DegToRad(p.Azimuth)
	el := DegToRad(-p.VerticalAngle)

	sinAz, cosAz := math.Sincos(az)
	sinEl, cosEl := math.Sincos(el)
	world := r3.Vector{
		X: sinAz * cosEl,
		Y: sinEl,
		Z: cosAz * cosEl,
	}

	cam := worldToCamera(world, view.HorizontalLookAngle, view.VerticalLookAngle)
	if !(cam.Z > 0) {
		return core.ScreenPoint{}, false
	}

	tanH, tanV := halfTangents(view.FieldOfView, view.AspectRatio())
	x := cam.X/cam.Z/(2*tanH) + 0.5
	y := -(cam.Y/cam.Z)/(2*tanV) + 0.5

	x, okX := withinUnit(x)
	y, okY := withinUnit(y)
	if !okX || !okY {
		return core.ScreenPoint{}, false
	}
	return core.ScreenPoint{X: x, Y: y}, true
}

func withinUnit(v float64) (float64, bool) {
	switch {
	case v >= 0 && v <= 1:
		return v, true
	case v < 0 && v >= -edgeTolerance:
		return 0, true
	case v > 1 && v <= 1+edgeTolerance:
		return 1, true
	default:
		return v, false
	}
}

// ConvertPolygonToScreenVertices projects every point through view and drops
// the ones that are not visible. When fewer than MinPolygonVertices remain the
// polygon cannot be drawn and nil is returned; that is a normal outcome.
func ConvertPolygonToScreenVertices(points []core.SphericalPoint, view core.ViewState) []core.ScreenPoint {
	if len(points) < MinPolygonVertices {
		return nil
	}
	out := make([]core.ScreenPoint, 0, len(points))
	for _, p := range points {
		if sp, ok := SphericalToScreen(p, view); ok {
			out = append(out, sp)
		}
	}
	if len(out) < MinPolygonVertices {
		return nil
	}
	return out
}
