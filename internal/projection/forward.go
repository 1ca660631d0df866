package projection

import (
	"math"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/golang/geo/r3"
)

// ScreenToSpherical maps a normalized viewport point to a direction on the
// sphere as seen through view. The viewport center always maps to the view's
// look direction.
func ScreenToSpherical(p core.ScreenPoint, view core.ViewState) core.SphericalPoint {
	tanH, tanV := halfTangents(view.FieldOfView, view.AspectRatio())

	sx := p.X - 0.5
	sy := p.Y - 0.5

	// Camera space: +X right, +Y up, +Z forward. Screen Y grows downward.
	ray := r3.Vector{
		X: sx * 2 * tanH,
		Y: -sy * 2 * tanV,
		Z: 1,
	}.Normalize()

	world := cameraToWorld(ray, view.HorizontalLookAngle, view.VerticalLookAngle)

	azimuth := RadToDeg(math.Atan2(world.X, world.Z))
	elevation := RadToDeg(math.Asin(math.Max(-1, math.Min(1, world.Y))))

	return core.SphericalPoint{
		Azimuth:       NormalizeAzimuth(azimuth),
		VerticalAngle: ClampVerticalAngle(-elevation),
	}
}

// ScreenToSphericalAll maps every point through ScreenToSpherical with the
// same view.
func ScreenToSphericalAll(points []core.ScreenPoint, view core.ViewState) []core.SphericalPoint {
	out := make([]core.SphericalPoint, len(points))
	for i, p := range points {
		out[i] = ScreenToSpherical(p, view)
	}
	return out
}
