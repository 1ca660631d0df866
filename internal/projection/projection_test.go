package projection

import (
	"math"
	"testing"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViews = []core.ViewState{
	{HorizontalLookAngle: 0, VerticalLookAngle: 0, FieldOfView: 90, ViewportWidth: 1920, ViewportHeight: 1080},
	{HorizontalLookAngle: 30, VerticalLookAngle: 0, FieldOfView: 90, ViewportWidth: 1000, ViewportHeight: 500},
	{HorizontalLookAngle: -120, VerticalLookAngle: 25, FieldOfView: 60, ViewportWidth: 800, ViewportHeight: 600},
	{HorizontalLookAngle: 175, VerticalLookAngle: -40, FieldOfView: 110, ViewportWidth: 1280, ViewportHeight: 720},
	{HorizontalLookAngle: -179.5, VerticalLookAngle: 70, FieldOfView: 30, ViewportWidth: 600, ViewportHeight: 900},
	{HorizontalLookAngle: 90, VerticalLookAngle: -85, FieldOfView: 150, ViewportWidth: 1024, ViewportHeight: 768},
}

func angleDiff(a, b float64) float64 {
	return math.Abs(NormalizeAzimuth(a - b))
}

func TestScreenToSpherical_CenterIdentity(t *testing.T) {
	for _, v := range testViews {
		got := ScreenToSpherical(core.ScreenPoint{X: 0.5, Y: 0.5}, v)
		assert.InDelta(t, 0, angleDiff(got.Azimuth, v.HorizontalLookAngle), 1e-9, "view=%+v", v)
		assert.InDelta(t, v.VerticalLookAngle, got.VerticalAngle, 1e-9, "view=%+v", v)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range testViews {
		for x := 0.05; x < 1; x += 0.15 {
			for y := 0.05; y < 1; y += 0.15 {
				p := core.ScreenPoint{X: x, Y: y}
				sp := ScreenToSpherical(p, v)
				back, ok := SphericalToScreen(sp, v)
				require.True(t, ok, "view=%+v point=%+v", v, p)
				assert.InDelta(t, p.X, back.X, 1e-6)
				assert.InDelta(t, p.Y, back.Y, 1e-6)
			}
		}
	}
}

func TestScreenToSpherical_OutputRanges(t *testing.T) {
	for _, v := range testViews {
		for _, p := range []core.ScreenPoint{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}} {
			sp := ScreenToSpherical(p, v)
			assert.Greater(t, sp.Azimuth, -180.0)
			assert.LessOrEqual(t, sp.Azimuth, 180.0)
			assert.GreaterOrEqual(t, sp.VerticalAngle, -90.0)
			assert.LessOrEqual(t, sp.VerticalAngle, 90.0)
		}
	}
}

func TestScreenToSpherical_Directions(t *testing.T) {
	v := core.ViewState{FieldOfView: 90, ViewportWidth: 1000, ViewportHeight: 1000}

	right := ScreenToSpherical(core.ScreenPoint{X: 1, Y: 0.5}, v)
	assert.InDelta(t, 45.0, right.Azimuth, 1e-9)
	assert.InDelta(t, 0.0, right.VerticalAngle, 1e-9)

	// Lower half of the screen is positive vertical angle (looking down).
	below := ScreenToSpherical(core.ScreenPoint{X: 0.5, Y: 1}, v)
	assert.InDelta(t, 45.0, below.VerticalAngle, 1e-9)
}

func TestRotationOrderMatters(t *testing.T) {
	v := core.ViewState{HorizontalLookAngle: 40, VerticalLookAngle: 30, FieldOfView: 90, ViewportWidth: 1000, ViewportHeight: 1000}
	ray := r3.Vector{X: 0.4, Y: 0.3, Z: 1}.Normalize()

	pitchFirst := cameraToWorld(ray, v.HorizontalLookAngle, v.VerticalLookAngle)
	yawFirst := pitch(yaw(ray, v.HorizontalLookAngle), v.VerticalLookAngle)
	assert.Greater(t, pitchFirst.Sub(yawFirst).Norm(), 1e-3)

	// The inverse undoes the forward rotation exactly.
	back := worldToCamera(pitchFirst, v.HorizontalLookAngle, v.VerticalLookAngle)
	assert.InDelta(t, 0, back.Sub(ray).Norm(), 1e-12)
}

func TestConcreteBoxScenario(t *testing.T) {
	v := core.ViewState{HorizontalLookAngle: 30, VerticalLookAngle: 0, FieldOfView: 90, ViewportWidth: 1000, ViewportHeight: 500}
	corners := []core.ScreenPoint{{X: 0.4, Y: 0.4}, {X: 0.6, Y: 0.4}, {X: 0.6, Y: 0.6}, {X: 0.4, Y: 0.6}}

	sph := ScreenToSphericalAll(corners, v)
	require.Len(t, sph, 4)

	hHalf := HorizontalFOV(v.FieldOfView, v.AspectRatio()) / 2
	vHalf := v.FieldOfView / 2

	var below30, above30, belowZero, aboveZero bool
	for _, s := range sph {
		below30 = below30 || s.Azimuth < 30
		above30 = above30 || s.Azimuth > 30
		belowZero = belowZero || s.VerticalAngle < 0
		aboveZero = aboveZero || s.VerticalAngle > 0
		assert.LessOrEqual(t, angleDiff(s.Azimuth, 30), hHalf)
		assert.LessOrEqual(t, math.Abs(s.VerticalAngle), vHalf)
	}
	assert.True(t, below30 && above30, "azimuths must bracket 30")
	assert.True(t, belowZero && aboveZero, "vertical angles must bracket 0")

	for i, s := range sph {
		back, ok := SphericalToScreen(s, v)
		require.True(t, ok)
		assert.InDelta(t, corners[i].X, back.X, 1e-6)
		assert.InDelta(t, corners[i].Y, back.Y, 1e-6)
	}
}

func TestSphericalToScreen_BehindCamera(t *testing.T) {
	v := core.ViewState{HorizontalLookAngle: 0, VerticalLookAngle: 0, FieldOfView: 50, ViewportWidth: 1000, ViewportHeight: 800}
	_, ok := SphericalToScreen(core.SphericalPoint{Azimuth: 179, VerticalAngle: 0}, v)
	assert.False(t, ok)
}

func TestSphericalToScreen_OutsideFrustum(t *testing.T) {
	v := core.ViewState{FieldOfView: 50, ViewportWidth: 1000, ViewportHeight: 1000}
	// In front of the camera but far beyond the 25 degree half-extent.
	_, ok := SphericalToScreen(core.SphericalPoint{Azimuth: 60, VerticalAngle: 0}, v)
	assert.False(t, ok)

	pt, ok := SphericalToScreen(core.SphericalPoint{Azimuth: 0, VerticalAngle: 0}, v)
	require.True(t, ok)
	assert.InDelta(t, 0.5, pt.X, 1e-12)
	assert.InDelta(t, 0.5, pt.Y, 1e-12)
}

func TestConvertPolygonToScreenVertices(t *testing.T) {
	v := core.ViewState{FieldOfView: 90, ViewportWidth: 1000, ViewportHeight: 1000}

	visible := []core.SphericalPoint{{Azimuth: -10, VerticalAngle: -10}, {Azimuth: 10, VerticalAngle: -10}, {Azimuth: 10, VerticalAngle: 10}, {Azimuth: -10, VerticalAngle: 10}}
	assert.Len(t, ConvertPolygonToScreenVertices(visible, v), 4)

	// One vertex behind the camera is dropped.
	partly := append([]core.SphericalPoint{{Azimuth: 170, VerticalAngle: 0}}, visible...)
	assert.Len(t, ConvertPolygonToScreenVertices(partly, v), 4)

	// Only two visible vertices remain: nothing to draw.
	mostlyHidden := []core.SphericalPoint{{Azimuth: 0, VerticalAngle: 0}, {Azimuth: 5, VerticalAngle: 0}, {Azimuth: 180, VerticalAngle: 0}}
	assert.Empty(t, ConvertPolygonToScreenVertices(mostlyHidden, v))

	assert.Empty(t, ConvertPolygonToScreenVertices(visible[:2], v))
	assert.Empty(t, ConvertPolygonToScreenVertices(nil, v))
}
