// Package projection converts between normalized viewport positions and
// directions on the panorama sphere using a rectilinear (gnomonic) camera.
//
// All functions are pure. Invalid input propagates as NaN; callers validate.
package projection

import (
	"math"

	"github.com/golang/geo/s1"
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return s1.Angle(rad).Degrees()
}

// HorizontalFOV derives the horizontal field of view from the vertical one:
// tan(h/2) = tan(v/2) * aspectRatio. Only the vertical FOV comes from the
// camera, so every horizontal FOV must be computed here.
func HorizontalFOV(verticalFovDeg, aspectRatio float64) float64 {
	half := math.Atan(math.Tan(DegToRad(verticalFovDeg)/2) * aspectRatio)
	return RadToDeg(2 * half)
}

// ScreenOffsetToAngle maps an offset from the viewport center (-0.5..0.5)
// to the angle it subtends for the given field of view.
func ScreenOffsetToAngle(offset, fovDeg float64) float64 {
	tangent := 2 * offset * math.Tan(DegToRad(fovDeg)/2)
	return RadToDeg(math.Atan(tangent))
}

// NormalizeAzimuth wraps deg into (-180, 180].
func NormalizeAzimuth(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// ClampVerticalAngle bounds deg to [-90, 90].
func ClampVerticalAngle(deg float64) float64 {
	return math.Max(-90, math.Min(90, deg))
}

// halfTangents returns tan(hFov/2) and tan(vFov/2) for a view.
func halfTangents(vFovDeg, aspectRatio float64) (float64, float64) {
	hFov := HorizontalFOV(vFovDeg, aspectRatio)
	return math.Tan(DegToRad(hFov) / 2), math.Tan(DegToRad(vFovDeg) / 2)
}
