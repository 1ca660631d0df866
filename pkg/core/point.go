// pkg/core/point.go
package core

import "math"

// ScreenPoint is a viewport position normalized to [0,1] on both axes.
// X grows rightward, Y grows downward.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both coordinates are finite.
func (p ScreenPoint) Valid() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// SphericalPoint is a camera-independent direction on the panorama sphere.
// Azimuth is kept in (-180,180] and VerticalAngle in [-90,90], positive = down.
// The JSON names match the remote hotspot service.
type SphericalPoint struct {
	Azimuth       float64 `json:"ath"`
	VerticalAngle float64 `json:"atv"`
}

// Valid reports whether both angles are finite.
func (p SphericalPoint) Valid() bool {
	return isFinite(p.Azimuth) && isFinite(p.VerticalAngle)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
