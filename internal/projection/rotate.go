package projection

import (
	"math"

	"github.com/golang/geo/r3"
)

// pitch rotates v about the X axis by deg.
func pitch(v r3.Vector, deg float64) r3.Vector {
	s, c := math.Sincos(DegToRad(deg))
	return r3.Vector{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// yaw rotates v about the Y axis by deg.
func yaw(v r3.Vector, deg float64) r3.Vector {
	s, c := math.Sincos(DegToRad(deg))
	return r3.Vector{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// cameraToWorld applies pitch then yaw. The order matters whenever both look
// angles are non-zero.
func cameraToWorld(v r3.Vector, hlookat, vlookat float64) r3.Vector {
	return yaw(pitch(v, vlookat), hlookat)
}

// worldToCamera undoes cameraToWorld: inverse yaw first, then inverse pitch.
// Camera roll is not modelled.
func worldToCamera(v r3.Vector, hlookat, vlookat float64) r3.Vector {
	return pitch(yaw(v, -hlookat), -vlookat)
}
