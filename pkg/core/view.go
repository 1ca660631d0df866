// pkg/core/view.go
package core

import "math"

// Field of view bounds accepted from the camera, in degrees.
const (
	MinFieldOfView = 5.0
	MaxFieldOfView = 179.0
)

// ViewState is a snapshot of the camera at one moment. Values are never
// mutated after capture; a new ViewState is produced per capture.
type ViewState struct {
	HorizontalLookAngle float64 `json:"hlookat"` // degrees, positive = rotated right
	VerticalLookAngle   float64 `json:"vlookat"` // degrees
	FieldOfView         float64 `json:"fov"`     // vertical field of view, degrees
	ViewportWidth       float64 `json:"width"`   // pixels
	ViewportHeight      float64 `json:"height"`  // pixels
}

// AspectRatio returns width/height of the viewport.
func (v ViewState) AspectRatio() float64 {
	return v.ViewportWidth / v.ViewportHeight
}

// Valid reports whether every field is finite, the viewport is non-empty and
// the field of view is inside [MinFieldOfView, MaxFieldOfView].
func (v ViewState) Valid() bool {
	for _, f := range []float64{v.HorizontalLookAngle, v.VerticalLookAngle, v.FieldOfView, v.ViewportWidth, v.ViewportHeight} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.ViewportWidth > 0 && v.ViewportHeight > 0 &&
		v.FieldOfView >= MinFieldOfView && v.FieldOfView <= MaxFieldOfView
}
