// Package geo builds annotation geometry from drawing-tool input and projects
// stored annotations back onto the current viewport.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/panorama/internal/projection"
	"github.com/OCAP2/panorama/internal/simplify"
	"github.com/OCAP2/panorama/pkg/core"
)

// ErrInvalidCoordinates is returned when a vertex is not a finite number
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ErrTooFewVertices is returned when a shape has fewer vertices than its kind needs
var ErrTooFewVertices = errors.New("too few vertices for shape")

// ErrInvalidView is returned when the captured view cannot be projected through
var ErrInvalidView = errors.New("invalid view state")

// DefaultCircleSegments is the number of vertices a drawn circle is sampled into.
const DefaultCircleSegments = 32

// Options controls shape vertex construction.
type Options struct {
	CircleSegments int
	FreeDrawTarget int
}

// DefaultOptions returns the resolutions used by the drawing tools.
func DefaultOptions() Options {
	return Options{
		CircleSegments: DefaultCircleSegments,
		FreeDrawTarget: simplify.DefaultTarget,
	}
}

// BoxCorners returns the four corners of the rectangle spanned by a and b,
// clockwise from the top-left.
func BoxCorners(a, b core.ScreenPoint) []core.ScreenPoint {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return []core.ScreenPoint{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// CircleVertices samples the circle centred at center and passing through
// edge into a regular polygon. The radius is measured in viewport pixels so
// the circle stays round on a non-square viewport.
func CircleVertices(center, edge core.ScreenPoint, view core.ViewState, segments int) []core.ScreenPoint {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	w, h := view.ViewportWidth, view.ViewportHeight
	cx, cy := center.X*w, center.Y*h
	radius := math.Hypot(edge.X*w-cx, edge.Y*h-cy)

	out := make([]core.ScreenPoint, segments)
	for i := range out {
		s, c := math.Sincos(float64(i) / float64(segments) * 2 * math.Pi)
		out[i] = core.ScreenPoint{
			X: (cx + radius*c) / w,
			Y: (cy + radius*s) / h,
		}
	}
	return out
}

// BuildVertices turns raw drawing-tool input into the screen vertices of the
// shape:
//   - box: two opposite corners, or the four corners already
//   - circle: center followed by a point on the rim
//   - polygon: the operator's vertices, at least three
//   - freeDraw: the raw stroke, simplified to opts.FreeDrawTarget points
func BuildVertices(kind core.Kind, input []core.ScreenPoint, view core.ViewState, opts Options) ([]core.ScreenPoint, error) {
	for _, p := range input {
		if !p.Valid() {
			return nil, ErrInvalidCoordinates
		}
	}

	switch kind {
	case core.KindBox:
		switch len(input) {
		case 2:
			return BoxCorners(input[0], input[1]), nil
		case 4:
			return append([]core.ScreenPoint(nil), input...), nil
		}
		return nil, fmt.Errorf("box needs 2 or 4 points, got %d: %w", len(input), ErrTooFewVertices)
	case core.KindCircle:
		if len(input) < 2 {
			return nil, fmt.Errorf("circle needs center and rim point: %w", ErrTooFewVertices)
		}
		if input[0] == input[1] {
			return nil, fmt.Errorf("circle has zero radius: %w", ErrTooFewVertices)
		}
		return CircleVertices(input[0], input[1], view, opts.CircleSegments), nil
	case core.KindPolygon:
		if len(input) < kind.MinVertices() {
			return nil, fmt.Errorf("polygon needs %d points, got %d: %w", kind.MinVertices(), len(input), ErrTooFewVertices)
		}
		return append([]core.ScreenPoint(nil), input...), nil
	case core.KindFreeDraw:
		if len(input) < kind.MinVertices() {
			return nil, fmt.Errorf("stroke needs %d points, got %d: %w", kind.MinVertices(), len(input), ErrTooFewVertices)
		}
		target := opts.FreeDrawTarget
		if target <= 0 {
			target = simplify.DefaultTarget
		}
		return simplify.Simplify(input, target), nil
	default:
		return nil, fmt.Errorf("unknown annotation kind %q", kind)
	}
}

// CreateFromScreenShape converts finished screen vertices into an annotation
// in spherical coordinates. Every vertex goes through the view captured when
// the gesture started, never the live camera, so vertices placed before and
// after a mid-gesture rotation stay consistent.
func CreateFromScreenShape(kind core.Kind, screenVertices []core.ScreenPoint, captured core.ViewState) (core.Annotation, error) {
	vertices, err := ToSpherical(kind, screenVertices, captured)
	if err != nil {
		return core.Annotation{}, err
	}
	return core.Annotation{
		Kind:       kind,
		Vertices:   vertices,
		SourceView: captured,
	}, nil
}

// ToSpherical validates screen vertices for kind and projects them through
// view.
func ToSpherical(kind core.Kind, screenVertices []core.ScreenPoint, view core.ViewState) ([]core.SphericalPoint, error) {
	if !view.Valid() {
		return nil, ErrInvalidView
	}
	if len(screenVertices) < kind.MinVertices() {
		return nil, fmt.Errorf("%s needs %d vertices, got %d: %w", kind, kind.MinVertices(), len(screenVertices), ErrTooFewVertices)
	}
	for _, p := range screenVertices {
		if !p.Valid() {
			return nil, ErrInvalidCoordinates
		}
	}
	return projection.ScreenToSphericalAll(screenVertices, view), nil
}

// RenderAnnotation projects an annotation through the current view. Vertices
// that rotated out of view are dropped; nil means the shape should not be
// drawn this frame.
func RenderAnnotation(a core.Annotation, current core.ViewState) []core.ScreenPoint {
	if !current.Valid() {
		return nil
	}
	out := projection.ConvertPolygonToScreenVertices(a.Vertices, current)
	if len(out) < a.Kind.MinVertices() {
		return nil
	}
	return out
}
