// Package simplify reduces free-hand strokes to compact polygons.
package simplify

import (
	"math"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/golang/geo/r2"
)

// DefaultTarget is the vertex budget used for free-draw strokes.
const DefaultTarget = 80

// toleranceRatio sets the Douglas-Peucker tolerance relative to the larger
// side of the stroke's bounding box.
const toleranceRatio = 0.002

// Simplify reduces points to roughly target vertices. Input with at most
// target points is returned unchanged. Otherwise the stroke is decimated
// uniformly and, if still above 1.5*target, run through Douglas-Peucker.
// The result never exceeds 1.5*target points and always ends with the last
// input point.
func Simplify(points []core.ScreenPoint, target int) []core.ScreenPoint {
	if target <= 0 || len(points) <= target {
		return points
	}

	sampled := Decimate(points, len(points)/target)

	limit := int(math.Floor(1.5 * float64(target)))
	if len(sampled) > limit {
		sampled = DouglasPeucker(sampled, toleranceRatio*maxExtent(sampled))
	}
	if len(sampled) > limit {
		sampled = resample(sampled, limit)
	}
	return sampled
}

// Decimate keeps every step-th point and always includes the final point.
func Decimate(points []core.ScreenPoint, step int) []core.ScreenPoint {
	if step < 1 {
		step = 1
	}
	out := make([]core.ScreenPoint, 0, len(points)/step+2)
	last := 0
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
		last = i
	}
	if len(points) > 0 && last != len(points)-1 {
		out = append(out, points[len(points)-1])
	}
	return out
}

// DouglasPeucker simplifies a polyline with the given tolerance. Inputs of
// two points or fewer are returned unchanged.
func DouglasPeucker(points []core.ScreenPoint, epsilon float64) []core.ScreenPoint {
	if len(points) <= 2 {
		return points
	}

	end := len(points) - 1
	maxDist := 0.0
	index := 0
	for i := 1; i < end; i++ {
		if d := PerpendicularDistance(points[i], points[0], points[end]); d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []core.ScreenPoint{points[0], points[end]}
	}

	left := DouglasPeucker(points[:index+1], epsilon)
	right := DouglasPeucker(points[index:], epsilon)

	out := make([]core.ScreenPoint, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// PerpendicularDistance is the distance from p to the line through a and b.
// A degenerate line (a == b) falls back to the distance from p to a, which
// happens for closed strokes.
func PerpendicularDistance(p, a, b core.ScreenPoint) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	den := math.Hypot(dx, dy)
	if den == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / den
}

// maxExtent returns the larger side of the bounding box of points.
func maxExtent(points []core.ScreenPoint) float64 {
	pts := make([]r2.Point, len(points))
	for i, p := range points {
		pts[i] = r2.Point{X: p.X, Y: p.Y}
	}
	size := r2.RectFromPoints(pts...).Size()
	return math.Max(size.X, size.Y)
}

// resample picks n points spread evenly by index, keeping both endpoints.
func resample(points []core.ScreenPoint, n int) []core.ScreenPoint {
	if n <= 1 {
		return points[len(points)-1:]
	}
	out := make([]core.ScreenPoint, n)
	span := float64(len(points) - 1)
	for i := 0; i < n; i++ {
		out[i] = points[int(math.Round(float64(i)*span/float64(n-1)))]
	}
	return out
}
