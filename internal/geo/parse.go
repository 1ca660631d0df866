package geo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/panorama/pkg/core"
)

// ScreenPointFromString parses "x,y" into a core.ScreenPoint.
func ScreenPointFromString(coords string) (core.ScreenPoint, error) {
	x, y, err := parsePair(coords)
	if err != nil {
		return core.ScreenPoint{}, err
	}
	return core.ScreenPoint{X: x, Y: y}, nil
}

// SphericalPointFromString parses "ath,atv" into a core.SphericalPoint.
func SphericalPointFromString(coords string) (core.SphericalPoint, error) {
	ath, atv, err := parsePair(coords)
	if err != nil {
		return core.SphericalPoint{}, err
	}
	return core.SphericalPoint{Azimuth: ath, VerticalAngle: atv}, nil
}

func parsePair(coords string) (float64, float64, error) {
	split := strings.Split(coords, ",")
	if len(split) < 2 {
		return 0, 0, ErrInvalidCoordinates
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(split[0]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(split[1]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	return a, b, nil
}

// ParseScreenPoints parses a JSON array of coordinates into screen points.
// Input format: "[[x1,y1],[x2,y2],...]", or a single "x,y".
func ParseScreenPoints(input string) ([]core.ScreenPoint, error) {
	if !isArray(input) {
		p, err := ScreenPointFromString(input)
		if err != nil {
			return nil, err
		}
		return []core.ScreenPoint{p}, nil
	}
	coords, err := parseCoordArray(input)
	if err != nil {
		return nil, err
	}
	out := make([]core.ScreenPoint, len(coords))
	for i, c := range coords {
		out[i] = core.ScreenPoint{X: c[0], Y: c[1]}
	}
	return out, nil
}

// ParseSphericalPoints parses a JSON array into spherical points. Both
// "[[ath,atv],...]" and the hotspot form "[{"ath":..,"atv":..},...]" are
// accepted, as is a single "ath,atv".
func ParseSphericalPoints(input string) ([]core.SphericalPoint, error) {
	if !isArray(input) {
		p, err := SphericalPointFromString(input)
		if err != nil {
			return nil, err
		}
		return []core.SphericalPoint{p}, nil
	}
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(trimmed, "[")), "{") {
		var pts []core.SphericalPoint
		if err := json.Unmarshal([]byte(trimmed), &pts); err != nil {
			return nil, fmt.Errorf("failed to parse points JSON: %w", err)
		}
		return pts, nil
	}
	coords, err := parseCoordArray(input)
	if err != nil {
		return nil, err
	}
	out := make([]core.SphericalPoint, len(coords))
	for i, c := range coords {
		out[i] = core.SphericalPoint{Azimuth: c[0], VerticalAngle: c[1]}
	}
	return out, nil
}

func isArray(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "[")
}

func parseCoordArray(input string) ([][]float64, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse points JSON: %w", err)
	}
	for i, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
	}
	return coords, nil
}
