// Package view supplies the ViewState that annotation geometry is computed
// against. Readers may fail; a Chain degrades to the neutral view instead of
// failing the capture.
package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/OCAP2/panorama/internal/projection"
	"github.com/OCAP2/panorama/pkg/core"
)

// ErrUnavailable is returned by readers that have no view to report.
var ErrUnavailable = errors.New("view unavailable")

// Reader returns the camera's view at the moment of the call.
type Reader interface {
	Read() (core.ViewState, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func() (core.ViewState, error)

func (f ReaderFunc) Read() (core.ViewState, error) {
	return f()
}

// Defaults describes the neutral view: the field of view and the full window
// viewport used when nothing better is known.
type Defaults struct {
	FieldOfView    float64 `json:"defaultFov" mapstructure:"defaultFov"`
	ViewportWidth  float64 `json:"defaultWidth" mapstructure:"defaultWidth"`
	ViewportHeight float64 `json:"defaultHeight" mapstructure:"defaultHeight"`
}

// StandardDefaults is a 90 degree view over a 1920x1080 window.
func StandardDefaults() Defaults {
	return Defaults{FieldOfView: 90, ViewportWidth: 1920, ViewportHeight: 1080}
}

// Neutral returns the view looking at azimuth 0 on the horizon.
func Neutral(d Defaults) core.ViewState {
	return Clamp(core.ViewState{}, d)
}

// Clamp brings v into the range the projection accepts. The field of view is
// bounded to [core.MinFieldOfView, core.MaxFieldOfView], a missing viewport
// dimension is taken from d and look angles are normalised.
func Clamp(v core.ViewState, d Defaults) core.ViewState {
	fallback := StandardDefaults()
	if !usable(d.FieldOfView) {
		d.FieldOfView = fallback.FieldOfView
	}
	if !usable(d.ViewportWidth) {
		d.ViewportWidth = fallback.ViewportWidth
	}
	if !usable(d.ViewportHeight) {
		d.ViewportHeight = fallback.ViewportHeight
	}

	if !usable(v.FieldOfView) {
		v.FieldOfView = d.FieldOfView
	}
	v.FieldOfView = math.Max(core.MinFieldOfView, math.Min(core.MaxFieldOfView, v.FieldOfView))
	if !usable(v.ViewportWidth) {
		v.ViewportWidth = d.ViewportWidth
	}
	if !usable(v.ViewportHeight) {
		v.ViewportHeight = d.ViewportHeight
	}
	if math.IsNaN(v.HorizontalLookAngle) || math.IsInf(v.HorizontalLookAngle, 0) {
		v.HorizontalLookAngle = 0
	}
	if math.IsNaN(v.VerticalLookAngle) || math.IsInf(v.VerticalLookAngle, 0) {
		v.VerticalLookAngle = 0
	}
	v.HorizontalLookAngle = projection.NormalizeAzimuth(v.HorizontalLookAngle)
	v.VerticalLookAngle = projection.ClampVerticalAngle(v.VerticalLookAngle)
	return v
}

func usable(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

// Fixed always reports the same view, typically one restored from storage.
type Fixed core.ViewState

func (f Fixed) Read() (core.ViewState, error) {
	return core.ViewState(f), nil
}

// File reads a JSON ViewState from Path on every call.
type File struct {
	Path string
}

func (f File) Read() (core.ViewState, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return core.ViewState{}, fmt.Errorf("failed to read view file: %w", err)
	}
	var v core.ViewState
	if err := json.Unmarshal(data, &v); err != nil {
		return core.ViewState{}, fmt.Errorf("failed to parse view file: %w", err)
	}
	return v, nil
}

// Chain tries its readers in order; the first success wins. When every
// reader fails the neutral view is returned.
type Chain struct {
	readers  []Reader
	defaults Defaults
	logger   *slog.Logger
}

// NewChain creates a chain over readers. logger may be nil.
func NewChain(d Defaults, logger *slog.Logger, readers ...Reader) *Chain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{readers: readers, defaults: d, logger: logger}
}

// Read never fails.
func (c *Chain) Read() (core.ViewState, error) {
	for i, r := range c.readers {
		if r == nil {
			continue
		}
		v, err := r.Read()
		if err != nil {
			c.logger.Debug("view reader failed", "reader", i, "error", err)
			continue
		}
		return Clamp(v, c.defaults), nil
	}
	c.logger.Warn("no view available, using neutral view", "readers", len(c.readers))
	return Neutral(c.defaults), nil
}

// Capture reads the view once for a drawing gesture.
func Capture(r Reader, d Defaults) core.ViewState {
	if r == nil {
		return Neutral(d)
	}
	v, err := r.Read()
	if err != nil {
		return Neutral(d)
	}
	return Clamp(v, d)
}
