package view

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var failing = ReaderFunc(func() (core.ViewState, error) {
	return core.ViewState{}, ErrUnavailable
})

func TestNeutral(t *testing.T) {
	v := Neutral(StandardDefaults())

	assert.Equal(t, core.ViewState{FieldOfView: 90, ViewportWidth: 1920, ViewportHeight: 1080}, v)
	assert.True(t, v.Valid())
}

func TestNeutral_BrokenDefaults(t *testing.T) {
	v := Neutral(Defaults{FieldOfView: -1, ViewportWidth: math.NaN()})
	assert.Equal(t, StandardDefaults().FieldOfView, v.FieldOfView)
	assert.Equal(t, StandardDefaults().ViewportWidth, v.ViewportWidth)
	assert.Equal(t, StandardDefaults().ViewportHeight, v.ViewportHeight)
}

func TestClamp(t *testing.T) {
	d := Defaults{FieldOfView: 75, ViewportWidth: 800, ViewportHeight: 600}

	tests := []struct {
		name string
		in   core.ViewState
		want core.ViewState
	}{
		{
			name: "fov too narrow",
			in:   core.ViewState{FieldOfView: 1, ViewportWidth: 100, ViewportHeight: 100},
			want: core.ViewState{FieldOfView: 5, ViewportWidth: 100, ViewportHeight: 100},
		},
		{
			name: "fov too wide",
			in:   core.ViewState{FieldOfView: 200, ViewportWidth: 100, ViewportHeight: 100},
			want: core.ViewState{FieldOfView: 179, ViewportWidth: 100, ViewportHeight: 100},
		},
		{
			name: "missing fov and viewport",
			in:   core.ViewState{HorizontalLookAngle: 10},
			want: core.ViewState{HorizontalLookAngle: 10, FieldOfView: 75, ViewportWidth: 800, ViewportHeight: 600},
		},
		{
			name: "look angles out of range",
			in:   core.ViewState{HorizontalLookAngle: 370, VerticalLookAngle: 120, FieldOfView: 90, ViewportWidth: 1, ViewportHeight: 1},
			want: core.ViewState{HorizontalLookAngle: 10, VerticalLookAngle: 90, FieldOfView: 90, ViewportWidth: 1, ViewportHeight: 1},
		},
		{
			name: "nan look angle",
			in:   core.ViewState{HorizontalLookAngle: math.NaN(), FieldOfView: 90, ViewportWidth: 1, ViewportHeight: 1},
			want: core.ViewState{FieldOfView: 90, ViewportWidth: 1, ViewportHeight: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.in, d)
			assert.InDelta(t, tt.want.HorizontalLookAngle, got.HorizontalLookAngle, 1e-9)
			assert.Equal(t, tt.want.VerticalLookAngle, got.VerticalLookAngle)
			assert.Equal(t, tt.want.FieldOfView, got.FieldOfView)
			assert.Equal(t, tt.want.ViewportWidth, got.ViewportWidth)
			assert.Equal(t, tt.want.ViewportHeight, got.ViewportHeight)
		})
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := core.ViewState{HorizontalLookAngle: 20, FieldOfView: 60, ViewportWidth: 640, ViewportHeight: 480}
	second := core.ViewState{HorizontalLookAngle: 40, FieldOfView: 60, ViewportWidth: 640, ViewportHeight: 480}

	c := NewChain(StandardDefaults(), nil, failing, nil, Fixed(first), Fixed(second))
	v, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, first, v)
}

func TestChain_AllFail(t *testing.T) {
	c := NewChain(StandardDefaults(), nil, failing, failing)
	v, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, Neutral(StandardDefaults()), v)
}

func TestChain_Empty(t *testing.T) {
	v, err := NewChain(StandardDefaults(), nil).Read()
	require.NoError(t, err)
	assert.Equal(t, Neutral(StandardDefaults()), v)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "view.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hlookat":45,"vlookat":-10,"fov":70,"width":1280,"height":720}`), 0644))

	v, err := File{Path: path}.Read()
	require.NoError(t, err)
	assert.Equal(t, core.ViewState{HorizontalLookAngle: 45, VerticalLookAngle: -10, FieldOfView: 70, ViewportWidth: 1280, ViewportHeight: 720}, v)

	_, err = File{Path: filepath.Join(dir, "missing.json")}.Read()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = File{Path: path}.Read()
	assert.Error(t, err)
}

func TestCapture(t *testing.T) {
	assert.Equal(t, Neutral(StandardDefaults()), Capture(nil, StandardDefaults()))
	assert.Equal(t, Neutral(StandardDefaults()), Capture(failing, StandardDefaults()))

	v := Capture(Fixed(core.ViewState{FieldOfView: 500, ViewportWidth: 10, ViewportHeight: 10}), StandardDefaults())
	assert.Equal(t, 179.0, v.FieldOfView)
}
