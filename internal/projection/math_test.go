package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegRadConversion(t *testing.T) {
	assert.InDelta(t, math.Pi, DegToRad(180), 1e-12)
	assert.InDelta(t, math.Pi/2, DegToRad(90), 1e-12)
	assert.InDelta(t, 45.0, RadToDeg(math.Pi/4), 1e-12)
	assert.InDelta(t, -30.0, RadToDeg(DegToRad(-30)), 1e-12)
}

func TestHorizontalFOV(t *testing.T) {
	// Square viewport: horizontal equals vertical.
	assert.InDelta(t, 90.0, HorizontalFOV(90, 1), 1e-9)
	// 2:1 viewport at 90 vertical: 2*atan(2).
	assert.InDelta(t, 2*RadToDeg(math.Atan(2)), HorizontalFOV(90, 2), 1e-9)
	// Narrow viewport gives a smaller horizontal FOV.
	assert.Less(t, HorizontalFOV(60, 0.5), 60.0)
}

func TestScreenOffsetToAngle(t *testing.T) {
	assert.InDelta(t, 0.0, ScreenOffsetToAngle(0, 90), 1e-12)
	assert.InDelta(t, 45.0, ScreenOffsetToAngle(0.5, 90), 1e-9)
	assert.InDelta(t, -45.0, ScreenOffsetToAngle(-0.5, 90), 1e-9)
}

func TestNormalizeAzimuth(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, 180},
		{-725, -5},
		{1e6, -80},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAzimuth(tt.in), 1e-9, "in=%v", tt.in)
	}
}

func TestNormalizeAzimuth_Range(t *testing.T) {
	for deg := -2000.0; deg <= 2000; deg += 7.3 {
		a := NormalizeAzimuth(deg)
		assert.Greater(t, a, -180.0)
		assert.LessOrEqual(t, a, 180.0)
	}
}

func TestClampVerticalAngle(t *testing.T) {
	assert.Equal(t, 90.0, ClampVerticalAngle(1000))
	assert.Equal(t, -90.0, ClampVerticalAngle(-91))
	assert.Equal(t, 12.5, ClampVerticalAngle(12.5))
}

func TestNaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(NormalizeAzimuth(math.NaN())))
	assert.True(t, math.IsNaN(ClampVerticalAngle(math.NaN())))
}
