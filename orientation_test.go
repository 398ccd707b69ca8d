package img2ascii

import (
	"math"
	"testing"
)

func TestClassifyDegreesBoundaries(t *testing.T) {
	tests := []struct {
		deg  float64
		want Orientation
	}{
		{0, Horizontal},
		{45, DiagonalRising},
		{90, Vertical},
		{135, DiagonalFalling},
		{180, Horizontal},
		{-180, Horizontal},

		// Lower bounds are exclusive, upper bounds inclusive.
		{22.5, Horizontal},
		{22.6, DiagonalRising},
		{67.5, DiagonalRising},
		{67.6, Vertical},
		{112.5, Vertical},
		{112.6, DiagonalFalling},
		{157.5, DiagonalFalling},
		{157.6, Horizontal},

		// Opposite gradient directions fold together.
		{-45, DiagonalFalling},
		{-90, Vertical},
		{-135, DiagonalRising},
		{225, DiagonalRising},
		{-400, DiagonalFalling},
	}
	for _, tt := range tests {
		if got := ClassifyDegrees(tt.deg); got != tt.want {
			t.Errorf("ClassifyDegrees(%v) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

func TestClassifyAngleGlyphs(t *testing.T) {
	tests := []struct {
		rad   float64
		glyph rune
	}{
		{math.Pi / 4, '/'},
		{math.Pi / 2, '|'},
		{3 * math.Pi / 4, '\\'},
		{0, '-'},
		{math.Pi, '-'},
		{-math.Pi / 2, '|'},
	}
	for _, tt := range tests {
		got := ClassifyAngle(float32(tt.rad)).Glyph()
		if got != tt.glyph {
			t.Errorf("ClassifyAngle(%.4f) glyph = %q, want %q", tt.rad, got, tt.glyph)
		}
	}
}

func TestOrientationStrings(t *testing.T) {
	if Vertical.String() != "vertical" {
		t.Errorf("Expected \"vertical\", got %q", Vertical.String())
	}
	if Orientation(9).Glyph() != '?' {
		t.Errorf("Unknown orientation should draw '?', got %q", Orientation(9).Glyph())
	}
	if Orientation(9).String() != "Orientation(9)" {
		t.Errorf("Unexpected name %q", Orientation(9).String())
	}
}
