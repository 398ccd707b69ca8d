package img2ascii

import (
	"fmt"
	"math"
)

// Orientation is the coarse direction class of an intensity gradient.
type Orientation uint8

const (
	Horizontal Orientation = iota
	DiagonalRising
	Vertical
	DiagonalFalling
)

var orientationGlyphs = [...]rune{
	Horizontal:      '-',
	DiagonalRising:  '/',
	Vertical:        '|',
	DiagonalFalling: '\\',
}

var orientationNames = [...]string{
	Horizontal:      "horizontal",
	DiagonalRising:  "diagonal-rising",
	Vertical:        "vertical",
	DiagonalFalling: "diagonal-falling",
}

// Glyph returns the character drawn for an edge block of this class.
func (o Orientation) Glyph() rune {
	if int(o) < len(orientationGlyphs) {
		return orientationGlyphs[o]
	}
	return '?'
}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ClassifyDegrees buckets a gradient angle in degrees. The angle is
// folded into [0,180) as (deg+180) mod 180, then
//
//	(22.5, 67.5]   DiagonalRising
//	(67.5, 112.5]  Vertical
//	(112.5, 157.5] DiagonalFalling
//
// and everything else, including 0 and the fold point, is Horizontal.
func ClassifyDegrees(deg float64) Orientation {
	a := math.Mod(deg+180, 180)
	if a < 0 {
		a += 180
	}
	switch {
	case a > 22.5 && a <= 67.5:
		return DiagonalRising
	case a > 67.5 && a <= 112.5:
		return Vertical
	case a > 112.5 && a <= 157.5:
		return DiagonalFalling
	}
	return Horizontal
}

// ClassifyAngle buckets a gradient angle in radians, as produced by
// atan2(gy, gx).
func ClassifyAngle(rad float32) Orientation {
	return ClassifyDegrees(float64(rad) * 180 / math.Pi)
}
