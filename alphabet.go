package img2ascii

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Alphabet is an ordered set of glyphs from darkest (index 0) to
// brightest. Every glyph must be a printable, single-cell rune so text
// output stays aligned on a monospace grid.
type Alphabet []rune

var (
	// DefaultAlphabet is the ten-step ASCII ramp.
	DefaultAlphabet = Alphabet(" .:coPO?#@")

	// BlockAlphabet extends the default ramp with a solid square for the
	// brightest step. The square is not ASCII, so not every font has it.
	BlockAlphabet = Alphabet(" .:coPO?#@■")
)

// Validate reports whether the alphabet can be used by a Renderer.
func (a Alphabet) Validate() error {
	if len(a) < 2 {
		return fmt.Errorf("%w: alphabet needs at least 2 glyphs, got %d",
			ErrInvalidConfig, len(a))
	}
	for i, r := range a {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: alphabet glyph %d (%U) is not printable",
				ErrInvalidConfig, i, r)
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return fmt.Errorf("%w: alphabet glyph %d (%q) is double width",
				ErrInvalidConfig, i, r)
		}
	}
	return nil
}

func (a Alphabet) String() string {
	return string(a)
}

// ParseAlphabet builds an Alphabet from a string and validates it.
func ParseAlphabet(s string) (Alphabet, error) {
	a := Alphabet(s)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// OverflowPolicy decides what happens to the brightest sample, whose
// raw index floor(255/255*N) equals the alphabet length.
type OverflowPolicy int

const (
	// OverflowWrap takes the index modulo N, so pure white maps to the
	// darkest glyph. This matches the historical output.
	OverflowWrap OverflowPolicy = iota
	// OverflowClamp pins the index to N-1, the brightest glyph.
	OverflowClamp
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowWrap:
		return "wrap"
	case OverflowClamp:
		return "clamp"
	}
	return fmt.Sprintf("OverflowPolicy(%d)", int(p))
}

// ParseOverflow parses "wrap" or "clamp".
func ParseOverflow(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "wrap":
		return OverflowWrap, nil
	case "clamp":
		return OverflowClamp, nil
	}
	return OverflowWrap, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidConfig, s)
}

// Index maps a normalized luminance sample to a glyph index:
// floor(v / 255 * N), with the v=255 overflow handled by policy.
func (a Alphabet) Index(v uint8, policy OverflowPolicy) int {
	n := len(a)
	i := int(v) * n / 255
	if i >= n {
		if policy == OverflowClamp {
			return n - 1
		}
		return i % n
	}
	return i
}
