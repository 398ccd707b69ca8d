package img2ascii

import (
	"fmt"
	"image/color"

	"github.com/wbrown/img2ascii/internal/logx"
)

const (
	// DefaultBlockSize is the side of the square pixel tile that becomes
	// one glyph.
	DefaultBlockSize = 8

	// DefaultEdgeTolerance is the edge threshold on the normalized
	// [0,255] gradient magnitude.
	DefaultEdgeTolerance = 13

	// MaxEdgeTolerance is the largest accepted edge tolerance; larger
	// values are clamped.
	MaxEdgeTolerance = 100

	// DefaultLightSigma and DefaultHeavySigma are the gaussian widths of
	// the band-pass used ahead of edge detection.
	DefaultLightSigma = 1.0
	DefaultHeavySigma = 4.0
)

// Renderer holds the configuration of the glyph pipeline. A Renderer is
// immutable once built, so one instance can serve concurrent Render calls
// and several Renderers with different alphabets or block sizes can
// coexist.
type Renderer struct {
	blockSize  int
	alphabet   Alphabet
	overflow   OverflowPolicy
	lightSigma float64
	heavySigma float64
	background color.RGBA
	rasterizer Rasterizer
	log        logx.Logger
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Defaults: 8px blocks, DefaultAlphabet, OverflowWrap, band-pass sigmas
// 1.0/4.0, black background, Go Regular glyphs, no logging.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		blockSize:  DefaultBlockSize,
		alphabet:   DefaultAlphabet,
		overflow:   OverflowWrap,
		lightSigma: DefaultLightSigma,
		heavySigma: DefaultHeavySigma,
		background: color.RGBA{A: 255},
		log:        logx.Discard,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.blockSize < 1 {
		return nil, fmt.Errorf("%w: block size must be positive, got %d",
			ErrInvalidConfig, r.blockSize)
	}
	if err := r.alphabet.Validate(); err != nil {
		return nil, err
	}
	if r.lightSigma <= 0 || r.heavySigma <= 0 {
		return nil, fmt.Errorf("%w: blur sigmas must be positive, got %g/%g",
			ErrInvalidConfig, r.lightSigma, r.heavySigma)
	}
	if r.rasterizer == nil {
		fr, err := NewFaceRasterizer(r.blockSize, color.White)
		if err != nil {
			return nil, err
		}
		r.rasterizer = fr
	}

	return r, nil
}

// WithBlockSize sets the glyph block size in pixels.
func WithBlockSize(size int) RendererOption {
	return func(r *Renderer) {
		r.blockSize = size
	}
}

// WithAlphabet sets the luminance glyph ramp, darkest first.
func WithAlphabet(a Alphabet) RendererOption {
	return func(r *Renderer) {
		r.alphabet = append(Alphabet(nil), a...)
	}
}

// WithOverflow chooses how the brightest sample is indexed.
func WithOverflow(p OverflowPolicy) RendererOption {
	return func(r *Renderer) {
		r.overflow = p
	}
}

// WithBlurSigmas sets the light and heavy gaussian sigmas of the
// band-pass filter.
func WithBlurSigmas(light, heavy float64) RendererOption {
	return func(r *Renderer) {
		r.lightSigma = light
		r.heavySigma = heavy
	}
}

// WithBackground sets the canvas color for raster output.
func WithBackground(c color.RGBA) RendererOption {
	return func(r *Renderer) {
		r.background = c
	}
}

// WithRasterizer replaces the glyph painter used for raster output.
func WithRasterizer(rz Rasterizer) RendererOption {
	return func(r *Renderer) {
		r.rasterizer = rz
	}
}

// WithLogger routes renderer diagnostics to l.
func WithLogger(l logx.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// BlockSize returns the glyph block size in pixels.
func (r *Renderer) BlockSize() int {
	return r.blockSize
}

// Alphabet returns a copy of the luminance glyph ramp.
func (r *Renderer) Alphabet() Alphabet {
	return append(Alphabet(nil), r.alphabet...)
}

// Overflow returns the brightest-sample policy.
func (r *Renderer) Overflow() OverflowPolicy {
	return r.overflow
}
