// Package img2ascii converts raster images into character grids that
// keep both local brightness and dominant edge direction.
//
// The pipeline runs in five stages. The input is reduced to an 8-bit
// intensity buffer and a band-passed (difference of gaussians) copy of
// it. Sobel gradients of the band-passed copy give a per-pixel edge mask
// and orientation class, while block means of the plain intensity give
// one glyph index per block. Both are aligned on the block grid and each
// block resolves to an orientation glyph when it sits on an edge, or to
// its luminance glyph otherwise. The resolved grid is emitted as text
// lines or painted onto a raster canvas.
package img2ascii

import (
	"errors"
	"fmt"
	"image"
	"reflect"
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

var (
	// ErrInvalidInput reports a nil or zero-sized image.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrInvalidConfig reports an unusable Renderer setting.
	ErrInvalidConfig = errors.New("invalid renderer configuration")
)

// Mode selects how a resolved glyph grid is emitted.
type Mode int

const (
	// ModeText emits one string per block row.
	ModeText Mode = iota
	// ModeRaster paints every glyph onto an image.
	ModeRaster
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeRaster:
		return "raster"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "text" or "raster".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return ModeText, nil
	case "raster", "image", "png":
		return ModeRaster, nil
	}
	return ModeText, fmt.Errorf("%w: unknown output mode %q", ErrInvalidConfig, s)
}

// Output is the result of one Render call. Grid is always set; Lines is
// set in ModeText, Ops and Image in ModeRaster.
type Output struct {
	Mode  Mode
	Grid  *Grid
	Lines []string
	Ops   []DrawOp
	Image *image.RGBA
}

// Text returns the text lines joined with newlines.
func (o *Output) Text() string {
	return strings.Join(o.Lines, "\n")
}

// Render runs the whole pipeline on img. The image is expected to be
// already sized to the output resolution. edgeTolerance is clamped into
// [0, MaxEdgeTolerance]. It fails with ErrInvalidInput for a nil or empty
// image and ErrInvalidConfig for an unknown mode.
func (r *Renderer) Render(img image.Image, edgeTolerance int, mode Mode) (*Output, error) {
	if _, err := r.target(mode); err != nil {
		return nil, err
	}

	a, err := r.Analyze(img, edgeTolerance)
	if err != nil {
		return nil, err
	}
	return a.Render(mode)
}

// Render composes the analyzed buffers into a glyph grid and emits it in
// mode, using the Renderer that produced a. The pipeline is not rerun.
func (a *Analysis) Render(mode Mode) (*Output, error) {
	if a == nil || a.r == nil || a.Aligned == nil {
		return nil, fmt.Errorf("%w: analysis not produced by a Renderer", ErrInvalidInput)
	}
	target, err := a.r.target(mode)
	if err != nil {
		return nil, err
	}

	grid := a.Aligned.Compose(a.r.alphabet)
	out := &Output{Mode: mode, Grid: grid}
	if err := target.Emit(grid, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderText is Render in ModeText, returning the lines.
func (r *Renderer) RenderText(img image.Image, edgeTolerance int) ([]string, error) {
	out, err := r.Render(img, edgeTolerance, ModeText)
	if err != nil {
		return nil, err
	}
	return out.Lines, nil
}

// RenderImage is Render in ModeRaster, returning the painted canvas.
func (r *Renderer) RenderImage(img image.Image, edgeTolerance int) (*image.RGBA, error) {
	out, err := r.Render(img, edgeTolerance, ModeRaster)
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// checkInput rejects nil and empty images, including typed nil pointers
// of any concrete image type.
func checkInput(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if v := reflect.ValueOf(img); v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Errorf("%w: nil %T", ErrInvalidInput, img)
	}
	if v, ok := img.(*imageutil.RGBAImage); ok && v.RGBA == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: empty bounds %v", ErrInvalidInput, b)
	}
	return nil
}
