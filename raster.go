package img2ascii

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Rasterizer paints a single glyph into the block whose top-left corner
// is origin. Implementations own the glyph shape and anti-aliasing; the
// pipeline only chooses the glyph and where it goes.
type Rasterizer interface {
	DrawGlyph(dst draw.Image, r rune, origin image.Point)
}

// FaceRasterizer draws glyphs with a golang.org/x/image/font face. Faces
// keep glyph caches, so drawing is serialized.
type FaceRasterizer struct {
	mu       sync.Mutex
	face     font.Face
	src      image.Image
	baseline int
}

// NewFaceRasterizer returns a rasterizer that draws Go Regular glyphs
// sized to fill a block x block cell in the color fg.
func NewFaceRasterizer(block int, fg color.Color) (*FaceRasterizer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(block),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return NewFaceRasterizerFromFace(face, block, fg), nil
}

// NewFaceRasterizerFromFace wraps an existing face. The baseline sits
// far enough above the bottom of the block to keep descenders inside it.
func NewFaceRasterizerFromFace(face font.Face, block int, fg color.Color) *FaceRasterizer {
	baseline := block - face.Metrics().Descent.Ceil()
	if baseline < 1 {
		baseline = block
	}
	return &FaceRasterizer{
		face:     face,
		src:      image.NewUniform(fg),
		baseline: baseline,
	}
}

func (fr *FaceRasterizer) DrawGlyph(dst draw.Image, r rune, origin image.Point) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	d := font.Drawer{
		Dst:  dst,
		Src:  fr.src,
		Face: fr.face,
		Dot:  fixed.P(origin.X, origin.Y+fr.baseline),
	}
	d.DrawString(string(r))
}
