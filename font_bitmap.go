package img2ascii

import (
	"encoding/gob"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/image/font"
)

const (
	// GlyphWidth and GlyphHeight define the bitmap character cell size
	GlyphWidth  = 8
	GlyphHeight = 8
)

// GlyphBitmap represents an 8x8 character as a 64-bit integer
// Each bit represents a pixel: 1 = foreground, 0 = background
type GlyphBitmap uint64

// FontBitmaps holds pre-rendered 8x8 bitmaps of the glyphs a Renderer can
// emit. It implements Rasterizer by painting the set bits of a glyph,
// each enlarged to a Scale x Scale square, in Foreground. It is read-only
// after loading and safe for concurrent use.
type FontBitmaps struct {
	Scale      int
	Foreground color.Color

	glyphs   map[rune]GlyphBitmap
	fallback map[rune]GlyphBitmap
	name     string
}

// getBit checks if a specific bit is set in the bitmap
func (g GlyphBitmap) getBit(x, y int) bool {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return false
	}
	return g&(1<<(y*GlyphWidth+x)) != 0
}

// setBit sets a specific bit in the bitmap
func (g *GlyphBitmap) setBit(x, y int, value bool) {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return
	}
	pos := y*GlyphWidth + x
	if value {
		*g |= 1 << pos
	} else {
		*g &= ^(1 << pos)
	}
}

// String draws the bitmap as eight rows of '#' and '.'.
func (g GlyphBitmap) String() string {
	var sb strings.Builder
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if g.getBit(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		if y < GlyphHeight-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// GlyphRunes lists every rune a Renderer using alphabet may draw: the
// alphabet followed by the four orientation glyphs.
func GlyphRunes(a Alphabet) []rune {
	runes := append([]rune(nil), a...)
	for o := Horizontal; o <= DiagonalFalling; o++ {
		runes = append(runes, o.Glyph())
	}
	return runes
}

// LoadFontBitmaps pre-renders runes from a TrueType file. The fallback
// font is optional and used for runes the primary font lacks.
func LoadFontBitmaps(primaryPath, fallbackPath string, runes []rune) (*FontBitmaps, error) {
	primary, err := os.ReadFile(primaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	var fallback []byte
	if fallbackPath != "" {
		fallback, err = os.ReadFile(fallbackPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback font: %w", err)
		}
	}
	return NewFontBitmaps(primaryPath, primary, fallback, runes)
}

// NewFontBitmaps pre-renders runes from TrueType data held in memory.
func NewFontBitmaps(name string, primaryTTF, fallbackTTF []byte, runes []rune) (*FontBitmaps, error) {
	fb := &FontBitmaps{
		Scale:      1,
		Foreground: color.White,
		glyphs:     make(map[rune]GlyphBitmap),
		fallback:   make(map[rune]GlyphBitmap),
		name:       name,
	}

	primaryFont, err := freetype.ParseFont(primaryTTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}

	var fallbackFont *truetype.Font
	if len(fallbackTTF) > 0 {
		fallbackFont, err = freetype.ParseFont(fallbackTTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fallback font: %w", err)
		}
	}

	for _, r := range runes {
		if primaryFont.Index(r) != 0 || r == ' ' {
			fb.glyphs[r] = renderGlyphToBitmap(primaryFont, r)
		}
		if fallbackFont != nil && fallbackFont.Index(r) != 0 {
			fb.fallback[r] = renderGlyphToBitmap(fallbackFont, r)
		}
	}

	return fb, nil
}

// Name returns the font the bitmaps were rendered from.
func (fb *FontBitmaps) Name() string {
	return fb.name
}

// renderGlyphToBitmap renders a single glyph to an 8x8 bitmap.
//
// The glyph is drawn into an alpha image so anti-aliased coverage can be
// thresholded at 25%; a 50% cut loses thin strokes like the dot of an
// 'i'. The baseline comes from the face's ascent and descent so
// descenders are not clipped.
func renderGlyphToBitmap(ttfFont *truetype.Font, r rune) GlyphBitmap {
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    float64(GlyphHeight), // 8 point size
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttfFont)
	ctx.SetFontSize(float64(GlyphHeight))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	ascent := metrics.Ascent >> 6   // 26.6 fixed point to pixels
	descent := metrics.Descent >> 6 // positive below the baseline
	baselineY := (GlyphHeight + int(ascent) - int(descent)) / 2

	pt := freetype.Pt(0, baselineY)
	ctx.DrawString(string(r), pt)

	var bitmap GlyphBitmap
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if img.AlphaAt(x, y).A > 64 { // 25% threshold
				bitmap.setBit(x, y, true)
			}
		}
	}

	return bitmap
}

// GetGlyph returns the bitmap for a character, checking fallback if needed
func (fb *FontBitmaps) GetGlyph(r rune) (GlyphBitmap, bool) {
	if bitmap, exists := fb.glyphs[r]; exists {
		return bitmap, true
	}
	if bitmap, exists := fb.fallback[r]; exists {
		return bitmap, true
	}
	return 0, false
}

// DrawGlyph paints the bitmap of r at origin. Runes without a bitmap
// leave the block untouched.
func (fb *FontBitmaps) DrawGlyph(dst draw.Image, r rune, origin image.Point) {
	bitmap, ok := fb.GetGlyph(r)
	if !ok {
		return
	}
	scale := fb.Scale
	if scale < 1 {
		scale = 1
	}
	fg := fb.Foreground
	if fg == nil {
		fg = color.White
	}

	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if !bitmap.getBit(x, y) {
				continue
			}
			rect := image.Rect(
				origin.X+x*scale, origin.Y+y*scale,
				origin.X+(x+1)*scale, origin.Y+(y+1)*scale)
			draw.Draw(dst, rect, image.NewUniform(fg), image.Point{}, draw.Src)
		}
	}
}

// Missing returns the runes that have no bitmap, in input order.
func (fb *FontBitmaps) Missing(runes []rune) []rune {
	var missing []rune
	for _, r := range runes {
		if _, ok := fb.GetGlyph(r); !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// glyphData is the serialized form of pre-rendered bitmaps.
type glyphData struct {
	FontName string
	Glyphs   map[rune]GlyphBitmap
}

// WriteGlyphData stores the bitmaps as gzip-compressed gob, so they can
// be loaded later without the font files. Fallback glyphs are folded in
// under the primary ones.
func (fb *FontBitmaps) WriteGlyphData(w io.Writer) error {
	data := glyphData{
		FontName: fb.name,
		Glyphs:   make(map[rune]GlyphBitmap, len(fb.glyphs)+len(fb.fallback)),
	}
	for r, g := range fb.fallback {
		data.Glyphs[r] = g
	}
	for r, g := range fb.glyphs {
		data.Glyphs[r] = g
	}

	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(&data); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode glyph data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}
	return nil
}

// ReadGlyphData loads bitmaps written by WriteGlyphData.
func ReadGlyphData(r io.Reader) (*FontBitmaps, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open glyph data: %w", err)
	}
	defer gz.Close()

	var data glyphData
	if err := gob.NewDecoder(gz).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode glyph data: %w", err)
	}
	if data.Glyphs == nil {
		data.Glyphs = make(map[rune]GlyphBitmap)
	}
	return &FontBitmaps{
		Scale:      1,
		Foreground: color.White,
		glyphs:     data.Glyphs,
		fallback:   make(map[rune]GlyphBitmap),
		name:       data.FontName,
	}, nil
}

// LoadGlyphData reads a glyph data file.
func LoadGlyphData(path string) (*FontBitmaps, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glyph data: %w", err)
	}
	defer f.Close()
	return ReadGlyphData(f)
}
