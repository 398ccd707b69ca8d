package img2ascii

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/img2ascii/imageutil"
)

// TestGlyphBitmapBitOperations tests basic bit operations on GlyphBitmap
func TestGlyphBitmapBitOperations(t *testing.T) {
	var bitmap GlyphBitmap

	// Test setting bits
	bitmap.setBit(0, 0, true)
	if !bitmap.getBit(0, 0) {
		t.Error("Expected bit at (0,0) to be set")
	}

	bitmap.setBit(7, 7, true)
	if !bitmap.getBit(7, 7) {
		t.Error("Expected bit at (7,7) to be set")
	}

	// Test clearing bits
	bitmap.setBit(0, 0, false)
	if bitmap.getBit(0, 0) {
		t.Error("Expected bit at (0,0) to be clear")
	}

	// Test out of bounds
	bitmap.setBit(8, 8, true)
	if bitmap.getBit(8, 8) {
		t.Error("Out of bounds bit should return false")
	}
}

func TestGlyphRunes(t *testing.T) {
	runes := GlyphRunes(Alphabet(" #"))
	want := []rune{' ', '#', '-', '/', '|', '\\'}
	if string(runes) != string(want) {
		t.Errorf("GlyphRunes = %q, want %q", string(runes), string(want))
	}
}

func TestNewFontBitmaps(t *testing.T) {
	fb, err := NewFontBitmaps("goregular", goregular.TTF, nil, GlyphRunes(DefaultAlphabet))
	if err != nil {
		t.Fatalf("NewFontBitmaps: %v", err)
	}
	if fb.Name() != "goregular" {
		t.Errorf("Expected name goregular, got %q", fb.Name())
	}

	for _, r := range GlyphRunes(DefaultAlphabet) {
		if _, ok := fb.GetGlyph(r); !ok {
			t.Errorf("Missing bitmap for %q", r)
		}
	}

	space, _ := fb.GetGlyph(' ')
	if space != 0 {
		t.Errorf("Space should be blank, got %016x", uint64(space))
	}
	for _, r := range []rune{'@', '#'} {
		if g, _ := fb.GetGlyph(r); g == 0 {
			t.Errorf("%q rendered blank", r)
		}
	}

	if _, ok := fb.GetGlyph('日'); ok {
		t.Error("Unrequested rune should have no bitmap")
	}
}

func TestNewFontBitmapsBadData(t *testing.T) {
	if _, err := NewFontBitmaps("junk", []byte("not a font"), nil, []rune("ab")); err == nil {
		t.Error("Expected an error for invalid font data")
	}
	if _, err := NewFontBitmaps("junk", goregular.TTF, []byte("nope"), []rune("ab")); err == nil {
		t.Error("Expected an error for invalid fallback font data")
	}
}

func TestLoadFontBitmaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}

	fb, err := LoadFontBitmaps(path, "", []rune("@"))
	if err != nil {
		t.Fatalf("LoadFontBitmaps: %v", err)
	}
	if _, ok := fb.GetGlyph('@'); !ok {
		t.Error("Expected bitmap for '@'")
	}

	if _, err := LoadFontBitmaps(filepath.Join(t.TempDir(), "missing.ttf"), "", nil); err == nil {
		t.Error("Expected an error for a missing font file")
	}
}

func TestFontBitmapsDrawGlyph(t *testing.T) {
	var full GlyphBitmap
	for y := 0; y < 4; y++ {
		for x := 0; x < GlyphWidth; x++ {
			full.setBit(x, y, true)
		}
	}
	fb := &FontBitmaps{
		Scale:      2,
		Foreground: color.RGBA{R: 255, A: 255},
		glyphs:     map[rune]GlyphBitmap{'▀': full},
	}

	dst := image.NewRGBA(image.Rect(0, 0, 32, 32))
	fb.DrawGlyph(dst, '▀', image.Pt(16, 16))

	red := color.RGBA{R: 255, A: 255}
	if got := dst.RGBAAt(16, 16); got != red {
		t.Errorf("Top-left of the glyph = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(31, 23); got != red {
		t.Errorf("Last painted pixel = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(16, 24); got != (color.RGBA{}) {
		t.Errorf("Unset half should stay untouched, got %v", got)
	}
	if got := dst.RGBAAt(15, 16); got != (color.RGBA{}) {
		t.Errorf("Pixel left of the block was painted: %v", got)
	}

	// Unknown runes leave the canvas alone.
	fb.DrawGlyph(dst, 'Z', image.Pt(0, 0))
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("Unknown rune painted %v", got)
	}
}

func TestRenderWithFontBitmaps(t *testing.T) {
	fb, err := NewFontBitmaps("goregular", goregular.TTF, nil, GlyphRunes(DefaultAlphabet))
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, WithRasterizer(fb), WithOverflow(OverflowClamp))

	// Clamping draws the white stripes with the densest glyph.
	canvas, err := r.RenderImage(imageutil.CreateStripesImage(96, 64, 16, true), DefaultEdgeTolerance)
	if err != nil {
		t.Fatal(err)
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}
	lit := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 96; x++ {
			switch canvas.RGBAAt(x, y) {
			case white:
				lit++
			case black:
			default:
				t.Fatalf("Pixel (%d,%d) is neither glyph nor background: %v",
					x, y, canvas.RGBAAt(x, y))
			}
		}
	}
	if lit == 0 {
		t.Error("No glyph pixels were painted")
	}
}

func TestGlyphBitmapString(t *testing.T) {
	var g GlyphBitmap
	g.setBit(0, 0, true)
	g.setBit(7, 7, true)
	want := "#.......\n" + strings.Repeat("........\n", 6) + ".......#"
	if g.String() != want {
		t.Errorf("String() =\n%s\nwant\n%s", g, want)
	}
}

func TestGlyphDataRoundTrip(t *testing.T) {
	runes := GlyphRunes(DefaultAlphabet)
	fb, err := NewFontBitmaps("goregular", goregular.TTF, nil, runes)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := fb.WriteGlyphData(&buf); err != nil {
		t.Fatalf("WriteGlyphData: %v", err)
	}
	loaded, err := ReadGlyphData(&buf)
	if err != nil {
		t.Fatalf("ReadGlyphData: %v", err)
	}

	if loaded.Name() != "goregular" {
		t.Errorf("Expected name goregular, got %q", loaded.Name())
	}
	if missing := loaded.Missing(runes); len(missing) != 0 {
		t.Errorf("Glyphs lost in round trip: %q", string(missing))
	}
	for _, r := range runes {
		want, _ := fb.GetGlyph(r)
		got, _ := loaded.GetGlyph(r)
		if got != want {
			t.Errorf("Bitmap for %q changed", r)
		}
	}

	if _, err := ReadGlyphData(strings.NewReader("garbage")); err == nil {
		t.Error("Expected an error for invalid glyph data")
	}
}

func TestFontBitmapsMissing(t *testing.T) {
	fb := &FontBitmaps{glyphs: map[rune]GlyphBitmap{'a': 1}}
	if got := fb.Missing([]rune("abc")); string(got) != "bc" {
		t.Errorf("Missing = %q, want \"bc\"", string(got))
	}
}
