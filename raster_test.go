package img2ascii

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

func countLit(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y).R > 0 {
				n++
			}
		}
	}
	return n
}

func TestFaceRasterizerDrawsInsideBlock(t *testing.T) {
	fr, err := NewFaceRasterizer(16, color.White)
	if err != nil {
		t.Fatal(err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 48, 16))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	fr.DrawGlyph(dst, '@', image.Pt(16, 0))

	if n := countLit(dst, image.Rect(16, 0, 32, 16)); n == 0 {
		t.Error("Expected '@' to light pixels in its block")
	}
	if n := countLit(dst, image.Rect(0, 0, 16, 16)); n != 0 {
		t.Errorf("%d pixels lit left of the block", n)
	}
}

func TestFaceRasterizerSpaceIsBlank(t *testing.T) {
	fr, err := NewFaceRasterizer(8, color.White)
	if err != nil {
		t.Fatal(err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	fr.DrawGlyph(dst, ' ', image.Point{})

	if n := countLit(dst, dst.Bounds()); n != 0 {
		t.Errorf("Space lit %d pixels", n)
	}
}

func TestRenderImageDrawsEdges(t *testing.T) {
	r := newTestRenderer(t, WithOverflow(OverflowClamp))
	canvas, err := r.RenderImage(imageutil.CreateStripesImage(64, 64, 16, true), DefaultEdgeTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if n := countLit(canvas, canvas.Bounds()); n == 0 {
		t.Error("Expected glyph pixels on a striped image")
	}
}
