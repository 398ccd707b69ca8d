package img2ascii

import (
	"fmt"
	"image"
	"image/draw"
	"strings"
)

// Grid is the resolved glyph of every whole block, row-major.
type Grid struct {
	Cols  int
	Rows  int
	Block int
	Cells []rune
}

// At returns the glyph of block (col, row).
func (g *Grid) At(col, row int) rune {
	return g.Cells[row*g.Cols+col]
}

// Lines returns one string per block row. Every line holds exactly Cols
// glyphs, so lines are equal in rune count. Their byte lengths differ when
// the alphabet mixes single and multi-byte runes, such as BlockAlphabet.
func (g *Grid) Lines() []string {
	lines := make([]string, g.Rows)
	for row := range lines {
		lines[row] = string(g.Cells[row*g.Cols : (row+1)*g.Cols])
	}
	return lines
}

// String joins the lines with newlines.
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// DrawOp places one glyph with the top-left corner of its block at
// Origin.
type DrawOp struct {
	Glyph  rune
	Origin image.Point
}

// Ops lists one DrawOp per block in row-major order.
func (g *Grid) Ops() []DrawOp {
	ops := make([]DrawOp, 0, len(g.Cells))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			ops = append(ops, DrawOp{
				Glyph:  g.At(col, row),
				Origin: image.Pt(col*g.Block, row*g.Block),
			})
		}
	}
	return ops
}

// Bounds is the pixel area covered by the grid's blocks.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Cols*g.Block, g.Rows*g.Block)
}

// Target turns a resolved grid into one kind of output.
type Target interface {
	Emit(g *Grid, out *Output) error
}

type textTarget struct{}

func (textTarget) Emit(g *Grid, out *Output) error {
	out.Lines = g.Lines()
	return nil
}

type rasterTarget struct {
	r *Renderer
}

func (t rasterTarget) Emit(g *Grid, out *Output) error {
	canvas := image.NewRGBA(g.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(t.r.background), image.Point{}, draw.Src)

	out.Ops = g.Ops()
	for _, op := range out.Ops {
		t.r.rasterizer.DrawGlyph(canvas, op.Glyph, op.Origin)
	}
	out.Image = canvas
	return nil
}

// target picks the emitter for mode.
func (r *Renderer) target(mode Mode) (Target, error) {
	switch mode {
	case ModeText:
		return textTarget{}, nil
	case ModeRaster:
		return rasterTarget{r: r}, nil
	}
	return nil, fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, int(mode))
}
