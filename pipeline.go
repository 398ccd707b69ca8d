package img2ascii

import (
	"image"
	"sync"

	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/internal/logx"
)

// Mask is a per-pixel boolean grid in row-major order.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// At reports the mask value at (x, y).
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// OrientationMap holds one Orientation per pixel in row-major order.
type OrientationMap struct {
	Width   int
	Height  int
	Classes []Orientation
}

// At returns the orientation class at (x, y).
func (m *OrientationMap) At(x, y int) Orientation {
	return m.Classes[y*m.Width+x]
}

// IndexMap holds one alphabet index per block in row-major order.
type IndexMap struct {
	Cols    int
	Rows    int
	Indices []int
}

// At returns the glyph index of block (col, row).
func (m *IndexMap) At(col, row int) int {
	return m.Indices[row*m.Cols+col]
}

// Aligned holds the glyph index, edge flag and orientation on one common
// pixel grid covering the whole blocks of the input, so all three can be
// read with the same coordinate.
type Aligned struct {
	Width       int
	Height      int
	Block       int
	Index       []int
	Edge        []bool
	Orientation []Orientation
}

// Analysis exposes every intermediate buffer of one pipeline run. All
// buffers are fresh per call and never modified after they are built.
type Analysis struct {
	Tolerance   int
	Intensity   *imageutil.GrayImage
	Enhanced    *imageutil.GrayImage
	Gradient    *imageutil.Gradient
	Magnitude   *imageutil.GrayImage
	Edges       *Mask
	Orientation *OrientationMap
	Glyphs      *IndexMap
	Aligned     *Aligned

	r *Renderer
}

// Analyze runs stages one to four of the pipeline on img and returns the
// intermediate buffers. The gradient and quantization stages run
// concurrently.
func (r *Renderer) Analyze(img image.Image, edgeTolerance int) (*Analysis, error) {
	if err := checkInput(img); err != nil {
		return nil, err
	}

	tol := clampTolerance(edgeTolerance)
	if tol != edgeTolerance {
		r.log.LogPrintf(logx.WARN, "edge tolerance %d out of range, using %d",
			edgeTolerance, tol)
	}

	rgba := imageutil.RGBAImageFromImage(img)
	a := &Analysis{Tolerance: tol, r: r}

	a.Intensity = imageutil.ToGrayscale(rgba)
	a.Enhanced = enhance(a.Intensity, r.lightSigma, r.heavySigma)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Gradient, a.Magnitude, a.Edges, a.Orientation = detectEdges(a.Enhanced, tol)
	}()
	go func() {
		defer wg.Done()
		a.Glyphs = quantize(a.Intensity, r.blockSize, r.alphabet, r.overflow)
	}()
	wg.Wait()

	a.Aligned = align(a.Glyphs, a.Edges, a.Orientation, r.blockSize)

	r.log.LogPrintf(logx.DEBUG, "analyzed %dx%d image: %dx%d blocks, %d edge pixels",
		rgba.Width(), rgba.Height(), a.Glyphs.Cols, a.Glyphs.Rows, a.Edges.Count())
	return a, nil
}

// clampTolerance pins an edge tolerance into [0, MaxEdgeTolerance].
func clampTolerance(t int) int {
	if t < 0 {
		return 0
	}
	if t > MaxEdgeTolerance {
		return MaxEdgeTolerance
	}
	return t
}

// enhance band-passes the intensity buffer and stretches the result to
// [0,255]. A flat result comes back all zero.
func enhance(gray *imageutil.GrayImage, lightSigma, heavySigma float64) *imageutil.GrayImage {
	return imageutil.NormalizeMinMax(
		imageutil.DifferenceOfGaussians(gray, lightSigma, heavySigma))
}

// detectEdges computes the Sobel field of the enhanced buffer, marks the
// pixels whose normalized magnitude exceeds tol and classifies every
// pixel's gradient direction.
func detectEdges(enhanced *imageutil.GrayImage, tol int) (
	*imageutil.Gradient, *imageutil.GrayImage, *Mask, *OrientationMap) {

	g := imageutil.Sobel(enhanced)
	norm := g.NormalizedMagnitude()

	n := g.Width * g.Height
	mask := &Mask{Width: g.Width, Height: g.Height, Bits: make([]bool, n)}
	orient := &OrientationMap{Width: g.Width, Height: g.Height, Classes: make([]Orientation, n)}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := y*g.Width + x
			mask.Bits[i] = int(norm.GetGray(x, y)) > tol
			orient.Classes[i] = ClassifyAngle(g.Angle[i])
		}
	}
	return g, norm, mask, orient
}

// quantize averages each block of the intensity buffer, stretches the
// block means to [0,255] and maps each to an alphabet index.
func quantize(gray *imageutil.GrayImage, block int, alphabet Alphabet, policy OverflowPolicy) *IndexMap {
	norm := imageutil.NormalizeMinMax(imageutil.AreaDownsample(gray, block))

	m := &IndexMap{Cols: norm.Width(), Rows: norm.Height()}
	m.Indices = make([]int, m.Cols*m.Rows)
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			m.Indices[row*m.Cols+col] = alphabet.Index(norm.GetGray(col, row), policy)
		}
	}
	return m
}

// align expands the block index map to pixel resolution and crops the
// pixel-resolution edge and orientation maps to the same whole-block
// area.
func align(glyphs *IndexMap, edges *Mask, orient *OrientationMap, block int) *Aligned {
	width, height := glyphs.Cols*block, glyphs.Rows*block
	return &Aligned{
		Width:       width,
		Height:      height,
		Block:       block,
		Index:       imageutil.UpsampleNearest(glyphs.Indices, glyphs.Cols, glyphs.Rows, block),
		Edge:        imageutil.Crop(edges.Bits, edges.Width, width, height),
		Orientation: imageutil.Crop(orient.Classes, orient.Width, width, height),
	}
}

// Compose resolves one glyph per block, reading all maps at the block's
// top-left pixel. An edge pixel always wins: its orientation glyph is
// used instead of the luminance glyph.
func (al *Aligned) Compose(alphabet Alphabet) *Grid {
	g := &Grid{Block: al.Block}
	if al.Block > 0 {
		g.Cols, g.Rows = al.Width/al.Block, al.Height/al.Block
	}
	g.Cells = make([]rune, g.Cols*g.Rows)

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			i := row*al.Block*al.Width + col*al.Block
			if al.Edge[i] {
				g.Cells[row*g.Cols+col] = al.Orientation[i].Glyph()
			} else {
				g.Cells[row*g.Cols+col] = alphabet[al.Index[i]]
			}
		}
	}
	return g
}
