package imageutil

// BlockGrid returns how many whole block x block tiles fit in a
// width x height buffer. Partial tiles at the right and bottom edges
// are not counted, and a buffer with no whole row or column of tiles
// has an empty 0x0 grid.
func BlockGrid(width, height, block int) (cols, rows int) {
	if block <= 0 {
		return 0, 0
	}
	cols, rows = width/block, height/block
	if cols == 0 || rows == 0 {
		return 0, 0
	}
	return cols, rows
}

// AreaDownsample averages each whole block x block tile of img into one
// sample (a box filter, equivalent to OpenCV INTER_AREA at an integer
// scale). The result is indexed [row][col]; partial tiles are dropped.
func AreaDownsample(img *GrayImage, block int) [][]float64 {
	cols, rows := BlockGrid(img.Width(), img.Height(), block)
	area := float64(block * block)

	means := make([][]float64, rows)
	for by := 0; by < rows; by++ {
		means[by] = make([]float64, cols)
		for bx := 0; bx < cols; bx++ {
			sum := 0
			for y := by * block; y < (by+1)*block; y++ {
				row := img.Pix[y*img.Stride:]
				for x := bx * block; x < (bx+1)*block; x++ {
					sum += int(row[x])
				}
			}
			means[by][bx] = float64(sum) / area
		}
	}
	return means
}

// UpsampleNearest replicates a row-major cols x rows grid so that every
// cell covers a block x block square, returning a row-major grid of
// (cols*block) x (rows*block) values.
func UpsampleNearest[T any](cells []T, cols, rows, block int) []T {
	width := cols * block
	out := make([]T, width*rows*block)
	for y := 0; y < rows*block; y++ {
		src := cells[(y/block)*cols:]
		dst := out[y*width:]
		for x := 0; x < width; x++ {
			dst[x] = src[x/block]
		}
	}
	return out
}

// Crop returns the top-left width x height window of a row-major grid
// whose rows are stride values long.
func Crop[T any](cells []T, stride, width, height int) []T {
	out := make([]T, 0, width*height)
	for y := 0; y < height; y++ {
		out = append(out, cells[y*stride:y*stride+width]...)
	}
	return out
}
