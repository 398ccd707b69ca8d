package imageutil

// flatRangeEpsilon is the widest value range still treated as constant.
const flatRangeEpsilon = 1e-9

// NormalizeMinMax linearly rescales a float grid so its minimum maps to 0
// and its maximum to 255, rounding into a GrayImage. A constant grid has
// no range to stretch and normalizes to all zeros.
func NormalizeMinMax(grid [][]float64) *GrayImage {
	height := len(grid)
	width := 0
	if height > 0 {
		width = len(grid[0])
	}
	flat := make([]float64, 0, width*height)
	for _, row := range grid {
		flat = append(flat, row...)
	}
	return normalizeFlat(flat, width, height)
}

func normalizeFlat(values []float64, width, height int) *GrayImage {
	dst := NewGrayImage(width, height)
	if len(values) == 0 {
		return dst
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo < flatRangeEpsilon {
		return dst
	}

	scale := 255 / (hi - lo)
	for i, v := range values {
		dst.SetGrayValue(i%width, i/width, clampUint8((v-lo)*scale))
	}
	return dst
}
