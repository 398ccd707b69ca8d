package imageutil

import "math"

// Gradient holds per-pixel first-derivative magnitude and direction in
// row-major order. Angles are in radians within [-pi, pi].
type Gradient struct {
	Width     int
	Height    int
	Magnitude []float32
	Angle     []float32
}

// At returns the magnitude and angle at (x, y).
func (g *Gradient) At(x, y int) (magnitude, angle float32) {
	i := y*g.Width + x
	return g.Magnitude[i], g.Angle[i]
}

// NormalizedMagnitude min-max scales the magnitude into an 8-bit image.
// A gradient-free field yields all zeros.
func (g *Gradient) NormalizedMagnitude() *GrayImage {
	values := make([]float64, len(g.Magnitude))
	for i, m := range g.Magnitude {
		values[i] = float64(m)
	}
	return normalizeFlat(values, g.Width, g.Height)
}

var (
	sobelXKernel = NewKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
	sobelYKernel = NewKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
)

// sobelGradients computes horizontal and vertical Sobel gradients.
func sobelGradients(img *GrayImage) (gx, gy [][]float64) {
	gray := img.Floats()
	gx = ConvolveGrayFloat(gray, sobelXKernel)
	gy = ConvolveGrayFloat(gray, sobelYKernel)
	return gx, gy
}

// Sobel computes the gradient field of a grayscale image with the 3x3
// Sobel operator: magnitude = sqrt(gx^2 + gy^2), angle = atan2(gy, gx).
// The y axis points down, as in image coordinates.
func Sobel(img *GrayImage) *Gradient {
	width, height := img.Width(), img.Height()
	gx, gy := sobelGradients(img)

	g := &Gradient{
		Width:     width,
		Height:    height,
		Magnitude: make([]float32, width*height),
		Angle:     make([]float32, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			g.Magnitude[i] = float32(math.Sqrt(gx[y][x]*gx[y][x] + gy[y][x]*gy[y][x]))
			g.Angle[i] = float32(math.Atan2(gy[y][x], gx[y][x]))
		}
	}
	return g
}
