package imageutil

import "math"

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// GaussianKernel1D returns a normalized 1D gaussian of the given sigma.
// The radius is round(3*sigma), which gives the same aperture OpenCV
// picks for 8-bit images when the kernel size is left at zero.
func GaussianKernel1D(sigma float64) []float64 {
	radius := int(math.Round(3 * sigma))
	if radius < 1 {
		radius = 1
	}

	weights := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		weights[i+radius] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// ConvolveGrayFloat applies a convolution kernel to a grayscale float image.
// Borders reflect about the edge pixel without repeating it
// (dcb|abcd|cba), as OpenCV's default border does. Returns float values without clamping.
func ConvolveGrayFloat(img [][]float64, kernel *Kernel) [][]float64 {
	height := len(img)
	if height == 0 {
		return nil
	}
	width := len(img[0])

	dst := make([][]float64, height)
	for y := 0; y < height; y++ {
		dst[y] = make([]float64, width)
	}

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64

			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sx := reflect101(x+kx-halfKW, width)
					sy := reflect101(y+ky-halfKH, height)

					sum += img[sy][sx] * kernel.Values[ky][kx]
				}
			}

			dst[y][x] = sum
		}
	}

	return dst
}

// ConvolveSeparable applies the 1D kernel along rows and then along
// columns, with the same reflected borders as ConvolveGrayFloat.
func ConvolveSeparable(img [][]float64, weights []float64) [][]float64 {
	height := len(img)
	if height == 0 {
		return nil
	}
	width := len(img[0])
	radius := len(weights) / 2

	rows := make([][]float64, height)
	for y := 0; y < height; y++ {
		rows[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range weights {
				sum += img[y][reflect101(x+k-radius, width)] * w
			}
			rows[y][x] = sum
		}
	}

	dst := make([][]float64, height)
	for y := 0; y < height; y++ {
		dst[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range weights {
				sum += rows[reflect101(y+k-radius, height)][x] * w
			}
			dst[y][x] = sum
		}
	}

	return dst
}

// GaussianBlurFloat blurs a float grid with a gaussian of the given sigma.
func GaussianBlurFloat(img [][]float64, sigma float64) [][]float64 {
	return ConvolveSeparable(img, GaussianKernel1D(sigma))
}

// DifferenceOfGaussians band-passes a grayscale image: the image blurred
// with lightSigma minus the image blurred with heavySigma. The result is
// signed and unscaled; pass it through NormalizeMinMax to get an 8-bit
// contrast buffer.
func DifferenceOfGaussians(gray *GrayImage, lightSigma, heavySigma float64) [][]float64 {
	src := gray.Floats()
	light := GaussianBlurFloat(src, lightSigma)
	heavy := GaussianBlurFloat(src, heavySigma)

	for y := range light {
		for x := range light[y] {
			light[y][x] -= heavy[y][x]
		}
	}
	return light
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// about the first and last elements.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
