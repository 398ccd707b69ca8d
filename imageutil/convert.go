package imageutil

// ToGrayscale converts an RGBA image to its intensity buffer using the
// BT.601 luma weights: Y = 0.299*R + 0.587*G + 0.114*B, rounded.
// This is the conversion OpenCV applies for COLOR_BGR2GRAY.
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			lum := (299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000
			if lum > 255 {
				lum = 255
			}
			gray.SetGrayValue(x, y, uint8(lum))
		}
	}

	return gray
}
