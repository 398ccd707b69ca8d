package imageutil

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationLanczos uses imaging's Lanczos filter. It is the
	// default for fitting decoded images to the render resolution.
	InterpolationLanczos Interpolation = iota

	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	// This is the closest equivalent to OpenCV's INTER_AREA.
	InterpolationArea

	// InterpolationLinear uses bilinear interpolation.
	// Equivalent to OpenCV's INTER_LINEAR.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

var interpolationNames = [...]string{
	InterpolationLanczos: "lanczos",
	InterpolationArea:    "area",
	InterpolationLinear:  "linear",
	InterpolationNearest: "nearest",
}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return "unknown"
	}
	return interpolationNames[i]
}

// ParseInterpolation maps a config name to an Interpolation.
func ParseInterpolation(name string) (Interpolation, bool) {
	switch name {
	case "", "lanczos":
		return InterpolationLanczos, true
	case "area", "catmullrom":
		return InterpolationArea, true
	case "linear", "bilinear":
		return InterpolationLinear, true
	case "nearest":
		return InterpolationNearest, true
	}
	return InterpolationLanczos, false
}

// Resize resizes img to width x height. When exactly one of width and
// height is zero it is derived from the aspect ratio; when both are zero
// the image is only converted.
func Resize(img image.Image, width, height int, interp Interpolation) *RGBAImage {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return NewRGBAImage(0, 0)
	}

	switch {
	case width == 0 && height == 0:
		return RGBAImageFromImage(img)
	case width == 0:
		width = int(float64(height) * float64(srcW) / float64(srcH))
	case height == 0:
		height = int(float64(width) * float64(srcH) / float64(srcW))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	if interp == InterpolationLanczos {
		nrgba := imaging.Resize(img, width, height, imaging.Lanczos)
		return RGBAImageFromImage(nrgba)
	}

	var scaler draw.Scaler
	switch interp {
	case InterpolationArea:
		scaler = draw.CatmullRom
	case InterpolationLinear:
		scaler = draw.BiLinear
	case InterpolationNearest:
		scaler = draw.NearestNeighbor
	default:
		scaler = draw.CatmullRom
	}

	dst := NewRGBAImage(width, height)
	scaler.Scale(dst.RGBA, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
