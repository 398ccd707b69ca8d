package img2ascii

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wbrown/img2ascii/imageutil"
)

// orientationShades are the gray levels used for each orientation class
// when the orientation map is saved.
var orientationShades = [...]uint8{
	Horizontal:      64,
	DiagonalRising:  128,
	Vertical:        192,
	DiagonalFalling: 255,
}

// Save writes the intermediate buffers of the analysis to dir as PNGs,
// for inspecting how a render was reached:
//
//	intensity.png   grayscale input
//	enhanced.png    band-passed, normalized intensity
//	magnitude.png   normalized gradient magnitude
//	edges.png       edge mask (white = edge)
//	orientation.png orientation class of edge pixels, one gray per class
func (a *Analysis) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}

	edges := imageutil.NewGrayImage(a.Edges.Width, a.Edges.Height)
	orient := imageutil.NewGrayImage(a.Edges.Width, a.Edges.Height)
	for y := 0; y < a.Edges.Height; y++ {
		for x := 0; x < a.Edges.Width; x++ {
			if a.Edges.At(x, y) {
				edges.SetGrayValue(x, y, 255)
				orient.SetGrayValue(x, y, orientationShades[a.Orientation.At(x, y)])
			}
		}
	}

	outputs := []struct {
		name string
		img  *imageutil.GrayImage
	}{
		{"intensity.png", a.Intensity},
		{"enhanced.png", a.Enhanced},
		{"magnitude.png", a.Magnitude},
		{"edges.png", edges},
		{"orientation.png", orient},
	}
	for _, o := range outputs {
		if err := imageutil.SaveGrayImage(o.img, filepath.Join(dir, o.name)); err != nil {
			return fmt.Errorf("failed to save %s: %w", o.name, err)
		}
	}
	return nil
}
