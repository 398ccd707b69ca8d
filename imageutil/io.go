package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUndecodable reports that a file exists but holds no image any
// registered decoder understands.
var ErrUndecodable = errors.New("undecodable image")

// LoadImage loads an image from the specified path and applies its EXIF
// orientation. Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func LoadImage(path string) (*RGBAImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return DecodeImage(bytes.NewReader(data))
}

// DecodeImage decodes an image from r, applying EXIF orientation when
// the stream carries one.
func DecodeImage(r io.ReadSeeker) (*RGBAImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err == nil {
		img = orient(img, exifOrientation(r))
	}
	return RGBAImageFromImage(img), nil
}

// LoadImageResized loads path and fits it to width x height; a zero
// dimension keeps the aspect ratio.
func LoadImageResized(path string, width, height int, interp Interpolation) (*RGBAImage, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return Resize(img, width, height, interp), nil
}

// exifOrientation returns the EXIF orientation tag, or 1 when absent.
func exifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err == nil && x != nil {
		tag, err := x.Get(exif.Orientation)
		if err == nil && tag != nil && tag.Count != 0 {
			if i, err := tag.Int(0); err == nil {
				return i
			}
		}
	}
	return 1
}

// orient undoes an EXIF orientation so the image is upright.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension (png, jpg/jpeg, gif).
func SaveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := EncodeImage(f, img, filepath.Ext(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeImage writes img to w in the format named by ext.
func EncodeImage(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, img, nil)
	default:
		// Default to PNG
		return png.Encode(w, img)
	}
}

// SaveGrayImage saves a grayscale image to the specified path.
func SaveGrayImage(img *GrayImage, path string) error {
	return SaveImage(img.Gray, path)
}
