package imageutil

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRGBAImage(t *testing.T) {
	img := NewRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestRGBAImageGetSetRGB(t *testing.T) {
	img := NewRGBAImage(10, 10)
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	got := img.GetRGB(5, 5)
	if got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
}

func TestRGBAImageFromImageOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.Set(10, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	img := RGBAImageFromImage(src)
	if img.Width() != 4 || img.Height() != 3 {
		t.Fatalf("Expected 4x3, got %dx%d", img.Width(), img.Height())
	}
	if got := img.GetRGB(0, 0); got != (RGB{R: 1, G: 2, B: 3}) {
		t.Errorf("Expected origin pixel {1 2 3}, got %v", got)
	}
}

func TestGrayImageClone(t *testing.T) {
	img := NewGrayImage(10, 10)
	img.SetGrayValue(5, 5, 128)

	clone := img.Clone()
	clone.SetGrayValue(5, 5, 0)
	if img.GetGray(5, 5) != 128 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestToGrayscale(t *testing.T) {
	img := NewRGBAImage(1, 1)

	tests := []struct {
		name     string
		in       RGB
		min, max uint8
	}{
		{"white", RGB{R: 255, G: 255, B: 255}, 255, 255},
		{"black", RGB{}, 0, 0},
		{"red", RGB{R: 255}, 75, 77},   // 0.299 * 255 = 76.245
		{"green", RGB{G: 255}, 149, 150}, // 0.587 * 255 = 149.685
	}
	for _, tt := range tests {
		img.SetRGB(0, 0, tt.in)
		v := ToGrayscale(img).GetGray(0, 0)
		if v < tt.min || v > tt.max {
			t.Errorf("%s: expected %d..%d, got %d", tt.name, tt.min, tt.max, v)
		}
	}
}

func TestResize(t *testing.T) {
	img := CreateGradientImage(100, 50)

	for _, interp := range []Interpolation{
		InterpolationLanczos, InterpolationArea,
		InterpolationLinear, InterpolationNearest,
	} {
		resized := Resize(img, 40, 30, interp)
		if resized.Width() != 40 || resized.Height() != 30 {
			t.Errorf("interp %d: expected 40x30, got %dx%d",
				interp, resized.Width(), resized.Height())
		}
	}

	// Zero height keeps the aspect ratio
	resized := Resize(img, 200, 0, InterpolationLinear)
	if resized.Width() != 200 || resized.Height() != 100 {
		t.Errorf("Expected 200x100, got %dx%d", resized.Width(), resized.Height())
	}

	// Both zero only converts
	same := Resize(img, 0, 0, InterpolationLanczos)
	if same.Width() != 100 || same.Height() != 50 {
		t.Errorf("Expected 100x50, got %dx%d", same.Width(), same.Height())
	}
}

func TestParseInterpolation(t *testing.T) {
	if got, ok := ParseInterpolation("nearest"); !ok || got != InterpolationNearest {
		t.Errorf("Expected nearest, got %d (ok=%v)", got, ok)
	}
	if _, ok := ParseInterpolation("sinc"); ok {
		t.Error("Unknown interpolation should not parse")
	}
	for _, interp := range []Interpolation{
		InterpolationLanczos, InterpolationArea,
		InterpolationLinear, InterpolationNearest,
	} {
		if got, ok := ParseInterpolation(interp.String()); !ok || got != interp {
			t.Errorf("%s did not parse back, got %v", interp, got)
		}
	}
}

func TestConvolveGrayFloatIdentity(t *testing.T) {
	src := ToGrayscale(CreateGradientImage(10, 10)).Floats()
	identity := NewKernel([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	result := ConvolveGrayFloat(src, identity)

	for y := range src {
		for x := range src[y] {
			if result[y][x] != src[y][x] {
				t.Fatalf("Identity kernel should preserve pixel at (%d,%d): %f != %f",
					x, y, result[y][x], src[y][x])
			}
		}
	}
}

func TestConvolveReflectBorder(t *testing.T) {
	src := [][]float64{{0, 1, 2, 3}}
	left := ConvolveGrayFloat(src, NewKernel([][]float64{{1, 0, 0}}))
	right := ConvolveGrayFloat(src, NewKernel([][]float64{{0, 0, 1}}))
	if left[0][0] != 1 {
		t.Errorf("Left of x=0 should read x=1, got %f", left[0][0])
	}
	if right[0][3] != 2 {
		t.Errorf("Right of x=3 should read x=2, got %f", right[0][3])
	}

	tests := []struct{ i, n, want int }{
		{-1, 4, 1}, {-3, 4, 3}, {4, 4, 2}, {6, 4, 0}, {-5, 2, 1}, {3, 1, 0}, {2, 4, 2},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestGaussianKernel1D(t *testing.T) {
	tests := []struct {
		sigma  float64
		length int
	}{
		{1.0, 7},
		{4.0, 25},
		{0.1, 3},
	}
	for _, tt := range tests {
		k := GaussianKernel1D(tt.sigma)
		if len(k) != tt.length {
			t.Errorf("sigma %.1f: expected %d taps, got %d", tt.sigma, tt.length, len(k))
		}
		var sum float64
		for i, w := range k {
			sum += w
			if w != k[len(k)-1-i] {
				t.Errorf("sigma %.1f: kernel not symmetric at %d", tt.sigma, i)
			}
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("sigma %.1f: weights sum to %f", tt.sigma, sum)
		}
	}
}

func TestDifferenceOfGaussiansSolid(t *testing.T) {
	gray := ToGrayscale(CreateSolidImage(40, 24, RGB{R: 90, G: 200, B: 30}))
	enhanced := NormalizeMinMax(DifferenceOfGaussians(gray, 1, 4))

	for i, v := range enhanced.Pix {
		if v != 0 {
			t.Fatalf("Constant input should normalize to zero, got %d at %d", v, i)
		}
	}
}

func TestDifferenceOfGaussiansStep(t *testing.T) {
	gray := ToGrayscale(CreateStripesImage(64, 16, 32, true))
	enhanced := NormalizeMinMax(DifferenceOfGaussians(gray, 1, 4))

	// The band-pass responds around the step and is flat far from it.
	near := int(enhanced.GetGray(31, 8)) - int(enhanced.GetGray(32, 8))
	if near == 0 {
		t.Error("Expected a response across the step at x=31/32")
	}
	if enhanced.GetGray(10, 8) != enhanced.GetGray(12, 8) {
		t.Error("Expected a flat response far from the step")
	}
}

func TestNormalizeMinMax(t *testing.T) {
	got := NormalizeMinMax([][]float64{{-1, 0, 1}})
	want := []uint8{0, 128, 255}
	for x, w := range want {
		if got.GetGray(x, 0) != w {
			t.Errorf("Expected %d at %d, got %d", w, x, got.GetGray(x, 0))
		}
	}

	flat := NormalizeMinMax([][]float64{{7, 7}, {7, 7}})
	for _, v := range flat.Pix {
		if v != 0 {
			t.Errorf("Constant grid should normalize to 0, got %d", v)
		}
	}
}

func TestSobelDirections(t *testing.T) {
	tests := []struct {
		name     string
		vertical bool
		angleAbs float64 // expected |angle| in degrees at the step
	}{
		{"vertical step", true, 0},
		{"horizontal step", false, 90},
	}
	for _, tt := range tests {
		// Dark stripe then bright stripe, so intensity rises across the step.
		img := CreateStripesImage(32, 32, 16, tt.vertical)
		gray := ToGrayscale(img)
		// Invert so the first stripe is dark.
		for i := range gray.Pix {
			gray.Pix[i] = 255 - gray.Pix[i]
		}
		g := Sobel(gray)

		var mag, angle float32
		if tt.vertical {
			mag, angle = g.At(16, 10)
		} else {
			mag, angle = g.At(10, 16)
		}
		if mag == 0 {
			t.Errorf("%s: expected nonzero magnitude at the step", tt.name)
		}
		deg := math.Abs(float64(angle) * 180 / math.Pi)
		if math.Abs(deg-tt.angleAbs) > 1e-3 {
			t.Errorf("%s: expected |angle| %.0f, got %f", tt.name, tt.angleAbs, deg)
		}

		if m, _ := g.At(5, 5); m != 0 {
			t.Errorf("%s: expected zero magnitude in a flat region, got %f", tt.name, m)
		}
	}
}

func TestGradientNormalizedMagnitude(t *testing.T) {
	g := Sobel(ToGrayscale(CreateSolidImage(8, 8, RGB{R: 10, G: 10, B: 10})))
	for _, v := range g.NormalizedMagnitude().Pix {
		if v != 0 {
			t.Fatalf("Flat field should normalize to zero, got %d", v)
		}
	}

	g = Sobel(ToGrayscale(CreateEdgeImage(32, 32)))
	norm := g.NormalizedMagnitude()
	var peak uint8
	for _, v := range norm.Pix {
		peak = max(peak, v)
	}
	if peak != 255 {
		t.Errorf("Expected the strongest gradient to normalize to 255, got %d", peak)
	}
}

func TestAreaDownsample(t *testing.T) {
	img := NewGrayImage(20, 12)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGrayValue(x, y, uint8(x+y*8)) // 0..63, mean 31.5
		}
	}
	for y := 0; y < 8; y++ {
		for x := 8; x < 16; x++ {
			img.SetGrayValue(x, y, 200)
		}
	}

	means := AreaDownsample(img, 8)
	if len(means) != 1 || len(means[0]) != 2 {
		t.Fatalf("Expected 1x2 blocks (partial tiles dropped), got %dx%d",
			len(means), len(means[0]))
	}
	if means[0][0] != 31.5 {
		t.Errorf("Expected mean 31.5, got %f", means[0][0])
	}
	if means[0][1] != 200 {
		t.Errorf("Expected mean 200, got %f", means[0][1])
	}
}

func TestBlockGrid(t *testing.T) {
	cols, rows := BlockGrid(1920, 1080, 8)
	if cols != 240 || rows != 135 {
		t.Errorf("Expected 240x135, got %dx%d", cols, rows)
	}
	cols, rows = BlockGrid(23, 7, 8)
	if cols != 0 || rows != 0 {
		t.Errorf("Expected an empty grid, got %dx%d", cols, rows)
	}
}

func TestUpsampleNearestAndCrop(t *testing.T) {
	cells := []int{1, 2, 3, 4, 5, 6} // 3 cols x 2 rows
	up := UpsampleNearest(cells, 3, 2, 2)
	if len(up) != 6*4 {
		t.Fatalf("Expected 24 values, got %d", len(up))
	}
	want := []int{
		1, 1, 2, 2, 3, 3,
		1, 1, 2, 2, 3, 3,
		4, 4, 5, 5, 6, 6,
		4, 4, 5, 5, 6, 6,
	}
	for i := range want {
		if up[i] != want[i] {
			t.Fatalf("Mismatch at %d: expected %d, got %d", i, want[i], up[i])
		}
	}

	cropped := Crop(up, 6, 3, 3)
	wantCrop := []int{1, 1, 2, 1, 1, 2, 4, 4, 5}
	for i := range wantCrop {
		if cropped[i] != wantCrop[i] {
			t.Fatalf("Crop mismatch at %d: expected %d, got %d", i, wantCrop[i], cropped[i])
		}
	}
}

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateEdgeImage(64, 64)

	pngPath := filepath.Join(tmpDir, "test.png")
	if err := SaveImage(img.RGBA, pngPath); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	loaded, err := LoadImage(pngPath)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	// PNG should be lossless
	mse := CalculateMSEGray(ToGrayscale(img), ToGrayscale(loaded))
	if mse > 0.01 {
		t.Errorf("PNG should be lossless, MSE=%f", mse)
	}

	resized, err := LoadImageResized(pngPath, 32, 0, InterpolationLanczos)
	if err != nil {
		t.Fatalf("Failed to load resized: %v", err)
	}
	if resized.Width() != 32 || resized.Height() != 32 {
		t.Errorf("Expected 32x32, got %dx%d", resized.Width(), resized.Height())
	}
}

func TestLoadImageErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadImage(filepath.Join(tmpDir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}

	junk := filepath.Join(tmpDir, "junk.png")
	if err := os.WriteFile(junk, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(junk); !errors.Is(err, ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
}

func TestOrient(t *testing.T) {
	img := NewRGBAImage(2, 1)
	img.SetRGB(0, 0, RGB{R: 255})

	rotated := RGBAImageFromImage(orient(img, 6))
	if rotated.Width() != 1 || rotated.Height() != 2 {
		t.Fatalf("Orientation 6 should swap dimensions, got %dx%d",
			rotated.Width(), rotated.Height())
	}
	if rotated.GetRGB(0, 0).R != 255 {
		t.Error("Orientation 6 should move the left pixel to the top")
	}

	if got := orient(img, 1); got != image.Image(img) {
		t.Error("Orientation 1 should be a no-op")
	}
}

func TestCalculateJaccardIndex(t *testing.T) {
	edges1 := NewGrayImage(10, 10)
	edges2 := NewGrayImage(10, 10)

	if j := CalculateJaccardIndex(edges1, edges2); j != 1.0 {
		t.Errorf("Empty images should have Jaccard=1, got %f", j)
	}

	for x := 0; x < 5; x++ {
		edges1.SetGrayValue(x, 5, 255)
	}
	for x := 5; x < 10; x++ {
		edges2.SetGrayValue(x, 5, 255)
	}
	if j := CalculateJaccardIndex(edges1, edges2); j != 0.0 {
		t.Errorf("Non-overlapping edges should have Jaccard=0, got %f", j)
	}
}

// TestSaveTestImages saves test images to testdata directory for visual inspection.
// Run with: go test -run TestSaveTestImages -v
func TestSaveTestImages(t *testing.T) {
	if os.Getenv("SAVE_TEST_IMAGES") != "1" {
		t.Skip("Set SAVE_TEST_IMAGES=1 to generate test images")
	}

	testdataDir := "../testdata"
	os.MkdirAll(testdataDir, 0755)

	SaveImage(CreateGradientImage(256, 256).RGBA, filepath.Join(testdataDir, "gradient.png"))
	SaveImage(CreateCheckerboardImage(256, 256, 32).RGBA, filepath.Join(testdataDir, "checkerboard.png"))
	SaveImage(CreateEdgeImage(256, 256).RGBA, filepath.Join(testdataDir, "edges.png"))

	t.Log("Test images saved to testdata/")
}
