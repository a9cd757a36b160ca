package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewPlainImage creates a uniformly colored image.
func NewPlainImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// SavePNG writes an image to path, failing the test on error.
func SavePNG(t *testing.T, img image.Image, path string) {
	t.Helper()
	file, err := os.Create(path) //nolint:gosec // test-controlled path
	require.NoError(t, err, "create %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()
	require.NoError(t, png.Encode(file, img), "encode %s", path)
}

// LoadImage decodes an image from path, failing the test on error.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()
	file, err := os.Open(path) //nolint:gosec // test-controlled path
	require.NoError(t, err, "open %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "decode %s", path)
	return img
}
