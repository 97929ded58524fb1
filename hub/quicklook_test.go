package hub

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
)

// testQuicklookJPEG renders a bright square surrounded by a black noise
// border, the shape saveQuicklook has to crop away
func testQuicklookJPEG(t *testing.T, width, height, border int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= border && x < width-border && y >= border && y < height-border {
				img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
			} else {
				img.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	var buffer bytes.Buffer
	assert.Nil(t, jpeg.Encode(&buffer, img, &jpeg.Options{Quality: 100}))
	return buffer.Bytes()
}

func TestCropNoiseBorder(t *testing.T) {
	img, _, err := image.Decode(bytes.NewReader(testQuicklookJPEG(t, 40, 30, 5)))
	assert.Nil(t, err)

	cropped, err := cropNoiseBorder(img, quicklookNoiseThreshold)
	assert.Nil(t, err)
	size := cropped.Bounds().Size()
	// JPEG compression smears the border, allow one pixel of slack
	assert.InDelta(t, 30, size.X, 2)
	assert.InDelta(t, 20, size.Y, 2)
}

func TestCropNoiseBorder_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	_, err := cropNoiseBorder(img, quicklookNoiseThreshold)
	assert.NotNil(t, err, "an all-dark image has nothing to crop to")
}

func TestWriteWorldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.jpgw")
	bbox := geojson.BoundingBox{8, 48, 10, 49}

	assert.Nil(t, writeWorldFile(path, bbox, 200, 100, &Context{}))

	content, err := os.ReadFile(path)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "0.01", lines[0], "x pixel size")
	assert.Equal(t, "0", lines[1])
	assert.Equal(t, "0", lines[2])
	assert.Equal(t, "-0.01", lines[3], "y pixel size, negative for north-up")
	assert.Equal(t, "8", lines[4], "upper left x")
	assert.Equal(t, "49", lines[5], "upper left y")
}

func TestWriteWorldFile_IncompleteBbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.jpgw")
	assert.NotNil(t, writeWorldFile(path, geojson.BoundingBox{8, 48}, 200, 100, &Context{}))
}
