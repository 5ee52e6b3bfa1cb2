package renderer

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage_PixelsRowMajor(t *testing.T) {
	img := NewImage(3, 2)
	assert.Len(t, img.Pix, 18)

	img.SetPixel(2, 1, [3]uint8{10, 20, 30})
	assert.Equal(t, []byte{10, 20, 30}, img.Pix[15:18])
	assert.Equal(t, [3]uint8{10, 20, 30}, img.Pixel(2, 1))
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.At(2, 1))
	assert.Equal(t, color.RGBA{}, img.At(3, 0))
}

func TestImage_RGBA(t *testing.T) {
	img := NewImage(2, 2)
	img.SetPixel(0, 0, [3]uint8{255, 0, 0})
	img.SetPixel(1, 1, [3]uint8{1, 2, 3})

	rgba := img.RGBA()
	assert.Equal(t, img.Bounds(), rgba.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, rgba.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{A: 255}, rgba.RGBAAt(1, 0))
}
