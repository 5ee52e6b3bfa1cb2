package renderer

import (
	"image"
	"image/color"
)

// Image is a packed 8-bit RGB raster, row-major with the top row first
type Image struct {
	Width  int
	Height int
	Pix    []byte // len = Width*Height*3
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

func (img *Image) offset(x, y int) int {
	return (y*img.Width + x) * 3
}

// SetPixel stores an RGB triple at (x, y)
func (img *Image) SetPixel(x, y int, rgb [3]uint8) {
	o := img.offset(x, y)
	img.Pix[o] = rgb[0]
	img.Pix[o+1] = rgb[1]
	img.Pix[o+2] = rgb[2]
}

// Pixel returns the RGB triple at (x, y)
func (img *Image) Pixel(x, y int) [3]uint8 {
	o := img.offset(x, y)
	return [3]uint8{img.Pix[o], img.Pix[o+1], img.Pix[o+2]}
}

// ColorModel implements image.Image
func (img *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements image.Image
func (img *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return color.RGBA{}
	}
	p := img.Pixel(x, y)
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: 255}
}

// RGBA converts to an opaque *image.RGBA, which the standard encoders handle fastest
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
		out.Pix[j] = img.Pix[i]
		out.Pix[j+1] = img.Pix[i+1]
		out.Pix[j+2] = img.Pix[i+2]
		out.Pix[j+3] = 255
	}
	return out
}
