package renderer

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// intensity bounds each channel so that 256*v floors to at most 255
var intensity = core.NewInterval(0.000, 0.999)

// LinearToGamma applies gamma 2 to a linear channel; non-positive input maps to 0
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// QuantizeChannel converts a linear channel to an 8-bit gamma-encoded value
func QuantizeChannel(linear float64) uint8 {
	return uint8(256 * intensity.Clamp(LinearToGamma(linear)))
}

// QuantizeColor converts an averaged linear color to 8-bit RGB
func QuantizeColor(c core.Color) [3]uint8 {
	return [3]uint8{QuantizeChannel(c.X), QuantizeChannel(c.Y), QuantizeChannel(c.Z)}
}

// Background is a vertical sky gradient blended by ray direction
type Background struct {
	Top    core.Color // Color straight up (+Y)
	Bottom core.Color // Color straight down (-Y)
}

// DefaultBackground returns the white-to-sky-blue gradient
func DefaultBackground() Background {
	return Background{
		Top:    core.NewColor(0.5, 0.7, 1.0),
		Bottom: core.NewColor(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color seen along ray r
func (b Background) Color(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()
	// Map y from [-1,1] to [0,1]
	a := 0.5 * (unitDirection.Y + 1.0)
	return b.Bottom.Lerp(b.Top, a)
}
