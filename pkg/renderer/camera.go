package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidConfig is wrapped by every camera or sampling validation failure
var ErrInvalidConfig = errors.New("invalid render configuration")

// CameraConfig holds the extrinsic and optical camera parameters
type CameraConfig struct {
	AspectRatio  float64   // Image width over height
	ImageWidth   int       // Rendered image width in pixels
	VFov         float64   // Vertical field of view in degrees
	LookFrom     core.Vec3 // Eye position
	LookAt       core.Vec3 // Point the camera looks at
	VUp          core.Vec3 // Camera-relative up direction
	DefocusAngle float64   // Variation angle of rays through each pixel, degrees
	FocusDist    float64   // Distance from LookFrom to the plane of perfect focus
}

// DefaultCameraConfig returns a camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:  16.0 / 9.0,
		ImageWidth:   400,
		VFov:         90,
		LookFrom:     core.NewVec3(0, 0, 0),
		LookAt:       core.NewVec3(0, 0, -1),
		VUp:          core.NewVec3(0, 1, 0),
		DefocusAngle: 0,
		FocusDist:    10,
	}
}

// ImageHeight derives the image height from width and aspect ratio, at least 1
func (c CameraConfig) ImageHeight() int {
	height := int(float64(c.ImageWidth) / c.AspectRatio)
	if height < 1 {
		height = 1
	}
	return height
}

// Validate rejects parameters that would make the derived camera state undefined
func (c CameraConfig) Validate() error {
	switch {
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio must be positive, got %g", ErrInvalidConfig, c.AspectRatio)
	case c.ImageWidth < 1:
		return fmt.Errorf("%w: image width must be at least 1, got %d", ErrInvalidConfig, c.ImageWidth)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical fov must be in (0, 180), got %g", ErrInvalidConfig, c.VFov)
	case !(c.FocusDist > 0):
		return fmt.Errorf("%w: focus distance must be positive, got %g", ErrInvalidConfig, c.FocusDist)
	case !(c.DefocusAngle >= 0):
		return fmt.Errorf("%w: defocus angle must not be negative, got %g", ErrInvalidConfig, c.DefocusAngle)
	}

	view := c.LookFrom.Subtract(c.LookAt)
	if view.NearZero() {
		return fmt.Errorf("%w: lookfrom and lookat coincide at %v", ErrInvalidConfig, c.LookFrom)
	}
	if c.VUp.Cross(view).NearZero() {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidConfig, c.VUp)
	}
	return nil
}

// Camera generates primary rays. All derived state is computed once by
// NewCamera; a different configuration needs a new Camera.
type Camera struct {
	config CameraConfig

	imageHeight  int
	center       core.Vec3 // Camera center
	pixel00Loc   core.Vec3 // Location of pixel 0, 0
	pixelDeltaU  core.Vec3 // Offset to pixel to the right
	pixelDeltaV  core.Vec3 // Offset to pixel below
	u, v, w      core.Vec3 // Camera frame basis vectors
	defocusDiskU core.Vec3 // Defocus disk horizontal radius
	defocusDiskV core.Vec3 // Defocus disk vertical radius
}

// NewCamera validates the configuration and derives the viewport
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Camera{config: config}
	c.imageHeight = config.ImageHeight()
	c.center = config.LookFrom

	// Viewport dimensions
	theta := degreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDist
	viewportWidth := viewportHeight * (float64(config.ImageWidth) / float64(c.imageHeight))

	// Orthonormal camera basis
	c.w = config.LookFrom.Subtract(config.LookAt).Normalize()
	c.u = config.VUp.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(config.ImageWidth))
	c.pixelDeltaV = viewportV.Divide(float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(config.FocusDist)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	c.pixel00Loc = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDist * math.Tan(degreesToRadians(config.DefocusAngle/2))
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)

	return c, nil
}

// ImageWidth returns the rendered image width in pixels
func (c *Camera) ImageWidth() int {
	return c.config.ImageWidth
}

// ImageHeight returns the rendered image height in pixels
func (c *Camera) ImageHeight() int {
	return c.imageHeight
}

// Basis returns the camera frame: u points right, v up, w backwards
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// GetRay returns a ray from the defocus disk through a random point in the
// square around pixel (i, j), where j counts rows from the top.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()
	offset := core.NewVec2(jitter.X-0.5, jitter.Y-0.5)

	pixelSample := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// GetCenterRay returns the pinhole ray through the exact center of pixel (i, j)
func (c *Camera) GetCenterRay(i, j int) core.Ray {
	pixelCenter := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
	return core.NewRay(c.center, pixelCenter.Subtract(c.center))
}

func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
