package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ErrInvalidScene is wrapped by scene construction and scene file errors
var ErrInvalidScene = errors.New("invalid scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name       string
	Camera     renderer.CameraConfig
	Sampling   renderer.SamplingConfig
	Background renderer.Background
	World      *geometry.HittableList // Objects in the scene
}

// Overrides replaces individual render settings; zero fields keep the scene's value
type Overrides struct {
	Width           int
	SamplesPerPixel int
	MaxDepth        int
}

// Apply copies every non-zero override into the scene
func (s *Scene) Apply(o Overrides) {
	if o.Width > 0 {
		s.Camera.ImageWidth = o.Width
	}
	if o.SamplesPerPixel > 0 {
		s.Sampling.SamplesPerPixel = o.SamplesPerPixel
	}
	if o.MaxDepth > 0 {
		s.Sampling.MaxDepth = o.MaxDepth
	}
}

// Validate checks the camera, sampling settings and every sphere material
func (s *Scene) Validate() error {
	if s.World == nil {
		return fmt.Errorf("%w: scene %q has no world", ErrInvalidScene, s.Name)
	}
	if err := s.Camera.Validate(); err != nil {
		return fmt.Errorf("scene %q camera: %w", s.Name, err)
	}
	if err := s.Sampling.Validate(); err != nil {
		return fmt.Errorf("scene %q sampling: %w", s.Name, err)
	}
	for i, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			continue
		}
		if err := sphere.Material.Validate(); err != nil {
			return fmt.Errorf("scene %q sphere %d: %w", s.Name, i, err)
		}
	}
	return nil
}

// NewRaytracer builds the camera and a raytracer for the scene. The scene's
// background is applied before opts, so callers may still replace it.
func (s *Scene) NewRaytracer(opts ...renderer.Option) (*renderer.Raytracer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	camera, err := renderer.NewCamera(s.Camera)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	opts = append([]renderer.Option{renderer.WithBackground(s.Background)}, opts...)
	return renderer.NewRaytracer(s.World, camera, s.Sampling, opts...)
}
