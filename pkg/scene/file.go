package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// File is the YAML form of a scene. Spheres reference materials by name.
type File struct {
	Name        string                  `yaml:"name,omitempty"`
	Description string                  `yaml:"description,omitempty"`
	Group       string                  `yaml:"group,omitempty"`
	Camera      CameraSpec              `yaml:"camera"`
	Sampling    SamplingSpec            `yaml:"sampling"`
	Background  *BackgroundSpec         `yaml:"background,omitempty"`
	Materials   map[string]MaterialSpec `yaml:"materials"`
	Spheres     []SphereSpec            `yaml:"spheres"`
}

// Triple is an [x, y, z] vector or [r, g, b] color
type Triple []float64

// Ratio is an aspect ratio written either as a number or as "w:h"
type Ratio float64

// CameraSpec mirrors renderer.CameraConfig. A zero focus_dist means the
// distance from lookfrom to lookat.
type CameraSpec struct {
	AspectRatio  Ratio   `yaml:"aspect_ratio"`
	ImageWidth   int     `yaml:"image_width"`
	VFov         float64 `yaml:"vfov"`
	LookFrom     Triple  `yaml:"lookfrom,flow"`
	LookAt       Triple  `yaml:"lookat,flow"`
	VUp          Triple  `yaml:"vup,flow"`
	DefocusAngle float64 `yaml:"defocus_angle"`
	FocusDist    float64 `yaml:"focus_dist,omitempty"`
}

// SamplingSpec mirrors renderer.SamplingConfig
type SamplingSpec struct {
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// BackgroundSpec is the sky gradient, white at the bottom by default
type BackgroundSpec struct {
	Top    Triple `yaml:"top,flow"`
	Bottom Triple `yaml:"bottom,flow"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type            string  `yaml:"type"` // lambertian, metal or dielectric
	Albedo          Triple  `yaml:"albedo,omitempty,flow"`
	Fuzz            float64 `yaml:"fuzz,omitempty"`
	RefractionIndex float64 `yaml:"refraction_index,omitempty"`
}

// SphereSpec places a sphere. A negative radius turns the surface inside out.
type SphereSpec struct {
	Center   Triple  `yaml:"center,flow"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// UnmarshalYAML accepts 1.5, "16:9" and "16/9"
func (r *Ratio) UnmarshalYAML(value *yaml.Node) error {
	var f float64
	if err := value.Decode(&f); err == nil {
		*r = Ratio(f)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: aspect ratio must be a number or \"w:h\"", value.Line)
	}
	sep := strings.IndexAny(s, ":/")
	if sep < 0 {
		return fmt.Errorf("line %d: aspect ratio %q must be a number or \"w:h\"", value.Line, s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(s[:sep]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(s[sep+1:]), 64)
	if errW != nil || errH != nil || h == 0 {
		return fmt.Errorf("line %d: invalid aspect ratio %q", value.Line, s)
	}
	*r = Ratio(w / h)
	return nil
}

func (t Triple) vec(field string) (core.Vec3, error) {
	if len(t) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidScene, field, len(t))
	}
	return core.NewVec3(t[0], t[1], t[2]), nil
}

func tripleOf(v core.Vec3) Triple {
	return Triple{v.X, v.Y, v.Z}
}

// DefaultFile returns a File holding the default camera and sampling settings.
// Parse decodes on top of it, so scene files only need to state what differs.
func DefaultFile() File {
	camera := renderer.DefaultCameraConfig()
	sampling := renderer.DefaultSamplingConfig()
	return File{
		Camera: CameraSpec{
			AspectRatio:  Ratio(camera.AspectRatio),
			ImageWidth:   camera.ImageWidth,
			VFov:         camera.VFov,
			LookFrom:     tripleOf(camera.LookFrom),
			LookAt:       tripleOf(camera.LookAt),
			VUp:          tripleOf(camera.VUp),
			DefocusAngle: camera.DefocusAngle,
		},
		Sampling: SamplingSpec{
			SamplesPerPixel: sampling.SamplesPerPixel,
			MaxDepth:        sampling.MaxDepth,
		},
	}
}

func decodeFile(data []byte) (*File, error) {
	f := DefaultFile()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return &f, nil
}

func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	f, err := decodeFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML scene and builds it
func Parse(data []byte) (*Scene, error) {
	f, err := decodeFile(data)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Load reads and builds a YAML scene file. Unnamed scenes take the file name.
func Load(path string) (*Scene, error) {
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	s, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Save writes f as YAML
func Save(path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes f as YAML with two-space indentation
func Marshal(f *File) ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	return []byte(sb.String()), nil
}

// Build resolves material references and validates the result
func (f *File) Build() (*Scene, error) {
	cam, err := f.Camera.config()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	background := renderer.DefaultBackground()
	if f.Background != nil {
		if f.Background.Top != nil {
			if background.Top, err = f.Background.Top.vec("background top"); err != nil {
				return nil, err
			}
		}
		if f.Background.Bottom != nil {
			if background.Bottom, err = f.Background.Bottom.vec("background bottom"); err != nil {
				return nil, err
			}
		}
	}

	materials := make(map[string]material.Material, len(f.Materials))
	for name, spec := range f.Materials {
		m, err := spec.material()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	world := geometry.NewHittableList()
	for i, spec := range f.Spheres {
		center, err := spec.Center.vec("center")
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if spec.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: %w: radius must be non-zero", i, ErrInvalidScene)
		}
		m, ok := materials[spec.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w: unknown material %q", i, ErrInvalidScene, spec.Material)
		}
		world.Add(geometry.NewSphere(center, spec.Radius, m))
	}

	s := &Scene{
		Name:       f.Name,
		Camera:     cam,
		Sampling:   renderer.SamplingConfig{SamplesPerPixel: f.Sampling.SamplesPerPixel, MaxDepth: f.Sampling.MaxDepth},
		Background: background,
		World:      world,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c CameraSpec) config() (renderer.CameraConfig, error) {
	lookFrom, err := c.LookFrom.vec("lookfrom")
	if err != nil {
		return renderer.CameraConfig{}, err
	}
	lookAt, err := c.LookAt.vec("lookat")
	if err != nil {
		return renderer.CameraConfig{}, err
	}
	vup, err := c.VUp.vec("vup")
	if err != nil {
		return renderer.CameraConfig{}, err
	}

	focusDist := c.FocusDist
	if focusDist == 0 {
		focusDist = lookAt.Subtract(lookFrom).Length()
	}

	cfg := renderer.CameraConfig{
		AspectRatio:  float64(c.AspectRatio),
		ImageWidth:   c.ImageWidth,
		VFov:         c.VFov,
		LookFrom:     lookFrom,
		LookAt:       lookAt,
		VUp:          vup,
		DefocusAngle: c.DefocusAngle,
		FocusDist:    focusDist,
	}
	return cfg, cfg.Validate()
}

func (s MaterialSpec) material() (material.Material, error) {
	kind, err := material.ParseKind(s.Type)
	if err != nil {
		return material.Material{}, fmt.Errorf("%w: %v", material.ErrInvalidMaterial, err)
	}

	m := material.Material{Kind: kind, Fuzz: s.Fuzz, RefractionIndex: s.RefractionIndex}
	if kind != material.KindDielectric {
		if m.Albedo, err = s.Albedo.vec("albedo"); err != nil {
			return material.Material{}, err
		}
	}
	return m, m.Validate()
}

// FromScene converts a scene into its YAML form. Identical materials share
// one entry, named after their kind.
func FromScene(s *Scene) *File {
	f := &File{
		Name: s.Name,
		Camera: CameraSpec{
			AspectRatio:  Ratio(s.Camera.AspectRatio),
			ImageWidth:   s.Camera.ImageWidth,
			VFov:         s.Camera.VFov,
			LookFrom:     tripleOf(s.Camera.LookFrom),
			LookAt:       tripleOf(s.Camera.LookAt),
			VUp:          tripleOf(s.Camera.VUp),
			DefocusAngle: s.Camera.DefocusAngle,
			FocusDist:    s.Camera.FocusDist,
		},
		Sampling: SamplingSpec{
			SamplesPerPixel: s.Sampling.SamplesPerPixel,
			MaxDepth:        s.Sampling.MaxDepth,
		},
		Background: &BackgroundSpec{
			Top:    tripleOf(s.Background.Top),
			Bottom: tripleOf(s.Background.Bottom),
		},
		Materials: make(map[string]MaterialSpec),
	}

	names := make(map[material.Material]string)
	counts := make(map[material.Kind]int)
	for _, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			continue
		}

		name, seen := names[sphere.Material]
		if !seen {
			counts[sphere.Material.Kind]++
			name = fmt.Sprintf("%s-%d", sphere.Material.Kind, counts[sphere.Material.Kind])
			names[sphere.Material] = name
			f.Materials[name] = specOf(sphere.Material)
		}

		f.Spheres = append(f.Spheres, SphereSpec{
			Center:   tripleOf(sphere.Center),
			Radius:   sphere.Radius,
			Material: name,
		})
	}
	return f
}

func specOf(m material.Material) MaterialSpec {
	spec := MaterialSpec{Type: m.Kind.String()}
	switch m.Kind {
	case material.KindLambertian:
		spec.Albedo = tripleOf(m.Albedo)
	case material.KindMetal:
		spec.Albedo = tripleOf(m.Albedo)
		spec.Fuzz = m.Fuzz
	case material.KindDielectric:
		spec.RefractionIndex = m.RefractionIndex
	}
	return spec
}
