package material

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Kind identifies one of the supported scattering models
type Kind uint8

const (
	KindLambertian Kind = iota + 1
	KindMetal
	KindDielectric
)

var kindNames = map[Kind]string{
	KindLambertian: "lambertian",
	KindMetal:      "metal",
	KindDielectric: "dielectric",
}

// String returns the lowercase name used in scene files
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves a scene-file material name
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown material type %q", name)
}

// ErrInvalidMaterial is wrapped by every Validate failure
var ErrInvalidMaterial = errors.New("invalid material")

// Material is a closed set of surface models. Only the fields relevant to
// Kind are meaningful; values are immutable once built and safe to share.
type Material struct {
	Kind            Kind
	Albedo          core.Color // Lambertian, Metal
	Fuzz            float64    // Metal: 0 = perfect mirror, 1 = very fuzzy
	RefractionIndex float64    // Dielectric, relative to the enclosing medium
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray
	Attenuation core.Color // Color attenuation
}

// Scatter continues the light path at hit. A false return means the path was
// absorbed and contributes nothing further.
func (m *Material) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		return ScatterResult{}, false
	}
}

// Validate checks the parameters of the material's kind
func (m Material) Validate() error {
	switch m.Kind {
	case KindLambertian, KindMetal:
		if m.Albedo.X < 0 || m.Albedo.Y < 0 || m.Albedo.Z < 0 {
			return fmt.Errorf("%w: %s albedo %v has a negative channel", ErrInvalidMaterial, m.Kind, m.Albedo)
		}
		if m.Kind == KindMetal && (m.Fuzz < 0 || m.Fuzz > 1) {
			return fmt.Errorf("%w: metal fuzz %g outside [0, 1]", ErrInvalidMaterial, m.Fuzz)
		}
	case KindDielectric:
		if m.RefractionIndex <= 0 {
			return fmt.Errorf("%w: dielectric refraction index %g must be positive", ErrInvalidMaterial, m.RefractionIndex)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMaterial, m.Kind)
	}
	return nil
}

// String describes the material for logs and inspection output
func (m Material) String() string {
	switch m.Kind {
	case KindLambertian:
		return fmt.Sprintf("lambertian(albedo=%v)", m.Albedo)
	case KindMetal:
		return fmt.Sprintf("metal(albedo=%v, fuzz=%g)", m.Albedo, m.Fuzz)
	case KindDielectric:
		return fmt.Sprintf("dielectric(ior=%g)", m.RefractionIndex)
	default:
		return m.Kind.String()
	}
}
