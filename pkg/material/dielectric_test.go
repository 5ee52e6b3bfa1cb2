package material

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestDielectricBasicBehavior(t *testing.T) {
	glass := NewDielectric(1.5)

	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0)) // 45-degree angle
	hit := &HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: true,
		Material:  &glass,
	}

	hasReflection := false
	hasRefraction := false
	for seed := int64(0); seed < 1000 && (!hasReflection || !hasRefraction); seed++ {
		result, scattered := glass.Scatter(ray, hit, core.NewSeededSampler(seed))
		require.True(t, scattered, "Dielectric should always scatter")
		require.Equal(t, core.NewColor(1, 1, 1), result.Attenuation)

		if result.Scattered.Direction.Y > 0 {
			hasReflection = true
		} else {
			hasRefraction = true
			// Refraction bends toward the normal when entering glass
			dir := result.Scattered.Direction.Normalize()
			assert.Less(t, dir.X, math.Sqrt(0.5))
		}
	}

	assert.True(t, hasRefraction, "expected refraction in at least some cases")
	assert.True(t, hasReflection, "expected Schlick reflection in at least some cases")
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Shallow ray leaving the glass
	rayDirection := core.NewVec3(1, -0.1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, 0, 0), rayDirection)
	hit := &HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: false,
	}

	cosTheta := -rayDirection.Dot(hit.Normal)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	require.Greater(t, 1.5*sinTheta, 1.0, "test setup should cause total internal reflection")

	for i := 0; i < 10; i++ {
		// Even a draw that would never pick Schlick reflection must reflect
		result, scattered := glass.Scatter(ray, hit, core.NewSequenceSampler(0.999999))
		require.True(t, scattered)
		assert.Greater(t, result.Scattered.Direction.Y, 0.0)
	}
}

// A draw of 0.999999 never falls below the Schlick term, so every ray refracts
func TestDielectric_IndexOneTransmitsUnbentWithPinnedDraw(t *testing.T) {
	air := NewDielectric(1.0)

	directions := []core.Vec3{
		core.NewVec3(0, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(0.3, -0.2, 0.9),
		core.NewVec3(-2, -1, 0.5),
	}

	for _, frontFace := range []bool{true, false} {
		for _, d := range directions {
			hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), FrontFace: frontFace}
			result, scattered := air.Scatter(core.NewRay(core.NewVec3(0, 1, 0), d), hit, core.NewSequenceSampler(0.999999))
			require.True(t, scattered)

			expected := d.Normalize()
			assert.InDelta(t, 0, result.Scattered.Direction.Subtract(expected).Length(), 1e-12,
				"direction %v bent to %v", d, result.Scattered.Direction)
		}
	}
}

func TestDielectric_IndexOneGrazingCanReflect(t *testing.T) {
	air := NewDielectric(1.0)
	hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), FrontFace: true}
	ray := core.NewRay(core.NewVec3(-10, 0.1, 0), core.NewVec3(10, -0.1, 0))

	// Schlick's term stays positive at oblique angles even with matched indices
	cosTheta := ray.Direction.Normalize().Dot(hit.Normal) * -1
	require.Greater(t, Reflectance(cosTheta, 1.0), 0.9)

	result, scattered := air.Scatter(ray, hit, core.NewSequenceSampler(0))
	require.True(t, scattered)
	assert.Greater(t, result.Scattered.Direction.Y, 0.0)
}

func TestRefract_Snell(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	uv := core.NewVec3(1, -1, 0).Normalize()
	ratio := 1.0 / 1.5

	refracted := Refract(uv, n, ratio)

	sinIn := math.Abs(uv.X)
	sinOut := math.Abs(refracted.Normalize().X)
	assert.InDelta(t, sinIn*ratio, sinOut, 1e-12)
	assert.InDelta(t, 1.0, refracted.Length(), 1e-12)
}

func TestReflectance(t *testing.T) {
	// Normal incidence on glass: ((1-1.5)/(1+1.5))^2 = 0.04
	assert.InDelta(t, 0.04, Reflectance(1.0, 1.5), 1e-12)
	// Grazing incidence reflects everything
	assert.InDelta(t, 1.0, Reflectance(0.0, 1.5), 1e-12)
	// Matched media do not reflect head-on
	assert.Equal(t, 0.0, Reflectance(1.0, 1.0))
}
