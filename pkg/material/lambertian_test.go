package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestLambertian_ScatterAboutNormal(t *testing.T) {
	albedo := core.NewColor(0.5, 0.7, 0.9)
	lambertian := NewLambertian(albedo)
	sampler := core.NewSeededSampler(42)

	normal := core.NewVec3(0, 0, 1)
	hit := &HitRecord{Point: core.NewVec3(1, 2, 3), Normal: normal, FrontFace: true, Material: &lambertian}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	for i := 0; i < 500; i++ {
		scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
		require.True(t, didScatter, "Lambertian should always scatter")

		assert.Equal(t, albedo, scatter.Attenuation)
		assert.Equal(t, hit.Point, scatter.Scattered.Origin)

		// normal + unit vector lies on a unit sphere tangent to the surface
		offset := scatter.Scattered.Direction.Subtract(normal)
		require.InDelta(t, 1.0, offset.Length(), 1e-9)
		require.GreaterOrEqual(t, scatter.Scattered.Direction.Dot(normal), -1e-9)
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewColor(1, 1, 1))
	normal := core.NewVec3(0, 1, 0)
	hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}

	// Sample (0.5, 0.25, 0.5) maps to (0, -0.5, 0): the unit vector (0, -1, 0)
	// cancels the normal exactly.
	sampler := core.NewSequenceSampler(0.5, 0.25, 0.5)

	scatter, didScatter := lambertian.Scatter(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), hit, sampler)
	require.True(t, didScatter)
	assert.Equal(t, normal, scatter.Scattered.Direction)
}
