package material

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestNewMetal_FuzzClamp(t *testing.T) {
	tests := []struct {
		name         string
		inputFuzz    float64
		expectedFuzz float64
	}{
		{"Valid fuzz 0.0", 0.0, 0.0},
		{"Valid fuzz 0.5", 0.5, 0.5},
		{"Valid fuzz 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
	}

	albedo := core.NewColor(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzz)
			assert.Equal(t, tt.expectedFuzz, metal.Fuzz)
			assert.Equal(t, KindMetal, metal.Kind)
		})
	}
}

func TestReflect(t *testing.T) {
	n := core.NewVec3(0, 1, 0)

	// A vector aligned with the normal comes straight back
	assert.Equal(t, n.Negate(), Reflect(n, n))
	assert.Equal(t, core.NewVec3(0, 1, 0), Reflect(core.NewVec3(0, -1, 0), n))

	// Angle of incidence equals angle of reflection
	v := core.NewVec3(1, -2, 0.5)
	r := Reflect(v, n)
	assert.InDelta(t, -v.Dot(n), r.Dot(n), 1e-12)
	assert.InDelta(t, v.Length(), r.Length(), 1e-12)
	assert.Equal(t, core.NewVec3(1, 2, 0.5), r)

	// Reflecting twice is the identity
	assert.Equal(t, v, Reflect(Reflect(v, n), n))
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewColor(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewSeededSampler(42)

	// Ray hitting surface at 45 degrees
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
	require.True(t, didScatter)

	expected := core.NewVec3(0, -1, 1).Normalize()
	assert.InDelta(t, 0, scatter.Scattered.Direction.Subtract(expected).Length(), 1e-12)
	assert.Equal(t, albedo, scatter.Attenuation)
	assert.Equal(t, hit.Point, scatter.Scattered.Origin)
}

func TestMetal_FuzzyReflection(t *testing.T) {
	metal := NewMetal(core.NewColor(0.8, 0.8, 0.8), 0.5)
	sampler := core.NewSeededSampler(42)

	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}
	mirror := core.NewVec3(0, 0, 1)

	sawPerturbation := false
	for i := 0; i < 100; i++ {
		scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
		require.True(t, didScatter)

		// The perturbation is exactly fuzz long
		deviation := scatter.Scattered.Direction.Subtract(mirror).Length()
		require.InDelta(t, 0.5, deviation, 1e-9)
		if deviation > 0 {
			sawPerturbation = true
		}
	}
	assert.True(t, sawPerturbation)
}

func TestMetal_FuzzBelowSurfaceStillScatters(t *testing.T) {
	metal := NewMetal(core.NewColor(1, 1, 1), 1.0)
	normal := core.NewVec3(0, 1, 0)
	hit := &HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}

	// Grazing ray; sample (0.5, 0.25, 0.5) gives unit vector (0, -1, 0),
	// pushing the reflection below the surface.
	rayIn := core.NewRay(core.NewVec3(-1, 0.01, 0), core.NewVec3(1, -0.01, 0))
	sampler := core.NewSequenceSampler(0.5, 0.25, 0.5)

	scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
	require.True(t, didScatter, "metal never absorbs")
	assert.Less(t, scatter.Scattered.Direction.Dot(normal), 0.0)
	assert.False(t, math.IsNaN(scatter.Scattered.Direction.X))
}
