package core

import (
	"math"
	"math/rand"
)

// Vec2 is a pair of sample coordinates
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a RandomSampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SequenceSampler replays a fixed list of values in [0, 1), wrapping around
// when exhausted. Used where exact sample values matter. Callers of the
// rejection samplers must supply sequences that eventually get accepted.
type SequenceSampler struct {
	values []float64
	next   int
}

// NewSequenceSampler creates a sampler that replays values in order
func NewSequenceSampler(values ...float64) *SequenceSampler {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &SequenceSampler{values: values}
}

// Get1D returns the next value in the sequence
func (s *SequenceSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Get2D returns the next two values in the sequence
func (s *SequenceSampler) Get2D() Vec2 {
	x := s.Get1D()
	return NewVec2(x, s.Get1D())
}

// Get3D returns the next three values in the sequence
func (s *SequenceSampler) Get3D() Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return NewVec3(x, y, s.Get1D())
}

// RandomRange maps a sample in [0, 1) to [min, max)
func RandomRange(sampler Sampler, min, max float64) float64 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVec3 returns a vector with each component in [min, max)
func RandomVec3(sampler Sampler, min, max float64) Vec3 {
	u := sampler.Get3D()
	return NewVec3(min+(max-min)*u.X, min+(max-min)*u.Y, min+(max-min)*u.Z)
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere.
// Candidates too close to the origin are rejected so normalization stays finite.
func RandomUnitVector(sampler Sampler) Vec3 {
	for {
		p := RandomVec3(sampler, -1, 1)
		lensq := p.LengthSquared()
		if 1e-160 < lensq && lensq < 1 {
			return p.Divide(math.Sqrt(lensq))
		}
	}
}

// RandomInUnitDisk returns a point strictly inside the unit disk on the z=0 plane
// (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		u := sampler.Get2D()
		p := NewVec3(2*u.X-1, 2*u.Y-1, 0)
		// Accept if inside unit disk
		if p.LengthSquared() < 1 {
			return p
		}
	}
}
