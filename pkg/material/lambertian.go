package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// NewLambertian creates a new perfectly diffuse material
func NewLambertian(albedo core.Color) Material {
	return Material{Kind: KindLambertian, Albedo: albedo}
}

// scatterLambertian offsets the normal by a random unit vector, which gives a
// cosine-weighted distribution about the normal. It never absorbs.
func (m *Material) scatterLambertian(hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(sampler))

	// The random vector can cancel the normal almost exactly
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: m.Albedo,
	}, true
}
