package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewDefaultScene creates the random spheres scene: a 22x22 grid of small
// randomized spheres around three large feature spheres. seed fixes the layout.
func NewDefaultScene(seed int64) *Scene {
	sampler := core.NewSeededSampler(seed)

	world := geometry.NewHittableList()

	ground := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	world.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground))

	// Keep the small spheres clear of the metal feature sphere
	clearance := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*sampler.Get1D(),
				0.2,
				float64(b)+0.9*sampler.Get1D(),
			)

			if center.Subtract(clearance).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler, 0, 1).MultiplyVec(core.RandomVec3(sampler, 0, 1))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3(sampler, 0.5, 1)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = material.NewDielectric(1.5)
			}
			world.Add(geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	world.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0.0)),
	)

	return &Scene{
		Name: "default",
		Camera: renderer.CameraConfig{
			AspectRatio:  16.0 / 9.0,
			ImageWidth:   1200,
			VFov:         20,
			LookFrom:     core.NewVec3(13, 2, 3),
			LookAt:       core.NewVec3(0, 0, 0),
			VUp:          core.NewVec3(0, 1, 0),
			DefocusAngle: 0.6,
			FocusDist:    10.0,
		},
		Sampling: renderer.SamplingConfig{
			SamplesPerPixel: 500,
			MaxDepth:        50,
		},
		Background: renderer.DefaultBackground(),
		World:      world,
	}
}
