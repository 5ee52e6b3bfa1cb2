package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewThreeSpheresScene creates a diffuse sphere between a mirror and a fuzzy
// gold sphere, with a solid and a hollow glass sphere in front
func NewThreeSpheresScene() *Scene {
	lambertianGreen := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewColor(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewColor(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.3)
	glass := material.NewDielectric(1.5)

	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -1000, -1), 1000, lambertianGreen),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),

		// Hollow glass: the negative radius flips the inner surface's normals
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, lambertianBlue),
	)

	lookFrom := core.NewVec3(0, 0.75, 2)
	lookAt := core.NewVec3(0, 0.5, -1)

	return &Scene{
		Name: "three-spheres",
		Camera: renderer.CameraConfig{
			AspectRatio:  16.0 / 9.0,
			ImageWidth:   400,
			VFov:         40,
			LookFrom:     lookFrom,
			LookAt:       lookAt,
			VUp:          core.NewVec3(0, 1, 0),
			DefocusAngle: 1.0,
			FocusDist:    lookAt.Subtract(lookFrom).Length(),
		},
		Sampling: renderer.SamplingConfig{
			SamplesPerPixel: 200,
			MaxDepth:        50,
		},
		Background: renderer.DefaultBackground(),
		World:      world,
	}
}

// NewSingleSphereScene creates a white diffuse unit sphere at the origin,
// viewed head on from z=3
func NewSingleSphereScene() *Scene {
	white := material.NewLambertian(core.NewColor(1, 1, 1))

	return &Scene{
		Name: "single-sphere",
		Camera: renderer.CameraConfig{
			AspectRatio:  1.0,
			ImageWidth:   100,
			VFov:         90,
			LookFrom:     core.NewVec3(0, 0, 3),
			LookAt:       core.NewVec3(0, 0, 0),
			VUp:          core.NewVec3(0, 1, 0),
			DefocusAngle: 0,
			FocusDist:    3,
		},
		Sampling: renderer.SamplingConfig{
			SamplesPerPixel: 10,
			MaxDepth:        10,
		},
		Background: renderer.DefaultBackground(),
		World:      geometry.NewHittableList(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, white)),
	}
}
