package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()

	hit, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), fullRayT)
	assert.False(t, isHit)
	assert.Nil(t, hit)
	assert.Equal(t, 0, list.Len())
}

func TestHittableList_ClosestHitWins(t *testing.T) {
	red := material.NewLambertian(core.NewColor(1, 0, 0))
	blue := material.NewLambertian(core.NewColor(0, 0, 1))

	far := NewSphere(core.NewVec3(0, 0, -10), 1, blue)
	near := NewSphere(core.NewVec3(0, 0, -3), 1, red)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Insertion order must not matter
	for _, list := range []*HittableList{NewHittableList(far, near), NewHittableList(near, far)} {
		hit, isHit := list.Hit(ray, fullRayT)
		require.True(t, isHit)
		assert.InDelta(t, 2.0, hit.T, 1e-9)
		assert.Same(t, &near.Material, hit.Material)
	}
}

func TestHittableList_RespectsInterval(t *testing.T) {
	list := NewHittableList(
		NewSphere(core.NewVec3(0, 0, -3), 1, gray),
		NewSphere(core.NewVec3(0, 0, -10), 1, gray),
	)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := list.Hit(ray, core.NewInterval(5, 100))
	require.True(t, isHit)
	assert.InDelta(t, 9.0, hit.T, 1e-9)

	_, isHit = list.Hit(ray, core.NewInterval(0.001, 1.5))
	assert.False(t, isHit)
}

func TestHittableList_EqualTieKeepsFirst(t *testing.T) {
	first := NewSphere(core.NewVec3(0, 0, -3), 1, material.NewMetal(core.NewColor(1, 1, 1), 0))
	second := NewSphere(core.NewVec3(0, 0, -3), 1, material.NewDielectric(1.5))
	list := NewHittableList(first)
	list.Add(second)

	hit, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), fullRayT)
	require.True(t, isHit)
	assert.Same(t, &first.Material, hit.Material)
	assert.Equal(t, 2, list.Len())
}
