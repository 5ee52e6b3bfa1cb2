package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func TestInspectPixel_CenterHit(t *testing.T) {
	sc := scene.NewSingleSphereScene()
	sc.Apply(scene.Overrides{Width: 17})

	result, err := inspectPixel(sc, 8, 8)
	require.NoError(t, err)
	require.True(t, result.Hit)
	require.NotNil(t, result.Shape)

	assert.InDelta(t, 2.0, result.Distance, 1e-9)
	assert.InDelta(t, 1.0, result.HitRecord.Point.Z, 1e-9)
	assert.True(t, result.HitRecord.FrontFace)
}

func TestHandleInspect_Hit(t *testing.T) {
	rec := get(t, newTestServer(), "/api/inspect?scene=single-sphere&width=17&x=8&y=8")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Hit)
	assert.Equal(t, "lambertian", body.MaterialType)
	assert.Equal(t, "sphere", body.GeometryType)
	assert.InDelta(t, 2.0, body.Distance, 1e-9)
	assert.InDelta(t, 0.0, body.Normal[0], 1e-9)
	assert.InDelta(t, 0.0, body.Normal[1], 1e-9)
	assert.InDelta(t, 1.0, body.Normal[2], 1e-9)

	geometryProps, ok := body.Properties["geometry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.0, geometryProps["radius"])
	assert.Equal(t, false, geometryProps["inverted"])

	materialProps, ok := body.Properties["material"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "#ffffff", materialProps["color"])
}

func TestHandleInspect_Miss(t *testing.T) {
	rec := get(t, newTestServer(), "/api/inspect?scene=single-sphere&width=17&x=0&y=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var body InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Hit)
	assert.Empty(t, body.MaterialType)
}

func TestHandleInspect_BadRequests(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		status int
	}{
		{"missing x", "scene=single-sphere&y=1", http.StatusBadRequest},
		{"bad y", "scene=single-sphere&x=1&y=up", http.StatusBadRequest},
		{"out of bounds", "scene=single-sphere&width=17&x=17&y=0", http.StatusBadRequest},
		{"negative", "scene=single-sphere&width=17&x=-1&y=0", http.StatusBadRequest},
		{"unknown scene", "scene=missing&x=0&y=0", http.StatusNotFound},
	}

	s := newTestServer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, "/api/inspect?"+tc.query)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestExtractMaterialInfo(t *testing.T) {
	metal := material.NewMetal(core.NewColor(1, 0.5, 0), 0.3)
	kind, props := extractMaterialInfo(&metal)
	assert.Equal(t, "metal", kind)
	assert.Equal(t, 0.3, props["fuzz"])
	assert.Equal(t, "#ff7f00", props["color"])

	glass := material.NewDielectric(1.5)
	kind, props = extractMaterialInfo(&glass)
	assert.Equal(t, "dielectric", kind)
	assert.Equal(t, 1.5, props["refractionIndex"])

	kind, _ = extractMaterialInfo(&material.Material{})
	assert.Equal(t, "unknown", kind)
}

func TestExtractGeometryInfo_HollowSphere(t *testing.T) {
	shape := geometry.NewSphere(core.NewVec3(1, 2, 3), -0.5, material.NewDielectric(1.5))
	kind, props := extractGeometryInfo(shape)
	assert.Equal(t, "sphere", kind)
	assert.Equal(t, [3]float64{1, 2, 3}, props["center"])
	assert.Equal(t, true, props["inverted"])

	kind, _ = extractGeometryInfo(nil)
	assert.Equal(t, "unknown", kind)
}
