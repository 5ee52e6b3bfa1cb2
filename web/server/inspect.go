package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains the closest hit along a pixel's centre ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Shape     geometry.Shape // nil when the hit could not be attributed
	Distance  float64        // From the camera centre to the hit point
}

func triple(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Color) string {
	unit := core.NewInterval(0, 1)
	return fmt.Sprintf("#%02x%02x%02x",
		int(unit.Clamp(c.X)*255), int(unit.Clamp(c.Y)*255), int(unit.Clamp(c.Z)*255))
}

// extractMaterialInfo describes a material for the inspector
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch mat.Kind {
	case material.KindLambertian:
		properties["albedo"] = triple(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
	case material.KindMetal:
		properties["albedo"] = triple(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
		properties["fuzz"] = mat.Fuzz
	case material.KindDielectric:
		properties["refractionIndex"] = mat.RefractionIndex
		properties["color"] = "#ffffff" // Clear glass
	default:
		return "unknown", properties
	}
	return mat.Kind.String(), properties
}

// extractGeometryInfo describes the shape that was hit
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = triple(geom.Center)
		properties["radius"] = geom.Radius
		properties["inverted"] = geom.Radius < 0
		return "sphere", properties
	default:
		return "unknown", properties
	}
}

// inspectPixel casts the centre ray of a pixel and returns the first object hit
func inspectPixel(sc *scene.Scene, pixelX, pixelY int) (InspectResult, error) {
	camera, err := renderer.NewCamera(sc.Camera)
	if err != nil {
		return InspectResult{}, err
	}

	ray := camera.GetCenterRay(pixelX, pixelY)
	rayT := core.NewInterval(renderer.ShadowAcneEpsilon, math.Inf(1))

	hit, isHit := sc.World.Hit(ray, rayT)
	if !isHit {
		return InspectResult{Hit: false}, nil
	}

	// The list doesn't report which shape it hit; the first shape with the
	// same t is the one it kept
	result := InspectResult{Hit: true, HitRecord: hit, Distance: hit.T * ray.Direction.Length()}
	for _, shape := range sc.World.Shapes {
		if shapeHit, ok := shape.Hit(ray, rayT); ok && shapeHit.T == hit.T {
			result.Shape = shape
			break
		}
	}
	return result, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := parseCommonSceneParams(r.URL.Query(), req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sc, err := createScene(req)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	if pixelX < 0 || pixelX >= sc.Camera.ImageWidth || pixelY < 0 || pixelY >= sc.Camera.ImageHeight() {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result, err := inspectPixel(sc, pixelX, pixelY)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        triple(result.HitRecord.Point),
		Normal:       triple(result.HitRecord.Normal),
		Distance:     result.Distance,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
