package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Request limits shared by the HTTP and WebSocket endpoints
const (
	DefaultWidth           = 400
	DefaultSamplesPerPixel = 20
	DefaultSeed            = 42
	minWidth               = 16
	maxWidth               = 2000
	maxSamplesPerPixel     = 10000
	maxDepthLimit          = 500
)

// Server handles web requests for the path tracer
type Server struct {
	port       int
	logger     zerolog.Logger
	renderLogs io.Writer // receives a copy of every per-render log line
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
}

// NewServer creates a new web server. renderLogs may be nil.
func NewServer(port int, logger zerolog.Logger, renderLogs io.Writer) *Server {
	if renderLogs == nil {
		renderLogs = io.Discard
	}
	s := &Server{
		port:       port,
		logger:     logger,
		renderLogs: renderLogs,
		mux:        http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/scenes", s.handleScenes)
	s.mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("GET /api/render", s.handleRender)
	s.mux.HandleFunc("GET /api/inspect", s.handleInspect)
	s.mux.HandleFunc("GET /api/ws", s.handleWS)
	return s
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured port until the listener fails
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info().Str("addr", srv.Addr).Msg("starting web server")
	return srv.ListenAndServe()
}

// RenderRequest represents a render request from the client. Zero sample and
// depth values keep the scene's own settings.
type RenderRequest struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	SamplesPerPixel int    `json:"samplesPerPixel"`
	MaxDepth        int    `json:"maxDepth"`
	Seed            int64  `json:"seed"`
	Format          string `json:"format,omitempty"` // /api/render only
}

// normalize fills in defaults and checks limits for requests decoded from JSON.
// A zero seed is treated as missing.
func (req *RenderRequest) normalize() error {
	if req.Seed == 0 {
		req.Seed = DefaultSeed
	}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Width == 0 {
		req.Width = DefaultWidth
	}
	if req.SamplesPerPixel == 0 {
		req.SamplesPerPixel = DefaultSamplesPerPixel
	}
	if req.Format == "" {
		req.Format = string(output.FormatPNG)
	}

	switch {
	case req.Width < minWidth || req.Width > maxWidth:
		return fmt.Errorf("width must be between %d and %d, got: %d", minWidth, maxWidth, req.Width)
	case req.SamplesPerPixel < 1 || req.SamplesPerPixel > maxSamplesPerPixel:
		return fmt.Errorf("samplesPerPixel must be between 1 and %d, got: %d", maxSamplesPerPixel, req.SamplesPerPixel)
	case req.MaxDepth < 0 || req.MaxDepth > maxDepthLimit:
		return fmt.Errorf("maxDepth must be between 0 and %d, got: %d", maxDepthLimit, req.MaxDepth)
	}
	_, err := output.ParseFormat(req.Format)
	return err
}

// parseCommonSceneParams parses the scene, width and seed parameters
func parseCommonSceneParams(values url.Values, req *RenderRequest) error {
	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", DefaultWidth, minWidth, maxWidth); err != nil {
		return err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
	} else {
		req.Seed = DefaultSeed
	}
	return nil
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := parseCommonSceneParams(values, req); err != nil {
		return nil, err
	}

	var err error
	if req.SamplesPerPixel, err = parseIntParam(values, "spp", DefaultSamplesPerPixel, 1, maxSamplesPerPixel); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 0, maxDepthLimit); err != nil {
		return nil, err
	}
	req.Format = values.Get("format")
	if req.Format == "" {
		req.Format = string(output.FormatPNG)
	}
	if _, err := output.ParseFormat(req.Format); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds the requested scene with the request's overrides applied.
// Only registered scene IDs are accepted, never file paths.
func createScene(req *RenderRequest) (*scene.Scene, error) {
	sc, err := scene.Create(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}
	sc.Apply(scene.Overrides{Width: req.Width, SamplesPerPixel: req.SamplesPerPixel, MaxDepth: req.MaxDepth})
	return sc, nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list scenes")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sc, err := scene.Create(sceneName, DefaultSeed)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           sc.Camera.ImageWidth,
			"height":          sc.Camera.ImageHeight(),
			"aspectRatio":     sc.Camera.AspectRatio,
			"samplesPerPixel": sc.Sampling.SamplesPerPixel,
			"maxDepth":        sc.Sampling.MaxDepth,
			"spheres":         sc.World.Len(),
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": minWidth, "max": maxWidth},
			"samplesPerPixel": map[string]int{"min": 1, "max": maxSamplesPerPixel},
			"maxDepth":        map[string]int{"min": 0, "max": maxDepthLimit},
		},
	})
}

// handleRender renders a scene synchronously and returns the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sc, err := createScene(req)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	logger := s.logger.With().Str("scene", req.Scene).Logger()
	rt, err := sc.NewRaytracer(renderer.WithSeed(req.Seed), renderer.WithLogger(logger))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, stats, err := rt.Render(r.Context())
	if err != nil {
		logger.Warn().Err(err).Msg("render failed")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	format, _ := output.ParseFormat(req.Format)
	var buf bytes.Buffer
	if err := output.Encode(&buf, img, format); err != nil {
		logger.Error().Err(err).Msg("failed to encode image")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Elapsed.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Debug().Err(err).Msg("client went away before the image was written")
	}
}

func contentType(format output.Format) string {
	switch format {
	case output.FormatBMP:
		return "image/bmp"
	case output.FormatTIFF:
		return "image/tiff"
	case output.FormatPPM:
		return "image/x-portable-pixmap"
	default:
		return "image/png"
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sceneErrorStatus maps scene creation errors to a response status
func sceneErrorStatus(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
