package renderer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// ShadowAcneEpsilon is the lower t bound for scene queries; it keeps a
// scattered ray from re-hitting the surface it just left.
const ShadowAcneEpsilon = 0.001

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate rejects sampling settings the render loop cannot honour
func (c SamplingConfig) Validate() error {
	if c.SamplesPerPixel < 1 {
		return fmt.Errorf("%w: samples per pixel must be at least 1, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// ProgressFunc is called after every completed row. Returning an error stops the render.
type ProgressFunc func(Progress) error

// Option configures a Raytracer
type Option func(*Raytracer)

// WithSampler sets the random source for every sampling decision
func WithSampler(sampler core.Sampler) Option {
	return func(rt *Raytracer) { rt.sampler = sampler }
}

// WithSeed uses a deterministic sampler seeded with seed
func WithSeed(seed int64) Option {
	return func(rt *Raytracer) { rt.sampler = core.NewSeededSampler(seed) }
}

// WithLogger sets the logger for render lifecycle events
func WithLogger(logger zerolog.Logger) Option {
	return func(rt *Raytracer) { rt.logger = logger }
}

// WithBackground replaces the default sky gradient
func WithBackground(background Background) Option {
	return func(rt *Raytracer) { rt.background = background }
}

// WithProgress registers a per-row progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(rt *Raytracer) { rt.progress = fn }
}

// Raytracer handles the rendering process
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	config     SamplingConfig
	background Background
	sampler    core.Sampler
	logger     zerolog.Logger
	progress   ProgressFunc

	pixelSampleScale float64
	raysTraced       int64
}

// NewRaytracer creates a new raytracer for world as seen by camera
func NewRaytracer(world geometry.Shape, camera *Camera, config SamplingConfig, opts ...Option) (*Raytracer, error) {
	if world == nil {
		return nil, fmt.Errorf("%w: world is nil", ErrInvalidConfig)
	}
	if camera == nil {
		return nil, fmt.Errorf("%w: camera is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rt := &Raytracer{
		world:            world,
		camera:           camera,
		config:           config,
		background:       DefaultBackground(),
		sampler:          core.NewSeededSampler(42), // Deterministic for testing
		logger:           zerolog.Nop(),
		pixelSampleScale: 1.0 / float64(config.SamplesPerPixel),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// Camera returns the camera the raytracer renders through
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// RayColor returns the light arriving along r after at most depth bounces
func (rt *Raytracer) RayColor(r core.Ray, depth int) core.Color {
	rt.raysTraced++

	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := rt.world.Hit(r, core.NewInterval(ShadowAcneEpsilon, math.Inf(1)))
	if !isHit {
		return rt.background.Color(r)
	}

	scatter, didScatter := hit.Material.Scatter(r, hit, rt.sampler)
	if !didScatter {
		return core.Color{}
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1))
}

// PixelColor averages SamplesPerPixel jittered samples for pixel (i, j)
func (rt *Raytracer) PixelColor(i, j int) core.Color {
	colorAccum := core.Color{}
	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		ray := rt.camera.GetRay(i, j, rt.sampler)
		colorAccum = colorAccum.Add(rt.RayColor(ray, rt.config.MaxDepth))
	}
	return colorAccum.Multiply(rt.pixelSampleScale)
}

// Render traces every pixel, top row first, and returns the quantized image.
// ctx is only consulted between rows.
func (rt *Raytracer) Render(ctx context.Context) (*Image, RenderStats, error) {
	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	img := NewImage(width, height)
	rt.raysTraced = 0

	stats := RenderStats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: rt.config.SamplesPerPixel,
		MaxDepth:        rt.config.MaxDepth,
	}

	rt.logger.Info().
		Int("width", width).
		Int("height", height).
		Int("samplesPerPixel", rt.config.SamplesPerPixel).
		Int("maxDepth", rt.config.MaxDepth).
		Msg("render started")

	startTime := time.Now()
	for j := 0; j < height; j++ {
		if err := ctx.Err(); err != nil {
			rt.logger.Warn().Err(err).Int("row", j).Msg("render cancelled")
			return nil, stats, fmt.Errorf("render cancelled at row %d: %w", j, err)
		}

		for i := 0; i < width; i++ {
			img.SetPixel(i, j, QuantizeColor(rt.PixelColor(i, j)))
		}

		stats.TotalPixels += width
		stats.TotalSamples += width * rt.config.SamplesPerPixel

		progress := Progress{Row: j, RowsDone: j + 1, TotalRows: height, Elapsed: time.Since(startTime)}
		rt.logger.Debug().Int("rowsDone", progress.RowsDone).Int("totalRows", height).Msg("row complete")
		if rt.progress != nil {
			if err := rt.progress(progress); err != nil {
				return nil, stats, fmt.Errorf("progress callback at row %d: %w", j, err)
			}
		}
	}

	stats.Elapsed = time.Since(startTime)
	stats.RaysTraced = rt.raysTraced

	rt.logger.Info().
		Dur("elapsed", stats.Elapsed).
		Int64("raysTraced", stats.RaysTraced).
		Float64("raysPerSecond", stats.RaysPerSecond()).
		Msg("render completed")

	return img, stats, nil
}
