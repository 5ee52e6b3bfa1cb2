package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

type options struct {
	sceneType string
	file      string
	out       string
	format    string
	export    string
	width     int
	spp       int
	depth     int
	seed      int64
}

func main() {
	var opts options
	flag.StringVar(&opts.sceneType, "scene", "default", "Scene: "+strings.Join(scene.Names(), ", ")+", file:<name> or a path to a .yaml scene")
	flag.StringVar(&opts.file, "file", "", "YAML scene file (overrides -scene)")
	flag.StringVar(&opts.out, "out", "", "Output image path (default output/<scene>/render_<timestamp>.<format>)")
	flag.StringVar(&opts.format, "format", "png", "Output format when -out is not set: png, bmp, tiff or ppm")
	flag.StringVar(&opts.export, "export", "", "Write the selected scene as YAML to this path and exit")
	flag.IntVar(&opts.width, "width", 0, "Image width override (0 keeps the scene's)")
	flag.IntVar(&opts.spp, "spp", 0, "Samples per pixel override (0 keeps the scene's)")
	flag.IntVar(&opts.depth, "depth", 0, "Max bounce depth override (0 keeps the scene's)")
	flag.Int64Var(&opts.seed, "seed", 42, "Random seed for scene layout and sampling")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("render failed")
	}
}

func printHelp() {
	fmt.Println("Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	response, err := scene.ListAllScenes()
	if err != nil {
		fmt.Printf("  (failed to list scenes: %v)\n", err)
		return
	}
	for _, group := range response.Groups {
		fmt.Printf("  %s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Printf("    %-16s %s\n", info.ID, info.Description)
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

// createScene resolves a built-in name, a file:<name> scene or a .yaml path
func createScene(sceneType string, seed int64) (*scene.Scene, error) {
	if strings.HasSuffix(sceneType, ".yaml") || strings.HasSuffix(sceneType, ".yml") {
		return scene.Load(sceneType)
	}
	return scene.Create(sceneType, seed)
}

func run(ctx context.Context, opts options, logger zerolog.Logger) error {
	sceneType := opts.sceneType
	if opts.file != "" {
		sceneType = opts.file
	}

	s, err := createScene(sceneType, opts.seed)
	if err != nil {
		return err
	}
	s.Apply(scene.Overrides{Width: opts.width, SamplesPerPixel: opts.spp, MaxDepth: opts.depth})

	if opts.export != "" {
		if err := scene.Save(opts.export, scene.FromScene(s)); err != nil {
			return fmt.Errorf("export scene: %w", err)
		}
		logger.Info().Str("scene", s.Name).Str("path", opts.export).Msg("scene exported")
		return nil
	}

	outPath, err := outputPath(opts, s.Name, time.Now())
	if err != nil {
		return err
	}

	logger.Info().
		Str("scene", s.Name).
		Int("spheres", s.World.Len()).
		Int("width", s.Camera.ImageWidth).
		Int("height", s.Camera.ImageHeight()).
		Msg("starting render")

	rt, err := s.NewRaytracer(
		renderer.WithSeed(opts.seed),
		renderer.WithLogger(logger),
		renderer.WithProgress(progressLogger(logger)),
	)
	if err != nil {
		return err
	}

	img, stats, err := rt.Render(ctx)
	if err != nil {
		return err
	}

	if err := output.Save(outPath, img); err != nil {
		return err
	}

	logger.Info().
		Str("path", outPath).
		Dur("elapsed", stats.Elapsed).
		Int("samples", stats.TotalSamples).
		Msg("render saved")
	return nil
}

// outputPath returns -out if set, otherwise a timestamped file under output/<scene>
func outputPath(opts options, sceneName string, now time.Time) (string, error) {
	if opts.out != "" {
		if _, err := output.FormatFromPath(opts.out); err != nil {
			return "", err
		}
		return opts.out, nil
	}

	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return "", err
	}
	dirName := strings.ReplaceAll(strings.ToLower(sceneName), " ", "-")
	if dirName == "" {
		dirName = "scene"
	}
	filename := fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), format)
	return filepath.Join("output", dirName, filename), nil
}

// progressLogger logs at every completed tenth of the image
func progressLogger(logger zerolog.Logger) renderer.ProgressFunc {
	lastDecile := 0
	return func(p renderer.Progress) error {
		if p.TotalRows == 0 {
			return nil
		}
		decile := p.RowsDone * 10 / p.TotalRows
		if decile > lastDecile {
			lastDecile = decile
			logger.Info().
				Int("percent", decile*10).
				Dur("elapsed", p.Elapsed).
				Msg("render progress")
		}
		return nil
	}
}
