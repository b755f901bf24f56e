package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer/gpu"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

func main() {
	sceneName := flag.String("scene", "default", "Scene name or JSON scene file path")
	width := flag.Int("width", 640, "Image width in pixels")
	height := flag.Int("height", 360, "Image height in pixels")
	frames := flag.Int("frames", 1, "Number of orbit frames to render")
	orbit := flag.Float64("orbit", 1.0, "Full camera orbits spread across the frames")
	backendName := flag.String("backend", "cpu", "Render backend: 'cpu' or 'gl'")
	workers := flag.Int("workers", 0, "Worker goroutines for the cpu backend (0 = all CPUs)")
	outputDir := flag.String("output", "output", "Output directory root")
	listScenes := flag.Bool("list-scenes", false, "List available scenes and exit")
	flag.Parse()

	if *listScenes {
		if err := printScenes(); err != nil {
			log.Printf("Error: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*sceneName, *width, *height, *frames, *orbit, *backendName, *workers, *outputDir); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(sceneName string, width, height, frames int, orbit float64, backendName string, workers int, outputDir string) error {
	if frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", frames)
	}

	logger := core.NewDefaultLogger()

	sc, err := scene.Resolve(sceneName)
	if err != nil {
		return err
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = workers

	rend, err := newRenderer(sc, width, height, backendName, config, logger)
	if err != nil {
		return err
	}
	defer rend.Close()

	sceneDir := filepath.Join(outputDir, outputSceneDir(sceneName))
	if err := os.MkdirAll(sceneDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Printf("Rendering %s scene at %dx%d (%s backend)\n", sc.Name, width, height, rend.BackendName())

	ctx := context.Background()
	timestamp := time.Now().Format("20060102_150405")
	startTime := time.Now()

	for frame := 0; frame < frames; frame++ {
		angle := 2 * math.Pi * orbit * float64(frame) / float64(frames)
		rend.SetCamera(scene.Orbit(sc.Camera, sc.Pivot, angle))

		img, stats, err := rend.RenderFrame(ctx)
		if err != nil {
			return fmt.Errorf("render failed on frame %d: %w", frame+1, err)
		}

		outputPath := framePath(sceneDir, timestamp, frame, frames)
		if err := savePNG(outputPath, img); err != nil {
			return err
		}

		logger.Printf("Frame %d/%d: %v, %.2f bounces/px, saved to %s\n",
			frame+1, frames, stats.Duration.Round(time.Microsecond), stats.AverageBounces, outputPath)
	}

	logger.Printf("Rendered %d frames in %v\n", frames, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// newRenderer builds a renderer with the named backend.
func newRenderer(sc *scene.Scene, width, height int, backendName string, config renderer.Config, logger core.Logger) (*renderer.Renderer, error) {
	switch backendName {
	case "cpu":
		return renderer.NewRenderer(sc, width, height, config, logger)
	case "gl":
		backend, err := gpu.New(sc, config, logger)
		if err != nil {
			return nil, err
		}
		rend, err := renderer.NewRendererWithBackend(sc, width, height, backend, logger)
		if err != nil {
			backend.Close()
			return nil, err
		}
		return rend, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want 'cpu' or 'gl')", backendName)
	}
}

// outputSceneDir maps a scene name or file path to an output directory name.
func outputSceneDir(sceneName string) string {
	base := filepath.Base(sceneName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// framePath names one rendered frame. Single renders keep the plain
// timestamped name, frame sequences get a frame suffix.
func framePath(dir, timestamp string, frame, total int) string {
	if total == 1 {
		return filepath.Join(dir, fmt.Sprintf("render_%s.png", timestamp))
	}
	return filepath.Join(dir, fmt.Sprintf("render_%s_frame%03d.png", timestamp, frame+1))
}

func savePNG(path string, img *image.RGBA) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to save PNG: %w", err)
	}
	return nil
}

func printScenes() error {
	response, err := scene.ListScenes()
	if err != nil {
		return err
	}

	fmt.Println("Available scenes:")
	for _, info := range response.Scenes {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Scene JSON files can also be passed by path.")
	return nil
}
