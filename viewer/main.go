package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer/gpu"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
	"github.com/kinnison/go-realtime-raytracer/viewer/app"
)

func main() {
	sceneFlag := flag.String("scene", "default", "Scene: built-in name or JSON scene file")
	width := flag.Int("width", 1280, "Initial window width")
	height := flag.Int("height", 720, "Initial window height")
	backend := flag.String("backend", "cpu", "Render backend: 'cpu' or 'gl'")
	workers := flag.Int("workers", 0, "CPU render workers (0 = all cores)")
	flag.Parse()

	if err := run(*sceneFlag, *width, *height, *backend, *workers); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(sceneName string, width, height int, backendName string, workers int) error {
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

	logger.Printf("Viewing %s scene (%s backend)\n", sc.Name, rend.BackendName())
	return app.Run(rend, logger)
}

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
