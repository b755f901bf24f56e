package renderer

import (
	"context"
	"time"

	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// Backend renders complete frames into a framebuffer. The scene is fixed
// at construction; only the camera varies between frames. Implementations
// must produce the same image for the same camera and framebuffer size.
//
// A backend serves one frame at a time. Callers serialize RenderFrame.
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// RenderFrame traces every pixel of fb for the given camera and blocks
	// until the frame is complete. A frame that has started always runs to
	// completion; ctx is only consulted before tracing begins.
	RenderFrame(ctx context.Context, cam scene.CameraConfig, fb *Framebuffer) (FrameStats, error)

	// Close releases backend resources. The backend is unusable afterwards.
	Close() error
}

// CPUBackend renders frames on a persistent worker pool. Workers start at
// construction and serve every frame until Close.
type CPUBackend struct {
	spheres    []geometry.Sphere
	maxBounces int
	tileSize   int
	pool       *WorkerPool

	// Tile grid for the most recent framebuffer size, rebuilt on resize
	tiles      []Tile
	tileWidth  int
	tileHeight int
}

// NewCPUBackend creates a CPU backend for the given scene and starts its
// workers.
func NewCPUBackend(sc *scene.Scene, config Config) *CPUBackend {
	tileSize := config.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	pool := NewWorkerPool(config.NumWorkers)
	pool.Start()

	return &CPUBackend{
		spheres:    sc.Spheres,
		maxBounces: config.MaxBounces,
		tileSize:   tileSize,
		pool:       pool,
	}
}

// Name identifies the backend in logs
func (b *CPUBackend) Name() string {
	return "cpu"
}

// RenderFrame traces one frame across the worker pool
func (b *CPUBackend) RenderFrame(ctx context.Context, cam scene.CameraConfig, fb *Framebuffer) (FrameStats, error) {
	select {
	case <-ctx.Done():
		return FrameStats{}, ctx.Err()
	default:
	}

	startTime := time.Now()

	camera := NewCamera(cam)
	raytracer := NewRaytracer(camera, b.spheres, b.maxBounces)
	tiles := b.tilesFor(fb.Width(), fb.Height())

	tileStats := b.pool.RenderTiles(tiles, raytracer, fb)

	return newFrameStats(tileStats, time.Since(startTime), b.pool.NumWorkers()), nil
}

// Close stops the worker pool
func (b *CPUBackend) Close() error {
	b.pool.Stop()
	return nil
}

// tilesFor returns the tile grid for the given dimensions, rebuilding the
// cached grid when the framebuffer has been resized
func (b *CPUBackend) tilesFor(width, height int) []Tile {
	if b.tiles == nil || width != b.tileWidth || height != b.tileHeight {
		b.tiles = NewTileGrid(width, height, b.tileSize)
		b.tileWidth = width
		b.tileHeight = height
	}

	return b.tiles
}
