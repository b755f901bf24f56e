package renderer

import (
	"bytes"
	"image"
	"runtime"
	"testing"

	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Stop()

	if pool.NumWorkers() != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), pool.NumWorkers())
	}
}

func TestWorkerPool_MatchesSingleThreadedRender(t *testing.T) {
	// Pixel ownership is disjoint across tiles, so any worker count must
	// produce the same bytes as a single sequential render
	sc := scene.NewDefaultScene()
	camera := NewCamera(sc.Camera)
	rt := NewRaytracer(camera, sc.Spheres, DefaultMaxBounces)

	reference := NewFramebuffer(64, 48)
	rt.RenderBounds(image.Rect(0, 0, 64, 48), reference)

	for _, workers := range []int{1, 2, 8} {
		pool := NewWorkerPool(workers)
		pool.Start()

		fb := NewFramebuffer(64, 48)
		tiles := NewTileGrid(64, 48, 16)
		stats := pool.RenderTiles(tiles, rt, fb)
		pool.Stop()

		if !bytes.Equal(fb.Pix(), reference.Pix()) {
			t.Errorf("Expected %d-worker render to match sequential render", workers)
		}
		if stats.Pixels != 64*48 {
			t.Errorf("Expected %d pixels with %d workers, got %d", 64*48, workers, stats.Pixels)
		}
	}
}

func TestWorkerPool_ServesSuccessiveFrames(t *testing.T) {
	sc := scene.NewDefaultScene()
	rt := NewRaytracer(NewCamera(sc.Camera), sc.Spheres, DefaultMaxBounces)

	movedCamera := sc.Camera
	movedCamera.Origin = movedCamera.Origin.Add(movedCamera.Up.Multiply(0.5))
	movedRt := NewRaytracer(NewCamera(movedCamera), sc.Spheres, DefaultMaxBounces)

	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	fb := NewFramebuffer(32, 32)
	tiles := NewTileGrid(32, 32, 8)

	pool.RenderTiles(tiles, rt, fb)
	firstFrame := append([]uint8(nil), fb.Pix()...)

	pool.RenderTiles(tiles, movedRt, fb)

	if bytes.Equal(firstFrame, fb.Pix()) {
		t.Error("Expected a moved camera to change the frame")
	}

	// A third pass with the original camera reproduces the first frame
	pool.RenderTiles(tiles, rt, fb)
	if !bytes.Equal(firstFrame, fb.Pix()) {
		t.Error("Expected the original camera to reproduce the first frame")
	}
}

func TestWorkerPool_StopIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()
	pool.Stop()
}
