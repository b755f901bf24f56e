package renderer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// testLogger implements core.Logger for testing by discarding all output
type testLogger struct{}

// Ensure testLogger implements core.Logger
var _ core.Logger = (*testLogger)(nil)

func (tl *testLogger) Printf(format string, args ...interface{}) {
	// Discard log output during tests
}

func TestCPUBackend_MatchesDirectRender(t *testing.T) {
	sc := scene.NewDefaultScene()
	config := DefaultConfig()
	config.TileSize = 16
	config.NumWorkers = 3
	backend := NewCPUBackend(sc, config)
	defer backend.Close()

	fb := NewFramebuffer(48, 32)
	stats, err := backend.RenderFrame(context.Background(), sc.Camera, fb)
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}

	if stats.TotalPixels != 48*32 {
		t.Errorf("Expected %d pixels, got %d", 48*32, stats.TotalPixels)
	}
	if stats.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", stats.Workers)
	}
	if stats.TotalRays != stats.TotalPixels+stats.TotalBounces {
		t.Errorf("Expected rays = pixels + bounces, got %d rays, %d pixels, %d bounces",
			stats.TotalRays, stats.TotalPixels, stats.TotalBounces)
	}

	reference := NewFramebuffer(48, 32)
	rt := NewRaytracer(NewCamera(sc.Camera), sc.Spheres, config.MaxBounces)
	rt.RenderBounds(image.Rect(0, 0, 48, 32), reference)

	if !bytes.Equal(fb.Pix(), reference.Pix()) {
		t.Error("Expected backend render to match direct render")
	}
}

func TestCPUBackend_CancelledContext(t *testing.T) {
	sc := scene.NewDefaultScene()
	backend := NewCPUBackend(sc, DefaultConfig())
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := NewFramebuffer(8, 8)
	if _, err := backend.RenderFrame(ctx, sc.Camera, fb); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	for i, b := range fb.Pix() {
		if b != 0 {
			t.Fatalf("Expected untouched framebuffer, found byte %d at offset %d", b, i)
		}
	}
}

func TestCPUBackend_HandlesResize(t *testing.T) {
	sc := scene.NewDefaultScene()
	config := DefaultConfig()
	config.TileSize = 16
	backend := NewCPUBackend(sc, config)
	defer backend.Close()

	small := NewFramebuffer(16, 16)
	if stats, err := backend.RenderFrame(context.Background(), sc.Camera, small); err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	} else if stats.TotalPixels != 256 {
		t.Errorf("Expected 256 pixels, got %d", stats.TotalPixels)
	}

	large := NewFramebuffer(40, 24)
	stats, err := backend.RenderFrame(context.Background(), sc.Camera, large)
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}
	if stats.TotalPixels != 960 {
		t.Errorf("Expected 960 pixels after resize, got %d", stats.TotalPixels)
	}

	reference := NewFramebuffer(40, 24)
	rt := NewRaytracer(NewCamera(sc.Camera), sc.Spheres, config.MaxBounces)
	rt.RenderBounds(image.Rect(0, 0, 40, 24), reference)
	if !bytes.Equal(large.Pix(), reference.Pix()) {
		t.Error("Expected resized render to match direct render")
	}
}

func TestNewRenderer_RejectsInvalidSetup(t *testing.T) {
	sc := scene.NewDefaultScene()

	if _, err := NewRenderer(sc, 0, 10, DefaultConfig(), &testLogger{}); err == nil {
		t.Error("Expected error for zero width")
	}
	if _, err := NewRenderer(sc, 10, -1, DefaultConfig(), &testLogger{}); err == nil {
		t.Error("Expected error for negative height")
	}

	empty := &scene.Scene{Name: "empty", Camera: sc.Camera}
	if _, err := NewRenderer(empty, 10, 10, DefaultConfig(), &testLogger{}); err == nil {
		t.Error("Expected error for a scene with no spheres")
	}
}

func TestRenderer_RenderFrame(t *testing.T) {
	sc := scene.NewDefaultScene()
	config := DefaultConfig()
	config.TileSize = 16
	config.NumWorkers = 2
	r, err := NewRenderer(sc, 32, 24, config, &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	img, stats, err := r.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("Expected 32x24 image, got %v", img.Bounds())
	}
	if stats.TotalPixels != 768 {
		t.Errorf("Expected 768 pixels, got %d", stats.TotalPixels)
	}

	// The center ray hits the red sphere head on, blends once, and the
	// reflected ray escapes to the sky
	if c := img.RGBAAt(16, 12); c.R != 210 || c.G != 134 || c.B != 153 || c.A != 255 {
		t.Errorf("Expected center pixel (210, 134, 153, 255), got %v", c)
	}
}

func TestRenderer_SetCameraChangesFrame(t *testing.T) {
	sc := scene.NewDefaultScene()
	r, err := NewRenderer(sc, 32, 24, DefaultConfig(), &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	first, _, err := r.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}

	moved := sc.Camera
	moved.Origin = moved.Origin.Add(core.NewVec3(0, 0.5, 0))
	r.SetCamera(moved)

	if r.Camera() != moved {
		t.Errorf("Expected camera %v, got %v", moved, r.Camera())
	}

	second, _, err := r.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}

	if bytes.Equal(first.Pix, second.Pix) {
		t.Error("Expected a moved camera to change the frame")
	}
}

func TestRenderer_Resize(t *testing.T) {
	sc := scene.NewDefaultScene()
	r, err := NewRenderer(sc, 32, 24, DefaultConfig(), &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	r.Resize(16, 12)

	img, stats, err := r.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("Expected 16x12 image after resize, got %v", img.Bounds())
	}
	if stats.TotalPixels != 192 {
		t.Errorf("Expected 192 pixels, got %d", stats.TotalPixels)
	}

	// Non-positive dimensions are ignored
	r.Resize(0, 5)
	if r.Framebuffer().Width() != 16 || r.Framebuffer().Height() != 12 {
		t.Error("Expected invalid resize to be ignored")
	}
}

func TestRenderer_RenderFrames_CoalescesRequests(t *testing.T) {
	sc := scene.NewDefaultScene()
	config := DefaultConfig()
	config.TileSize = 16
	r, err := NewRenderer(sc, 32, 24, config, &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	camB := sc.Camera
	camB.Origin = camB.Origin.Add(core.NewVec3(0, 0.5, 0))
	camC := sc.Camera
	camC.Origin = camC.Origin.Add(core.NewVec3(0, 0, 1))

	// Three queued requests before the loop starts must collapse into a
	// single frame rendered with the newest camera
	requests := make(chan FrameRequest, 3)
	requests <- FrameRequest{Camera: sc.Camera}
	requests <- FrameRequest{Camera: camB}
	requests <- FrameRequest{Camera: camC}
	close(requests)

	results, errs := r.RenderFrames(context.Background(), requests)

	var frames []FrameResult
	for result := range results {
		frames = append(frames, result)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 coalesced frame, got %d", len(frames))
	}

	reference, err := NewRenderer(sc, 32, 24, config, &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create reference renderer: %v", err)
	}
	defer reference.Close()
	reference.SetCamera(camC)
	want, _, err := reference.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("Expected reference render to succeed, got %v", err)
	}

	if !bytes.Equal(frames[0].Image.Pix, want.Pix) {
		t.Error("Expected the coalesced frame to use the newest camera")
	}
}

func TestRenderer_RenderFrames_Cancelled(t *testing.T) {
	sc := scene.NewDefaultScene()
	r, err := NewRenderer(sc, 16, 16, DefaultConfig(), &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	requests := make(chan FrameRequest)
	results, errs := r.RenderFrames(ctx, requests)

	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, ok := <-results; ok {
		t.Error("Expected no frames after cancellation")
	}
}

func TestRenderer_RenderFrames_ResizesFramebuffer(t *testing.T) {
	sc := scene.NewDefaultScene()
	r, err := NewRenderer(sc, 32, 24, DefaultConfig(), &testLogger{})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	requests := make(chan FrameRequest, 1)
	requests <- FrameRequest{Camera: sc.Camera, Width: 20, Height: 10}
	close(requests)

	results, errs := r.RenderFrames(context.Background(), requests)

	result, ok := <-results
	if !ok {
		t.Fatal("Expected one frame before the channel closed")
	}
	if err := <-errs; err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Image.Bounds().Dx() != 20 || result.Image.Bounds().Dy() != 10 {
		t.Errorf("Expected 20x10 frame, got %v", result.Image.Bounds())
	}
	if result.Stats.TotalPixels != 200 {
		t.Errorf("Expected 200 pixels, got %d", result.Stats.TotalPixels)
	}
}
