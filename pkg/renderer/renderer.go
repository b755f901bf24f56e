package renderer

import (
	"context"
	"fmt"
	"image"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// Config contains configuration for frame rendering
type Config struct {
	TileSize   int // Edge length of square tiles (64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
	MaxBounces int // Reflection budget per pixel (0 = DefaultMaxBounces)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:   DefaultTileSize,
		NumWorkers: 0, // Auto-detect CPU count
		MaxBounces: DefaultMaxBounces,
	}
}

// Renderer manages frame-by-frame rendering of a scene. The scene geometry
// is fixed for the renderer's lifetime; the camera and framebuffer size may
// change between frames.
type Renderer struct {
	scene   *scene.Scene
	camera  scene.CameraConfig
	fb      *Framebuffer
	backend Backend
	logger  core.Logger
}

// NewRenderer creates a renderer backed by the CPU worker pool.
func NewRenderer(sc *scene.Scene, width, height int, config Config, logger core.Logger) (*Renderer, error) {
	if err := validateSetup(sc, width, height); err != nil {
		return nil, err
	}

	return newRenderer(sc, width, height, NewCPUBackend(sc, config), logger), nil
}

// NewRendererWithBackend creates a renderer on a caller-supplied backend.
// On error the caller still owns the backend and must close it.
func NewRendererWithBackend(sc *scene.Scene, width, height int, backend Backend, logger core.Logger) (*Renderer, error) {
	if err := validateSetup(sc, width, height); err != nil {
		return nil, err
	}

	return newRenderer(sc, width, height, backend, logger), nil
}

func newRenderer(sc *scene.Scene, width, height int, backend Backend, logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	return &Renderer{
		scene:   sc,
		camera:  sc.Camera,
		fb:      NewFramebuffer(width, height),
		backend: backend,
		logger:  logger,
	}
}

func validateSetup(sc *scene.Scene, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}

	return nil
}

// Scene returns the scene being rendered
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// Camera returns the camera used for the next frame
func (r *Renderer) Camera() scene.CameraConfig {
	return r.camera
}

// SetCamera sets the camera for subsequent frames
func (r *Renderer) SetCamera(cam scene.CameraConfig) {
	r.camera = cam
}

// Framebuffer returns the renderer's framebuffer
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// BackendName identifies the backend rendering the frames
func (r *Renderer) BackendName() string {
	return r.backend.Name()
}

// Resize changes the framebuffer dimensions before the next frame.
// Non-positive dimensions are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.fb.Resize(width, height)
}

// RenderFrame renders one frame with the current camera and returns a copy
// of the framebuffer contents
func (r *Renderer) RenderFrame(ctx context.Context) (*image.RGBA, FrameStats, error) {
	stats, err := r.backend.RenderFrame(ctx, r.camera, r.fb)
	if err != nil {
		return nil, FrameStats{}, err
	}

	return r.fb.Image(), stats, nil
}

// Close releases the backend. The renderer is unusable afterwards.
func (r *Renderer) Close() error {
	return r.backend.Close()
}

// FrameRequest asks the render loop for one frame. Width and Height resize
// the framebuffer when both are positive; zero keeps the current size.
type FrameRequest struct {
	Camera scene.CameraConfig
	Width  int
	Height int
}

// FrameResult contains one completed frame
type FrameResult struct {
	Image *image.RGBA
	Stats FrameStats
}

// RenderFrames renders with channel-based communication (idiomatic Go).
// Frames are rendered from requests until the channel closes or ctx is
// cancelled. When requests arrive faster than frames complete, queued
// requests are collapsed and only the newest is traced, so an interactive
// caller never builds up a backlog of stale cameras.
//
// The loop owns the renderer's camera and framebuffer until both returned
// channels close. Closing the renderer remains the caller's job.
func (r *Renderer) RenderFrames(ctx context.Context, requests <-chan FrameRequest) (<-chan FrameResult, <-chan error) {
	resultChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(resultChan)
		defer close(errChan)

		r.logger.Printf("Starting render loop (%s backend)\n", r.backend.Name())

		for {
			var req FrameRequest
			select {
			case <-ctx.Done():
				r.logger.Printf("Render loop cancelled\n")
				errChan <- ctx.Err()
				return
			case next, ok := <-requests:
				if !ok {
					return
				}
				req = next
			}

			// Collapse queued requests so the frame reflects the newest camera
		collapse:
			for {
				select {
				case next, ok := <-requests:
					if !ok {
						break collapse
					}
					req = next
				default:
					break collapse
				}
			}

			r.SetCamera(req.Camera)
			if req.Width > 0 && req.Height > 0 {
				r.fb.Resize(req.Width, req.Height)
			}

			img, stats, err := r.RenderFrame(ctx)
			if err != nil {
				errChan <- err
				return
			}

			select {
			case resultChan <- FrameResult{Image: img, Stats: stats}:
			case <-ctx.Done():
				r.logger.Printf("Render loop cancelled\n")
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return resultChan, errChan
}
