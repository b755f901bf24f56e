// Package app is the windowed live viewer: an ebiten game that pumps
// camera poses from an arcball into the render loop and displays the
// frames coming back.
package app

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

const (
	windowTitle     = "realtime raytracer"
	minWindowWidth  = 800
	minWindowHeight = 600

	// Wheel zoom is scaled as if each tick arrived over one 60Hz frame
	zoomFrameTime = 1.0 / 60.0
)

var screenshotDir = filepath.Join("output", "screenshots")

// Run opens the viewer window and blocks until it is closed. The renderer
// is driven through its frame channel; Run owns neither and closes neither.
func Run(rend *renderer.Renderer, logger core.Logger) error {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan renderer.FrameRequest, 1)
	results, errs := rend.RenderFrames(ctx, requests)

	fb := rend.Framebuffer()
	sc := rend.Scene()
	game := &App{
		renderer: rend,
		logger:   logger,
		arcball:  NewArcball(sc.Camera, sc.Pivot, float64(fb.Width()), float64(fb.Height())),
		requests: requests,
		results:  results,
		errs:     errs,
		width:    fb.Width(),
		height:   fb.Height(),
	}

	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(fb.Width(), fb.Height())
	ebiten.SetWindowSizeLimits(minWindowWidth, minWindowHeight, -1, -1)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(game)
	cancel()
	close(requests)
	return err
}

// App implements ebiten.Game. Update polls input and exchanges frames with
// the render loop; Draw blits the latest frame. Both run on the same
// goroutine, so the frame fields need no locking.
type App struct {
	renderer *renderer.Renderer
	logger   core.Logger
	arcball  *Arcball

	requests chan renderer.FrameRequest
	results  <-chan renderer.FrameResult
	errs     <-chan error

	frame   *image.RGBA
	stats   renderer.FrameStats
	display *ebiten.Image

	width  int
	height int

	dragging bool
	prevX    float64
	prevY    float64
}

func (g *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.arcball.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.saveScreenshot()
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		g.arcball.Zoom(wheelY, zoomFrameTime)
	}
	g.handleDrag()

	// Request a frame for the current pose. If the loop is still busy the
	// send is skipped; next tick's request carries the newer pose anyway.
	select {
	case g.requests <- renderer.FrameRequest{
		Camera: g.arcball.Camera(),
		Width:  g.width,
		Height: g.height,
	}:
	default:
	}

	select {
	case result, ok := <-g.results:
		if ok {
			g.frame = result.Image
			g.stats = result.Stats
		} else {
			g.results = nil
		}
	case err, ok := <-g.errs:
		if ok {
			return fmt.Errorf("render loop: %w", err)
		}
		g.errs = nil
	default:
	}

	return nil
}

func (g *App) handleDrag() {
	cursorX, cursorY := ebiten.CursorPosition()
	x, y := float64(cursorX), float64(cursorY)

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	pan := right || (left && shift)
	rotate := left && !shift

	if !pan && !rotate {
		g.dragging = false
		return
	}

	if g.dragging {
		if pan {
			g.arcball.Pan(x-g.prevX, y-g.prevY)
		} else {
			g.arcball.Rotate(g.prevX, g.prevY, x, y)
		}
	}
	g.dragging = true
	g.prevX, g.prevY = x, y
}

func (g *App) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		ebitenutil.DebugPrint(screen, "rendering first frame...")
		return
	}

	bounds := g.frame.Bounds()
	if g.display == nil || g.display.Bounds() != bounds {
		if g.display != nil {
			g.display.Deallocate()
		}
		g.display = ebiten.NewImage(bounds.Dx(), bounds.Dy())
	}
	g.display.WritePixels(g.frame.Pix)

	// A frame rendered just before a resize may lag the window size for a
	// tick; scale it to cover the screen
	op := &ebiten.DrawImageOptions{}
	screenBounds := screen.Bounds()
	op.GeoM.Scale(
		float64(screenBounds.Dx())/float64(bounds.Dx()),
		float64(screenBounds.Dy())/float64(bounds.Dy()),
	)
	screen.DrawImage(g.display, op)

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%s  %dx%d  %.1fms  %.2f bounces/px\nleft drag rotate | right drag pan | wheel zoom | R reset | S screenshot | Esc quit",
		g.renderer.BackendName(),
		bounds.Dx(), bounds.Dy(),
		g.stats.Duration.Seconds()*1000,
		g.stats.AverageBounces,
	))
}

func (g *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.width = outsideWidth
		g.height = outsideHeight
		g.arcball.SetScreen(float64(outsideWidth), float64(outsideHeight))
	}
	return g.width, g.height
}

func (g *App) saveScreenshot() {
	if g.frame == nil {
		return
	}

	if err := os.MkdirAll(screenshotDir, 0755); err != nil {
		g.logger.Printf("Screenshot failed: %v\n", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(screenshotDir, fmt.Sprintf("screenshot_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		g.logger.Printf("Screenshot failed: %v\n", err)
		return
	}
	defer file.Close()

	if err := png.Encode(file, g.frame); err != nil {
		g.logger.Printf("Screenshot failed: %v\n", err)
		return
	}

	g.logger.Printf("Saved screenshot %s\n", filename)
}
