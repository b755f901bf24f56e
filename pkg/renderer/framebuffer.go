package renderer

import (
	"image"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
)

// Framebuffer is the off-screen RGBA8 color target the kernel writes into.
// Pixels are stored row-major, four bytes each, matching both image.RGBA
// and the byte layout display surfaces expect, so frames can be handed off
// without conversion.
//
// Set silently ignores out-of-bounds coordinates: the dispatch grid is
// rounded up to whole tiles and overshoots the buffer, so out-of-bounds
// writes are expected on edge tiles.
type Framebuffer struct {
	width  int
	height int
	pix    []uint8
}

// NewFramebuffer creates a framebuffer with the given dimensions.
// Dimensions must be positive; callers validate before dispatch.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the buffer width in pixels
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the buffer height in pixels
func (fb *Framebuffer) Height() int { return fb.height }

// Contains reports whether (x, y) addresses a pixel inside the buffer
func (fb *Framebuffer) Contains(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}

// Set writes a color at (x, y), quantized to 8-bit channels.
// Out-of-bounds coordinates are a no-op.
func (fb *Framebuffer) Set(x, y int, c core.Color) {
	if !fb.Contains(x, y) {
		return
	}
	r, g, b, a := c.RGBA8()
	offset := (y*fb.width + x) * 4
	fb.pix[offset] = r
	fb.pix[offset+1] = g
	fb.pix[offset+2] = b
	fb.pix[offset+3] = a
}

// At returns the stored bytes at (x, y), or zeros when out of bounds
func (fb *Framebuffer) At(x, y int) (r, g, b, a uint8) {
	if !fb.Contains(x, y) {
		return 0, 0, 0, 0
	}
	offset := (y*fb.width + x) * 4
	return fb.pix[offset], fb.pix[offset+1], fb.pix[offset+2], fb.pix[offset+3]
}

// Clear zeroes every pixel
func (fb *Framebuffer) Clear() {
	for i := range fb.pix {
		fb.pix[i] = 0
	}
}

// Resize reallocates the buffer for new dimensions, discarding contents.
// No-op when the dimensions are unchanged.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.width && height == fb.height {
		return
	}
	fb.width = width
	fb.height = height
	fb.pix = make([]uint8, width*height*4)
}

// Pix returns the raw RGBA byte slice. The slice aliases the buffer;
// callers must not hold it across a Resize.
func (fb *Framebuffer) Pix() []uint8 { return fb.pix }

// Image copies the buffer contents into a freshly allocated image.RGBA
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	copy(img.Pix, fb.pix)
	return img
}
