package renderer

import (
	"image"
)

// DefaultTileSize is the scheduling granularity for the CPU worker pool.
// Tile size is a tuning parameter with no effect on output: every pixel is
// traced independently and the kernel guards the buffer bounds.
const DefaultTileSize = 64

// Tile is one rectangle of the dispatch grid
type Tile struct {
	ID     int
	Bounds image.Rectangle
}

// NewTileGrid covers a width x height buffer with tileSize tiles, rounding
// the grid up by ceiling division. Edge tiles keep their full size rather
// than clamping to the buffer, so the dispatch overshoots exactly like an
// over-dispatched compute grid and the kernel's bounds guard does the
// clipping.
func NewTileGrid(width, height, tileSize int) []Tile {
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	tileID := 0

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			bounds := image.Rect(x0, y0, x0+tileSize, y0+tileSize)
			tiles = append(tiles, Tile{ID: tileID, Bounds: bounds})
			tileID++
		}
	}

	return tiles
}

// RenderBounds runs the kernel for every coordinate in the given bounds,
// including coordinates past the buffer edge, which the kernel rejects.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, fb *Framebuffer) TileStats {
	var stats TileStats

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			bounces, wrote := rt.TracePixel(x, y, fb)
			if !wrote {
				continue
			}
			stats.Pixels++
			stats.Rays += bounces + 1 // the camera ray plus one per reflection
			stats.Bounces += bounces
		}
	}

	return stats
}
