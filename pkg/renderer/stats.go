package renderer

import "time"

// TileStats accumulates kernel counters for one tile
type TileStats struct {
	Pixels  int // pixels written (in-bounds invocations)
	Rays    int // rays traced, including each camera ray
	Bounces int // reflections taken
}

// add merges another tile's counters
func (ts *TileStats) add(other TileStats) {
	ts.Pixels += other.Pixels
	ts.Rays += other.Rays
	ts.Bounces += other.Bounces
}

// FrameStats describes one completed render pass
type FrameStats struct {
	TotalPixels    int           // pixels written this frame
	TotalRays      int           // rays traced this frame
	TotalBounces   int           // reflections taken this frame
	AverageBounces float64       // reflections per pixel
	Duration       time.Duration // wall-clock pass time
	Workers        int           // workers that rendered the pass
}

// newFrameStats finalizes aggregated tile counters into frame statistics
func newFrameStats(tiles TileStats, duration time.Duration, workers int) FrameStats {
	stats := FrameStats{
		TotalPixels:  tiles.Pixels,
		TotalRays:    tiles.Rays,
		TotalBounces: tiles.Bounces,
		Duration:     duration,
		Workers:      workers,
	}
	if stats.TotalPixels > 0 {
		stats.AverageBounces = float64(stats.TotalBounces) / float64(stats.TotalPixels)
	}
	return stats
}
