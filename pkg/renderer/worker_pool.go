package renderer

import (
	"runtime"
	"sync"
)

// TileTask carries one tile of one frame to a worker. The raytracer and
// framebuffer are shared across tasks within a frame: the raytracer is
// immutable and tiles never overlap, so workers need no synchronization.
type TileTask struct {
	Tile      Tile
	Raytracer *Raytracer
	Target    *Framebuffer
}

// TileResult reports a completed tile
type TileResult struct {
	TileID int
	Stats  TileStats
}

// WorkerPool renders tiles in parallel. It is started once and serves
// every frame until Stop; frames are delimited by the caller submitting
// all tiles and draining exactly that many results.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewWorkerPool creates a pool with the specified number of workers,
// defaulting to the CPU count when numWorkers is zero or negative.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		// Queues are buffered for scheduling slack only; correctness relies
		// on the submit goroutine and the draining caller, not capacity
		taskQueue:   make(chan TileTask, numWorkers*4),
		resultQueue: make(chan TileResult, numWorkers*4),
		numWorkers:  numWorkers,
	}
}

// Start launches the workers. Safe to call more than once.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.run()
		}
	})
}

// Stop shuts the workers down after in-flight tasks finish. The pool
// cannot be restarted.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
	})
}

// NumWorkers returns the worker count
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// RenderTiles renders one frame: all tiles are submitted, every result is
// drained, and the aggregated counters are returned. The pass always runs
// to completion once started; cancellation happens between frames.
func (wp *WorkerPool) RenderTiles(tiles []Tile, rt *Raytracer, fb *Framebuffer) TileStats {
	// Submit from a separate goroutine so draining can begin immediately;
	// submitting everything first would deadlock once both queues fill
	go func() {
		for _, tile := range tiles {
			wp.taskQueue <- TileTask{Tile: tile, Raytracer: rt, Target: fb}
		}
	}()

	var total TileStats
	for i := 0; i < len(tiles); i++ {
		result := <-wp.resultQueue
		total.add(result.Stats)
	}

	return total
}

// run is the worker loop
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		stats := task.Raytracer.RenderBounds(task.Tile.Bounds, task.Target)
		wp.resultQueue <- TileResult{TileID: task.Tile.ID, Stats: stats}
	}
}
