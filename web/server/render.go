package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/kinnison/go-realtime-raytracer/pkg/renderer"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// SSEEvent pairs an event name with its payload for the stream writer.
type SSEEvent struct {
	Type string
	Data string
}

// FrameUpdate is one rendered orbit frame pushed to the client.
type FrameUpdate struct {
	FrameNumber int    `json:"frameNumber"`
	TotalFrames int    `json:"totalFrames"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats carries per-frame render statistics to the client.
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalRays      int     `json:"totalRays"`
	TotalBounces   int     `json:"totalBounces"`
	AverageBounces float64 `json:"averageBounces"`
	RenderMs       float64 `json:"renderMs"`
	Workers        int     `json:"workers"`
}

func newStats(fs renderer.FrameStats) Stats {
	return Stats{
		TotalPixels:    fs.TotalPixels,
		TotalRays:      fs.TotalRays,
		TotalBounces:   fs.TotalBounces,
		AverageBounces: fs.AverageBounces,
		RenderMs:       float64(fs.Duration.Microseconds()) / 1000.0,
		Workers:        fs.Workers,
	}
}

// handleRender streams an orbiting render of the requested scene as SSE
// frame events, finishing with a done event.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	// All events funnel through one channel so a single goroutine owns
	// the response writer.
	events := make(chan SSEEvent, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, w, events)
	}()

	s.streamRender(ctx, r, events)

	close(events)
	<-writerDone
}

// streamRender renders the orbit sequence, queueing one frame event per
// rendered frame.
func (s *Server) streamRender(ctx context.Context, r *http.Request, events chan<- SSEEvent) {
	req, err := parseRenderRequest(r)
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sc, err := scene.Resolve(req.Scene)
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Failed to load scene: %v", err)})
		return
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = req.Workers

	rend, err := renderer.NewRenderer(sc, req.Width, req.Height, config, s.logger)
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Failed to create renderer: %v", err)})
		return
	}
	defer rend.Close()

	s.logger.Printf("Rendering %d orbit frames of %s scene at %dx%d\n",
		req.Frames, sc.Name, req.Width, req.Height)

	startTime := time.Now()
	for frame := 0; frame < req.Frames; frame++ {
		angle := 2 * math.Pi * req.Orbit * float64(frame) / float64(req.Frames)
		rend.SetCamera(scene.Orbit(sc.Camera, sc.Pivot, angle))

		img, stats, err := rend.RenderFrame(ctx)
		if err != nil {
			sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Render failed: %v", err)})
			return
		}

		imageData, err := imageToBase64PNG(img)
		if err != nil {
			sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Failed to encode frame: %v", err)})
			return
		}

		update := FrameUpdate{
			FrameNumber: frame + 1,
			TotalFrames: req.Frames,
			ImageData:   imageData,
			Stats:       newStats(stats),
			ElapsedMs:   time.Since(startTime).Milliseconds(),
		}
		data, err := json.Marshal(update)
		if err != nil {
			sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Failed to encode update: %v", err)})
			return
		}

		if !sendEvent(ctx, events, SSEEvent{Type: "frame", Data: string(data)}) {
			s.logger.Printf("Client disconnected after frame %d\n", frame+1)
			return
		}
	}

	s.logger.Printf("Completed %d frames in %v\n", req.Frames, time.Since(startTime).Round(time.Millisecond))
	sendEvent(ctx, events, SSEEvent{Type: "done", Data: "Rendering completed"})
}

// sendEvent queues one event, reporting false when the client is gone.
func sendEvent(ctx context.Context, events chan<- SSEEvent, event SSEEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// writeSSEEvents drains the event channel onto the response writer until
// the channel closes or the client disconnects.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, canFlush := w.(http.Flusher)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}
