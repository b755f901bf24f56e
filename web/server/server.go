// Package server provides a web interface for the realtime raytracer.
// Renders are streamed to the browser frame by frame over Server-Sent
// Events while the camera orbits the scene.
package server

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

//go:embed index.html
var indexHTML []byte

// Server handles HTTP requests for the raytracer web interface.
type Server struct {
	port   int
	logger *ConsoleLogger
	mux    *http.ServeMux
}

// NewServer creates a new web server listening on the given port.
func NewServer(port int) *Server {
	s := &Server{
		port:   port,
		logger: NewConsoleLogger(),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/console", s.handleConsole)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	return s
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the server's routes for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleIndex serves the main page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth provides a health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes returns the list of available scenes as JSON.
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListScenes()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// RenderRequest holds the parsed parameters of an /api/render request.
type RenderRequest struct {
	Scene   string  `json:"scene"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Frames  int     `json:"frames"`
	Orbit   float64 `json:"orbit"`
	Workers int     `json:"workers"`
}

// parseRenderRequest extracts render parameters from the query string.
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()

	req := &RenderRequest{Scene: "default"}
	if name := query.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 640, 16, 1920); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 360, 16, 1080); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(query, "frames", 120, 1, 3600); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(query, "workers", 0, 0, 256); err != nil {
		return nil, err
	}
	// Orbit is the number of full turns spread across the frames.
	if req.Orbit, err = parseFloatParam(query, "orbit", 1.0, 0.0, 8.0); err != nil {
		return nil, err
	}

	return req, nil
}

// parseIntParam parses an integer query parameter with validation.
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	str := values.Get(key)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, str)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", key, min, max, value)
	}

	return value, nil
}

// parseFloatParam parses a float query parameter with validation.
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	str := values.Get(key)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, str)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("%s must be between %g and %g, got %g", key, min, max, value)
	}

	return value, nil
}

// setSSEHeaders configures the response for Server-Sent Events.
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// imageToBase64PNG encodes an image as a base64 PNG data string.
func imageToBase64PNG(img *image.RGBA) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
