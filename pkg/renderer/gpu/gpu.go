// Package gpu renders frames on an OpenGL 4.3 compute pipeline. The kernel
// is the same bounce loop the CPU backend runs, compiled as a compute
// shader dispatched in 8x8 workgroups with the grid rounded up past the
// framebuffer edge; a bounds guard in the shader clips the overshoot.
package gpu

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/kinnison/go-realtime-raytracer/pkg/core"
	"github.com/kinnison/go-realtime-raytracer/pkg/geometry"
	"github.com/kinnison/go-realtime-raytracer/pkg/renderer"
	"github.com/kinnison/go-realtime-raytracer/pkg/scene"
)

// workgroupSize is the compute shader's local size in both dimensions.
// Must match local_size_x and local_size_y in the shader source.
const workgroupSize = 8

// ErrClosed is returned by RenderFrame after Close has been called
var ErrClosed = errors.New("gpu backend closed")

// sphereStride is the number of floats per sphere in the scene buffer:
// center.xyz, radius, color.rgba. Must match SPHERE_STRIDE in the shader.
const sphereStride = 8

var _ renderer.Backend = (*Backend)(nil)

// Backend implements renderer.Backend on a dedicated GL worker goroutine.
// OpenGL contexts are bound to one OS thread, so every GL call happens on
// the worker; callers talk to it over a request channel.
type Backend struct {
	logger    core.Logger
	requests  chan frameRequest
	closed    chan struct{}
	closeOnce sync.Once
}

type frameRequest struct {
	cam  scene.CameraConfig
	fb   *renderer.Framebuffer
	done chan frameResult
}

type frameResult struct {
	rays    int
	bounces int
	err     error
}

// New creates a GPU backend for the given scene: it starts the GL worker,
// creates a hidden window for the context, compiles the kernel, and
// uploads the sphere list. The scene is fixed for the backend's lifetime.
func New(sc *scene.Scene, config renderer.Config, logger core.Logger) (*Backend, error) {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	maxBounces := config.MaxBounces
	if maxBounces <= 0 {
		maxBounces = renderer.DefaultMaxBounces
	}

	b := &Backend{
		logger:   logger,
		requests: make(chan frameRequest),
		closed:   make(chan struct{}),
	}

	initErr := make(chan error, 1)
	go b.run(packSpheres(sc.Spheres), maxBounces, initErr)

	if err := <-initErr; err != nil {
		return nil, fmt.Errorf("gpu backend init: %w", err)
	}

	logger.Printf("GPU backend initialized (%d spheres, %d bounce budget)\n",
		len(sc.Spheres), maxBounces)

	return b, nil
}

// Name identifies the backend in logs
func (b *Backend) Name() string {
	return "gpu"
}

// RenderFrame dispatches one compute pass and blocks until the filled
// framebuffer has been read back. ctx is only consulted before the pass is
// submitted; a dispatched pass always runs to completion.
func (b *Backend) RenderFrame(ctx context.Context, cam scene.CameraConfig, fb *renderer.Framebuffer) (renderer.FrameStats, error) {
	select {
	case <-ctx.Done():
		return renderer.FrameStats{}, ctx.Err()
	default:
	}

	startTime := time.Now()
	done := make(chan frameResult, 1)

	select {
	case b.requests <- frameRequest{cam: cam, fb: fb, done: done}:
	case <-b.closed:
		return renderer.FrameStats{}, ErrClosed
	}

	result := <-done
	if result.err != nil {
		return renderer.FrameStats{}, result.err
	}

	return renderer.FrameStats{
		TotalPixels:    fb.Width() * fb.Height(),
		TotalRays:      result.rays,
		TotalBounces:   result.bounces,
		AverageBounces: float64(result.bounces) / float64(fb.Width()*fb.Height()),
		Duration:       time.Since(startTime),
		Workers:        1,
	}, nil
}

// Close shuts the GL worker down and releases the context
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
	return nil
}

// run owns the GL context. It must be the only goroutine making GL calls,
// and it stays locked to its OS thread for the backend's lifetime.
func (b *Backend) run(sphereData []float32, maxBounces int, initErr chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	state, err := initGL(sphereData, maxBounces)
	initErr <- err
	if err != nil {
		return
	}
	defer state.destroy()

	for {
		select {
		case <-b.closed:
			return
		case req := <-b.requests:
			rays, bounces, err := state.renderFrame(req.cam, req.fb)
			req.done <- frameResult{rays: rays, bounces: bounces, err: err}
		}
	}
}

// glState holds the GL objects owned by the worker goroutine
type glState struct {
	window     *glfw.Window
	program    uint32
	texture    uint32
	sphereSSBO uint32
	statsSSBO  uint32
	camUBO     uint32

	locWidth      int32
	locHeight     int32
	locMaxBounces int32

	maxBounces int
	width      int
	height     int
}

// initGL creates the hidden context window, compiles the kernel, and
// uploads the immutable sphere buffer. Must run on the locked worker
// thread.
func initGL(sphereData []float32, maxBounces int) (*glState, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(1, 1, "raytracer-gpu-hidden", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("glfw create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	shader, err := compileShader(kernelSource, gl.COMPUTE_SHADER)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("compile kernel: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &infoLog[0])
		window.Destroy()
		return nil, fmt.Errorf("link kernel program: %s", string(infoLog))
	}
	gl.DeleteShader(shader)

	state := &glState{
		window:     window,
		program:    program,
		maxBounces: maxBounces,
	}

	gl.GenTextures(1, &state.texture)
	gl.BindTexture(gl.TEXTURE_2D, state.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.GenBuffers(1, &state.sphereSSBO)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, state.sphereSSBO)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(sphereData)*4, gl.Ptr(sphereData), gl.STATIC_DRAW)

	gl.GenBuffers(1, &state.statsSSBO)
	gl.GenBuffers(1, &state.camUBO)

	state.locWidth = gl.GetUniformLocation(program, gl.Str("uWidth\x00"))
	state.locHeight = gl.GetUniformLocation(program, gl.Str("uHeight\x00"))
	state.locMaxBounces = gl.GetUniformLocation(program, gl.Str("uMaxBounces\x00"))

	return state, nil
}

// renderFrame uploads the per-frame camera, dispatches the grid, and reads
// the texture back into the framebuffer. Returns the kernel's ray and
// bounce counters.
func (s *glState) renderFrame(cam scene.CameraConfig, fb *renderer.Framebuffer) (int, int, error) {
	width, height := fb.Width(), fb.Height()

	if width != s.width || height != s.height {
		s.width = width
		s.height = height
		gl.BindTexture(gl.TEXTURE_2D, s.texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}

	camBlock := packCamera(cam)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, 2, s.camUBO)
	gl.BufferData(gl.UNIFORM_BUFFER, len(camBlock)*4, gl.Ptr(camBlock[:]), gl.DYNAMIC_DRAW)

	counters := [2]uint32{}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 3, s.statsSSBO)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(counters)*4, gl.Ptr(&counters[0]), gl.DYNAMIC_DRAW)

	gl.UseProgram(s.program)
	gl.BindImageTexture(0, s.texture, 0, false, 0, gl.WRITE_ONLY, gl.RGBA8)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, s.sphereSSBO)

	gl.Uniform1i(s.locWidth, int32(width))
	gl.Uniform1i(s.locHeight, int32(height))
	gl.Uniform1i(s.locMaxBounces, int32(s.maxBounces))

	groupsX, groupsY := dispatchGroups(width, height)
	gl.DispatchCompute(uint32(groupsX), uint32(groupsY), 1)
	gl.MemoryBarrier(gl.TEXTURE_UPDATE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(fb.Pix()))

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, s.statsSSBO)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(counters)*4, gl.Ptr(&counters[0]))

	return int(counters[0]), int(counters[1]), nil
}

// destroy releases the GL objects and the context window
func (s *glState) destroy() {
	gl.DeleteBuffers(1, &s.camUBO)
	gl.DeleteBuffers(1, &s.statsSSBO)
	gl.DeleteBuffers(1, &s.sphereSSBO)
	gl.DeleteTextures(1, &s.texture)
	gl.DeleteProgram(s.program)
	s.window.Destroy()
}

// dispatchGroups rounds the workgroup grid up so the dispatch covers the
// whole framebuffer; the shader's bounds guard clips the overshoot
func dispatchGroups(width, height int) (int, int) {
	return (width + workgroupSize - 1) / workgroupSize,
		(height + workgroupSize - 1) / workgroupSize
}

// packSpheres flattens the sphere list into the std430 layout the shader
// reads: center.xyz, radius, color.rgba per sphere
func packSpheres(spheres []geometry.Sphere) []float32 {
	if len(spheres) == 0 {
		// A zero-length SSBO upsets some drivers; one zeroed slot renders
		// as no spheres because the kernel skips non-positive radii
		return make([]float32, sphereStride)
	}

	data := make([]float32, 0, len(spheres)*sphereStride)
	for _, sphere := range spheres {
		data = append(data,
			float32(sphere.Center.X), float32(sphere.Center.Y), float32(sphere.Center.Z),
			float32(sphere.Radius),
			float32(sphere.Color.R), float32(sphere.Color.G), float32(sphere.Color.B),
			float32(sphere.Color.A),
		)
	}
	return data
}

// packCamera lays the camera vectors out as three std140 vec4s
func packCamera(cam scene.CameraConfig) [12]float32 {
	return [12]float32{
		float32(cam.Origin.X), float32(cam.Origin.Y), float32(cam.Origin.Z), 0,
		float32(cam.LookDir.X), float32(cam.LookDir.Y), float32(cam.LookDir.Z), 0,
		float32(cam.Up.X), float32(cam.Up.Y), float32(cam.Up.Z), 0,
	}
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &infoLog[0])
		return 0, fmt.Errorf("shader compile: %s", string(infoLog))
	}
	return shader, nil
}
