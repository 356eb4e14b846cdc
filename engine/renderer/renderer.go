package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kiln-gfx/kiln/common"
	"github.com/kiln-gfx/kiln/engine/renderer/pipeline"
	"github.com/kiln-gfx/kiln/engine/window"
)

const (
	// scenePropertiesSlot is the vertex input slot reserved for per-frame scene
	// properties (time). Nothing is written to it yet; the slot number is held
	// here so the animation path has a fixed home when it is wired up.
	scenePropertiesSlot uint32 = 0

	// geometryVertexSlot is the vertex input slot the triangle geometry is
	// written to every frame.
	geometryVertexSlot uint32 = 1
)

// halfEdge is half the triangle's base width; the triangle is equilateral with
// unit-length sides, centered near the origin.
var halfEdge = float32(math.Sqrt(3)) / 4

// triangleVertices is the entire scene: one equilateral triangle with pure red,
// green, and blue corners. The vertex order defines the winding. The geometry is
// fixed for the process lifetime; every frame uploads these same three vertices.
var triangleVertices = [3]common.VertexInput{
	{
		Position: common.PackedFloat3{X: -halfEdge, Y: -0.25, Z: 0},
		Color:    common.PackedFloat3{X: 1, Y: 0, Z: 0},
	},
	{
		Position: common.PackedFloat3{X: halfEdge, Y: -0.25, Z: 0},
		Color:    common.PackedFloat3{X: 0, Y: 1, Z: 0},
	},
	{
		Position: common.PackedFloat3{X: 0, Y: 0.5, Z: 0},
		Color:    common.PackedFloat3{X: 0, Y: 0, Z: 1},
	},
}

// ErrAlreadyBootstrapped is returned when Bootstrap is invoked on a renderer
// that has already completed its one-time transition to the ready state.
var ErrAlreadyBootstrapped = errors.New("renderer is already bootstrapped")

// lifecycleState tracks the renderer's two-phase lifecycle: constructed with
// configuration only, then transitioned exactly once to holding live GPU
// resources.
type lifecycleState int

const (
	// stateUninitialized means only configuration is held; no GPU resources exist.
	stateUninitialized lifecycleState = iota

	// stateReady means device, queue, pipeline state, and surface are live.
	stateReady
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	state lifecycleState

	backendType BackendType
	backend     GraphicsBackend

	// pipe is the single render pipeline; its compiled state is created exactly
	// once during Bootstrap and bound unchanged by every frame.
	pipe pipeline.Pipeline

	clock *SceneClock

	// Pre-bootstrap config collected from builder options.
	windowTitle          string
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	clearColor           wgpu.Color
}

// Renderer is the rendering host's per-window draw coordinator. It owns the
// one-time pipeline bootstrap, the per-frame draw state machine, and the
// reconciliation of window resizes with the live surface. Draw and Resized
// satisfy window.FrameDelegate, so Bootstrap registers the renderer as the
// window's frame delegate.
type Renderer interface {
	window.FrameDelegate

	// Bootstrap performs the one-time transition from configuration to live GPU
	// resources: device, command queue, surface sized to the window's framebuffer,
	// compiled shader library, and the immutable pipeline state bound to the
	// surface's pixel format. It registers the renderer as the window's frame
	// delegate and centers and titles the window. Must be called on the thread
	// that owns the window, before any draw.
	//
	// Every failure here is an unrecoverable configuration or environment error
	// (no GPU, bad shader source, missing entry point); there is no degraded mode.
	//
	// Parameters:
	//   - win: the host window to render into
	//
	// Returns:
	//   - error: ErrAlreadyBootstrapped if called twice, or a descriptive fatal error
	Bootstrap(win window.Window) error

	// Pipeline returns the renderer's single pipeline descriptor. Its compiled
	// state is stable for the process lifetime once Bootstrap succeeds.
	//
	// Returns:
	//   - pipeline.Pipeline: the render pipeline
	Pipeline() pipeline.Pipeline

	// Clock returns the scene clock, the monotonically advancing time source
	// reserved for shader-side animation.
	//
	// Returns:
	//   - *SceneClock: the renderer's scene clock
	Clock() *SceneClock
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer in the uninitialized state, holding only
// configuration. GPU resources are created later by Bootstrap.
//
// Parameters:
//   - backendType: the type of graphics backend to use (e.g., WGPU)
//   - p: the pipeline descriptor to compile during Bootstrap
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new uninitialized Renderer
func NewRenderer(backendType BackendType, p pipeline.Pipeline, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		state:       stateUninitialized,
		backendType: backendType,
		pipe:        p,
		clock:       NewSceneClock(),
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Bootstrap(win window.Window) error {
	if r.state == stateReady {
		return ErrAlreadyBootstrapped
	}

	if r.backend == nil {
		presentMode := wgpu.PresentModeFifo
		if r.pendingPresentMode != nil && *r.pendingPresentMode == PresentModeUncapped {
			presentMode = wgpu.PresentModeImmediate
		}

		switch r.backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPUGraphicsBackend(win.SurfaceDescriptor(), backendConfig{
				forceFallbackAdapter: r.forceFallbackAdapter,
				presentMode:          presentMode,
				clearColor:           r.clearColor,
			})
		}
	}

	if err := r.backend.CreateDevice(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := r.backend.CreateQueue(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// The surface must be configured before the pipeline so the pipeline's color
	// target can be bound to the surface's pixel format.
	r.backend.ConfigureSurface(win.Width(), win.Height())

	if err := r.backend.CompileLibrary(r.pipe.Library()); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := r.backend.CreatePipelineState(r.pipe); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	win.SetFrameDelegate(r)
	if r.windowTitle != "" {
		win.SetTitle(r.windowTitle)
	}
	win.Center()

	r.clock.Reset()
	r.state = stateReady
	return nil
}

// Draw encodes and presents exactly one frame, or skips it entirely. Each
// acquisition step is an early-exit point: when a resource is unavailable the
// frame is abandoned with no partial submission, and the next redraw tick
// retries the full sequence from scratch. Commit happens only after every prior
// step succeeded.
func (r *renderer) Draw() {
	if r.state != stateReady {
		return
	}

	drawable, ok := r.backend.AcquireDrawable()
	if !ok {
		return
	}

	commandBuffer, ok := r.backend.AcquireCommandBuffer()
	if !ok {
		drawable.Release()
		return
	}

	passDescriptor, ok := r.backend.AcquirePassDescriptor(drawable)
	if !ok {
		commandBuffer.Release()
		drawable.Release()
		return
	}

	encoder, ok := r.backend.AcquireEncoder(commandBuffer, passDescriptor)
	if !ok {
		commandBuffer.Release()
		drawable.Release()
		return
	}

	// Slot 0 is reserved for scene properties (r.clock) and stays unwritten
	// until shader-side animation lands.
	encoder.SetVertexBytes(common.SliceToBytes(triangleVertices[:]), geometryVertexSlot)
	encoder.SetPipelineState(r.pipe)
	encoder.DrawPrimitives(0, uint32(len(triangleVertices)))
	encoder.EndEncoding()

	commandBuffer.Present(drawable)
	commandBuffer.Commit()
}

// Resized keeps the surface's pixel dimensions synchronized with the window's
// framebuffer. Only the surface backing store changes; device, queue, and
// pipeline state are size-independent and untouched.
func (r *renderer) Resized(width, height int) {
	if r.state != stateReady {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	return r.pipe
}

func (r *renderer) Clock() *SceneClock {
	return r.clock
}
