package renderer

import (
	"github.com/kiln-gfx/kiln/engine/renderer/pipeline"
	"github.com/kiln-gfx/kiln/engine/renderer/shader"
)

// BackendType identifies the GPU backend implementation used by the Renderer.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based graphics backend.
	BackendTypeWGPU BackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing. This is the default: the redraw loop
	// is paced by presentation, so one frame is drawn per display refresh.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Drawable is one presentable surface image backing the rendering surface for a
// single frame. A drawable that is acquired but never presented must be released
// so the surface can vend the next one.
type Drawable interface {
	// Release returns the drawable to the surface without presenting it.
	// Called when the frame is abandoned after acquisition.
	Release()
}

// PassDescriptor describes the render targets and load/store behavior for one
// frame's encoding. Vended fresh by the backend each frame with the current
// drawable bound as the color target.
type PassDescriptor interface{}

// Encoder records one frame's sequence of GPU drawing commands. After EndEncoding
// no further encoding calls are permitted.
type Encoder interface {
	// SetVertexBytes writes raw data into the vertex shader's input slot as inline
	// bytes for this frame only.
	//
	// Parameters:
	//   - data: the raw bytes to make visible to the vertex stage
	//   - slot: the vertex input slot (binding index) to write to
	SetVertexBytes(data []byte, slot uint32)

	// SetPipelineState binds the pipeline's compiled state to this encoder.
	//
	// Parameters:
	//   - p: the pipeline whose compiled state to bind
	SetPipelineState(p pipeline.Pipeline)

	// DrawPrimitives issues a draw call for a contiguous vertex range. The primitive
	// topology is part of the bound pipeline state, not a per-draw parameter.
	//
	// Parameters:
	//   - vertexStart: index of the first vertex to draw
	//   - vertexCount: number of vertices to draw
	DrawPrimitives(vertexStart, vertexCount uint32)

	// EndEncoding finalizes the encoder. No encoding calls are permitted afterwards.
	EndEncoding()
}

// CommandBuffer is one frame's ordered recording of GPU work, obtained from the
// command queue and submitted exactly once via Commit.
type CommandBuffer interface {
	// Present schedules the given drawable for presentation when this command
	// buffer's work completes. Must be called before Commit.
	//
	// Parameters:
	//   - d: the drawable to present
	Present(d Drawable)

	// Commit submits the command buffer to the queue for execution and performs
	// the scheduled presentation. The command buffer must not be used afterwards.
	Commit()

	// Release discards the command buffer without submitting it.
	// Called when the frame is abandoned after acquisition.
	Release()
}

// GraphicsBackend is the single capability boundary between the rendering host and
// the platform GPU API. Bootstrap capabilities return errors (unrecoverable
// configuration failures); per-frame acquisition capabilities return availability
// pairs (transient conditions that abandon only the current frame). Isolating the
// GPU API behind this interface keeps the per-frame state machine independent of
// wgpu and testable against a scripted fake.
type GraphicsBackend interface {
	// CreateDevice acquires the default GPU device. Fatal if no device is available.
	//
	// Returns:
	//   - error: an error if no GPU adapter or device can be acquired
	CreateDevice() error

	// CreateQueue creates the single command queue from the device. Fatal on failure.
	//
	// Returns:
	//   - error: an error if the queue could not be created
	CreateQueue() error

	// CompileLibrary compiles the shader library's source and resolves its named
	// entry points. Fatal if compilation fails or either entry point is absent.
	//
	// Parameters:
	//   - lib: the shader library to compile
	//
	// Returns:
	//   - error: an error if validation or compilation fails
	CompileLibrary(lib shader.Library) error

	// CreatePipelineState creates the immutable GPU pipeline from the given
	// descriptor, binding its color target to the surface's pixel format. The
	// surface must be configured first; surface and pipeline must agree on the
	// pixel format or presentation is undefined. Fatal on failure.
	//
	// Parameters:
	//   - p: the pipeline descriptor to compile; its compiled state is stored via SetState
	//
	// Returns:
	//   - error: an error if pipeline state creation fails
	CreatePipelineState(p pipeline.Pipeline) error

	// ConfigureSurface sizes the rendering surface to exactly the given pixel
	// dimensions. Called once at bootstrap and again on every window resize.
	// GPU resources other than the surface backing store are size-independent
	// and are not touched.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	ConfigureSurface(width, height int)

	// SurfaceSize reports the surface's current configured pixel dimensions.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	SurfaceSize() (int, int)

	// AcquireDrawable vends the surface's current presentable image.
	//
	// Returns:
	//   - Drawable: the presentable image for this frame
	//   - bool: false if no drawable is available yet (skip the frame)
	AcquireDrawable() (Drawable, bool)

	// AcquireCommandBuffer obtains a fresh command buffer from the queue.
	//
	// Returns:
	//   - CommandBuffer: the command buffer for this frame
	//   - bool: false if no command buffer could be obtained (skip the frame)
	AcquireCommandBuffer() (CommandBuffer, bool)

	// AcquirePassDescriptor vends the surface's render pass descriptor with the
	// given drawable bound as the color target.
	//
	// Parameters:
	//   - d: the drawable acquired for this frame
	//
	// Returns:
	//   - PassDescriptor: the pass descriptor for this frame
	//   - bool: false if no descriptor is available (skip the frame)
	AcquirePassDescriptor(d Drawable) (PassDescriptor, bool)

	// AcquireEncoder begins encoding a render pass on the command buffer using the
	// given pass descriptor.
	//
	// Parameters:
	//   - cb: the command buffer acquired for this frame
	//   - pd: the pass descriptor acquired for this frame
	//
	// Returns:
	//   - Encoder: the render command encoder for this frame
	//   - bool: false if the encoder could not be created (skip the frame)
	AcquireEncoder(cb CommandBuffer, pd PassDescriptor) (Encoder, bool)
}
