package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kiln-gfx/kiln/engine/renderer/pipeline"
	"github.com/kiln-gfx/kiln/engine/renderer/shader"
)

// backendConfig carries pre-bootstrap configuration collected from renderer
// builder options into the backend constructor.
type backendConfig struct {
	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	clearColor           wgpu.Color
}

// wgpuGraphicsBackend is the WebGPU implementation of the GraphicsBackend interface.
// All resource creation and per-frame encoding runs on the thread that owns the
// window; the mutex only guards surface reconfiguration against the cached pass
// descriptor, matching how the surface is the sole post-bootstrap mutable.
type wgpuGraphicsBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	clearColor           wgpu.Color

	surfaceFormat *wgpu.TextureFormat
	surfaceWidth  int
	surfaceHeight int

	// Cached render pass descriptor; the color attachment view is patched to the
	// current drawable each frame.
	passDescriptor *wgpu.RenderPassDescriptor

	// Compiled shader library state.
	module        *wgpu.ShaderModule
	vertexEntry   string
	fragmentEntry string

	// Per-slot storage buffers backing the vertex shader's input slots, plus the
	// bind group exposing them at group 0. The bind group is rebuilt whenever a
	// slot buffer is created or grown.
	bindGroupLayout *wgpu.BindGroupLayout
	slotBuffers     map[uint32]*wgpu.Buffer
	slotSizes       map[uint32]uint64
	slotBindGroup   *wgpu.BindGroup
}

var _ GraphicsBackend = &wgpuGraphicsBackend{}

// newWGPUGraphicsBackend creates the WebGPU instance and surface for the given
// platform surface descriptor. Device, queue, and pipeline resources are created
// later by the bootstrap sequence through the GraphicsBackend capability methods.
func newWGPUGraphicsBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, cfg backendConfig) GraphicsBackend {
	runtime.LockOSThread()
	b := &wgpuGraphicsBackend{
		mu:                   &sync.Mutex{},
		instance:             wgpu.CreateInstance(nil),
		forceFallbackAdapter: cfg.forceFallbackAdapter,
		presentMode:          cfg.presentMode,
		clearColor:           cfg.clearColor,
		slotBuffers:          make(map[uint32]*wgpu.Buffer),
		slotSizes:            make(map[uint32]uint64),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	return b
}

func (b *wgpuGraphicsBackend) CreateDevice() error {
	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("no compatible GPU adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to acquire GPU device: %w", err)
	}
	b.device = device
	return nil
}

func (b *wgpuGraphicsBackend) CreateQueue() error {
	if b.device == nil {
		return errors.New("cannot create command queue before device")
	}
	b.queue = b.device.GetQueue()
	if b.queue == nil {
		return errors.New("failed to create command queue")
	}
	return nil
}

func (b *wgpuGraphicsBackend) CompileLibrary(lib shader.Library) error {
	if err := lib.Validate(); err != nil {
		return err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: lib.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: lib.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile shader library %q: %w", lib.Key(), err)
	}

	b.module = module
	b.vertexEntry = lib.VertexEntry()
	b.fragmentEntry = lib.FragmentEntry()
	return nil
}

func (b *wgpuGraphicsBackend) CreatePipelineState(p pipeline.Pipeline) error {
	if b.surfaceFormat == nil {
		return errors.New("cannot create pipeline state before the surface is configured")
	}
	if b.module == nil {
		return errors.New("cannot create pipeline state before the shader library is compiled")
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: p.PipelineKey() + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    geometryVertexSlot,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	b.bindGroupLayout = layout

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	// The color target format must match the surface's pixel format, or
	// presentation is undefined.
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.module,
			EntryPoint: b.vertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.module,
			EntryPoint: b.fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline state %q: %w", p.PipelineKey(), err)
	}

	p.SetState(created)
	return nil
}

func (b *wgpuGraphicsBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.surfaceWidth = width
	b.surfaceHeight = height

	// The color attachment view is nil here; AcquirePassDescriptor patches in the
	// current drawable's view each frame.
	b.passDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	}
}

func (b *wgpuGraphicsBackend) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceWidth, b.surfaceHeight
}

func (b *wgpuGraphicsBackend) AcquireDrawable() (Drawable, bool) {
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// Expected while the surface is initializing or the window is minimized;
		// the next redraw tick retries from scratch.
		return nil, false
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, false
	}

	return &wgpuDrawable{texture: surfaceTexture, view: view}, true
}

func (b *wgpuGraphicsBackend) AcquireCommandBuffer() (CommandBuffer, bool) {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, false
	}
	return &wgpuCommandBuffer{backend: b, encoder: encoder}, true
}

func (b *wgpuGraphicsBackend) AcquirePassDescriptor(d Drawable) (PassDescriptor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.passDescriptor == nil {
		return nil, false
	}
	drawable, ok := d.(*wgpuDrawable)
	if !ok || drawable.view == nil {
		return nil, false
	}
	b.passDescriptor.ColorAttachments[0].View = drawable.view
	return b.passDescriptor, true
}

func (b *wgpuGraphicsBackend) AcquireEncoder(cb CommandBuffer, pd PassDescriptor) (Encoder, bool) {
	commandBuffer, ok := cb.(*wgpuCommandBuffer)
	if !ok {
		return nil, false
	}
	descriptor, ok := pd.(*wgpu.RenderPassDescriptor)
	if !ok {
		return nil, false
	}

	pass := commandBuffer.encoder.BeginRenderPass(descriptor)
	if pass == nil {
		return nil, false
	}
	return &wgpuEncoder{backend: b, pass: pass}, true
}

// ensureSlotBuffer creates or grows the storage buffer backing a vertex input
// slot. Growing invalidates the cached bind group.
func (b *wgpuGraphicsBackend) ensureSlotBuffer(slot uint32, size uint64) (*wgpu.Buffer, error) {
	if buf, exists := b.slotBuffers[slot]; exists && b.slotSizes[slot] >= size {
		return buf, nil
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Vertex Slot %d Buffer", slot),
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	if old, exists := b.slotBuffers[slot]; exists {
		old.Release()
	}
	b.slotBuffers[slot] = buf
	b.slotSizes[slot] = size

	if b.slotBindGroup != nil {
		b.slotBindGroup.Release()
		b.slotBindGroup = nil
	}
	return buf, nil
}

// slotBindGroupFor returns the bind group exposing the slot buffers at group 0,
// rebuilding it if a slot buffer changed since the last frame.
func (b *wgpuGraphicsBackend) slotBindGroupFor() (*wgpu.BindGroup, error) {
	if b.slotBindGroup != nil {
		return b.slotBindGroup, nil
	}

	slots := make([]uint32, 0, len(b.slotBuffers))
	for slot := range b.slotBuffers {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	entries := make([]wgpu.BindGroupEntry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: slot,
			Buffer:  b.slotBuffers[slot],
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Vertex Slot Bind Group",
		Layout:  b.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	b.slotBindGroup = bindGroup
	return bindGroup, nil
}

// wgpuDrawable is one acquired surface texture and its view for a single frame.
type wgpuDrawable struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (d *wgpuDrawable) Release() {
	if d.view != nil {
		d.view.Release()
		d.view = nil
	}
	if d.texture != nil {
		d.texture.Release()
		d.texture = nil
	}
}

// wgpuCommandBuffer wraps one frame's command encoder. Commit finishes the
// recording, submits it to the queue, and presents the scheduled drawable.
type wgpuCommandBuffer struct {
	backend  *wgpuGraphicsBackend
	encoder  *wgpu.CommandEncoder
	drawable *wgpuDrawable
}

func (c *wgpuCommandBuffer) Present(d Drawable) {
	if drawable, ok := d.(*wgpuDrawable); ok {
		c.drawable = drawable
	}
}

func (c *wgpuCommandBuffer) Commit() {
	commandBuffer, err := c.encoder.Finish(nil)
	if err != nil {
		c.Release()
		if c.drawable != nil {
			c.drawable.Release()
			c.drawable = nil
		}
		return
	}

	c.backend.queue.Submit(commandBuffer)
	commandBuffer.Release()
	c.encoder.Release()
	c.encoder = nil

	// Presentation was scheduled by Present; the surface presents the image the
	// submitted work rendered into.
	if c.drawable != nil {
		c.backend.surface.Present()
		c.drawable.Release()
		c.drawable = nil
	}
}

func (c *wgpuCommandBuffer) Release() {
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
}

// wgpuEncoder wraps one frame's render pass encoder.
type wgpuEncoder struct {
	backend *wgpuGraphicsBackend
	pass    *wgpu.RenderPassEncoder
}

func (e *wgpuEncoder) SetVertexBytes(data []byte, slot uint32) {
	buf, err := e.backend.ensureSlotBuffer(slot, uint64(len(data)))
	if err != nil {
		return
	}
	e.backend.queue.WriteBuffer(buf, 0, data)

	bindGroup, err := e.backend.slotBindGroupFor()
	if err != nil {
		return
	}
	e.pass.SetBindGroup(0, bindGroup, nil)
}

func (e *wgpuEncoder) SetPipelineState(p pipeline.Pipeline) {
	e.pass.SetPipeline(p.State())
}

func (e *wgpuEncoder) DrawPrimitives(vertexStart, vertexCount uint32) {
	e.pass.Draw(vertexCount, 1, vertexStart, 0)
}

func (e *wgpuEncoder) EndEncoding() {
	e.pass.End()
}
