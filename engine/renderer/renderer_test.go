package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kiln-gfx/kiln/common"
	"github.com/kiln-gfx/kiln/engine/renderer/pipeline"
	"github.com/kiln-gfx/kiln/engine/renderer/shader"
	"github.com/kiln-gfx/kiln/engine/window"
	"github.com/stretchr/testify/assert"
)

// fakeBackend is a scripted GraphicsBackend that records every capability call
// in order and can be told to fail at any bootstrap or acquisition step.
type fakeBackend struct {
	log []string

	deviceErr   error
	queueErr    error
	compileErr  error
	pipelineErr error

	failDrawable       bool
	failCommandBuffer  bool
	failPassDescriptor bool
	failEncoder        bool

	pipelineCreations int
	configuredSizes   [][2]int
	width, height     int

	commits         int
	presented       []Drawable
	vertexUploads   [][]byte
	vertexSlots     []uint32
	boundStates     []*wgpu.RenderPipeline
	drawCalls       [][2]uint32
	drawableReleases      int
	commandBufferReleases int
}

func (f *fakeBackend) CreateDevice() error {
	f.log = append(f.log, "CreateDevice")
	return f.deviceErr
}

func (f *fakeBackend) CreateQueue() error {
	f.log = append(f.log, "CreateQueue")
	return f.queueErr
}

func (f *fakeBackend) CompileLibrary(lib shader.Library) error {
	f.log = append(f.log, "CompileLibrary")
	if f.compileErr != nil {
		return f.compileErr
	}
	return lib.Validate()
}

func (f *fakeBackend) CreatePipelineState(p pipeline.Pipeline) error {
	f.log = append(f.log, "CreatePipelineState")
	if f.pipelineErr != nil {
		return f.pipelineErr
	}
	f.pipelineCreations++
	p.SetState(&wgpu.RenderPipeline{})
	return nil
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.log = append(f.log, "ConfigureSurface")
	f.configuredSizes = append(f.configuredSizes, [2]int{width, height})
	f.width, f.height = width, height
}

func (f *fakeBackend) SurfaceSize() (int, int) {
	return f.width, f.height
}

func (f *fakeBackend) AcquireDrawable() (Drawable, bool) {
	f.log = append(f.log, "AcquireDrawable")
	if f.failDrawable {
		return nil, false
	}
	return &fakeDrawable{backend: f}, true
}

func (f *fakeBackend) AcquireCommandBuffer() (CommandBuffer, bool) {
	f.log = append(f.log, "AcquireCommandBuffer")
	if f.failCommandBuffer {
		return nil, false
	}
	return &fakeCommandBuffer{backend: f}, true
}

func (f *fakeBackend) AcquirePassDescriptor(d Drawable) (PassDescriptor, bool) {
	f.log = append(f.log, "AcquirePassDescriptor")
	if f.failPassDescriptor {
		return nil, false
	}
	return struct{}{}, true
}

func (f *fakeBackend) AcquireEncoder(cb CommandBuffer, pd PassDescriptor) (Encoder, bool) {
	f.log = append(f.log, "AcquireEncoder")
	if f.failEncoder {
		return nil, false
	}
	return &fakeEncoder{backend: f}, true
}

type fakeDrawable struct {
	backend *fakeBackend
}

func (d *fakeDrawable) Release() {
	d.backend.drawableReleases++
	d.backend.log = append(d.backend.log, "Drawable.Release")
}

type fakeCommandBuffer struct {
	backend *fakeBackend
}

func (c *fakeCommandBuffer) Present(d Drawable) {
	c.backend.log = append(c.backend.log, "Present")
	c.backend.presented = append(c.backend.presented, d)
}

func (c *fakeCommandBuffer) Commit() {
	c.backend.log = append(c.backend.log, "Commit")
	c.backend.commits++
}

func (c *fakeCommandBuffer) Release() {
	c.backend.commandBufferReleases++
	c.backend.log = append(c.backend.log, "CommandBuffer.Release")
}

type fakeEncoder struct {
	backend *fakeBackend
}

func (e *fakeEncoder) SetVertexBytes(data []byte, slot uint32) {
	e.backend.log = append(e.backend.log, "SetVertexBytes")
	buf := make([]byte, len(data))
	copy(buf, data)
	e.backend.vertexUploads = append(e.backend.vertexUploads, buf)
	e.backend.vertexSlots = append(e.backend.vertexSlots, slot)
}

func (e *fakeEncoder) SetPipelineState(p pipeline.Pipeline) {
	e.backend.log = append(e.backend.log, "SetPipelineState")
	e.backend.boundStates = append(e.backend.boundStates, p.State())
}

func (e *fakeEncoder) DrawPrimitives(vertexStart, vertexCount uint32) {
	e.backend.log = append(e.backend.log, "DrawPrimitives")
	e.backend.drawCalls = append(e.backend.drawCalls, [2]uint32{vertexStart, vertexCount})
}

func (e *fakeEncoder) EndEncoding() {
	e.backend.log = append(e.backend.log, "EndEncoding")
}

// fakeWindow satisfies window.Window for bootstrap tests.
type fakeWindow struct {
	width, height int
	title         string
	centered      bool
	delegate      window.FrameDelegate
}

func (w *fakeWindow) SetFrameDelegate(d window.FrameDelegate) { w.delegate = d }
func (w *fakeWindow) SetUpdateCallback(func())                {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}
func (w *fakeWindow) Title() string         { return w.title }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) Center()               { w.centered = true }
func (w *fakeWindow) IsRunning() bool       { return false }
func (w *fakeWindow) Close() error          { return nil }
func (w *fakeWindow) ProcessEvents()        {}
func (w *fakeWindow) Width() int            { return w.width }
func (w *fakeWindow) Height() int           { return w.height }

// newTestRenderer builds a renderer wired to a fake backend and bootstraps it
// against a fake 800x600 window.
func newTestRenderer(t *testing.T) (*renderer, *fakeBackend, *fakeWindow) {
	t.Helper()
	backend := &fakeBackend{}
	p := pipeline.NewPipeline("triangle", shader.Triangle())
	r := NewRenderer(BackendTypeWGPU, p).(*renderer)
	r.backend = backend

	win := &fakeWindow{width: 800, height: 600}
	assert.NoError(t, r.Bootstrap(win))
	return r, backend, win
}

func TestBootstrapTransitionsToReady(t *testing.T) {
	r, backend, win := newTestRenderer(t)

	assert.Equal(t, stateReady, r.state)
	assert.Equal(t, 1, backend.pipelineCreations)
	assert.NotNil(t, r.Pipeline().State())
	assert.Same(t, r, win.delegate)
	assert.True(t, win.centered)

	// Surface configured to the window's framebuffer before pipeline creation.
	assert.Equal(t, [][2]int{{800, 600}}, backend.configuredSizes)
	assert.Equal(t,
		[]string{"CreateDevice", "CreateQueue", "ConfigureSurface", "CompileLibrary", "CreatePipelineState"},
		backend.log)
}

func TestBootstrapTwiceFails(t *testing.T) {
	r, _, win := newTestRenderer(t)
	assert.ErrorIs(t, r.Bootstrap(win), ErrAlreadyBootstrapped)
}

func TestBootstrapFatalSteps(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(b *fakeBackend)
	}{
		{"device unavailable", func(b *fakeBackend) { b.deviceErr = errors.New("no adapter") }},
		{"queue creation fails", func(b *fakeBackend) { b.queueErr = errors.New("no queue") }},
		{"shader compilation fails", func(b *fakeBackend) { b.compileErr = errors.New("bad wgsl") }},
		{"pipeline creation fails", func(b *fakeBackend) { b.pipelineErr = errors.New("bad state") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{}
			tc.prepare(backend)
			r := NewRenderer(BackendTypeWGPU, pipeline.NewPipeline("triangle", shader.Triangle())).(*renderer)
			r.backend = backend

			err := r.Bootstrap(&fakeWindow{width: 800, height: 600})
			assert.Error(t, err)
			assert.Equal(t, stateUninitialized, r.state)

			// No frame can ever be committed after a fatal bootstrap.
			r.Draw()
			assert.Zero(t, backend.commits)
		})
	}
}

func TestBootstrapMissingFragmentEntry(t *testing.T) {
	// The library compiles structurally but lacks the named fragment entry point:
	// bootstrap must fail before any frame is drawn.
	src := `
@vertex
fn vertex_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	backend := &fakeBackend{}
	lib := shader.NewLibrary("broken", src)
	r := NewRenderer(BackendTypeWGPU, pipeline.NewPipeline("triangle", lib)).(*renderer)
	r.backend = backend

	err := r.Bootstrap(&fakeWindow{width: 800, height: 600})
	assert.ErrorIs(t, err, shader.ErrEntryPointNotFound)
	assert.Zero(t, backend.pipelineCreations)

	r.Draw()
	r.Draw()
	assert.Zero(t, backend.commits)
}

func TestDrawBeforeBootstrapIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	r := NewRenderer(BackendTypeWGPU, pipeline.NewPipeline("triangle", shader.Triangle())).(*renderer)
	r.backend = backend

	r.Draw()
	r.Resized(100, 100)
	assert.Empty(t, backend.log)
}

func TestFirstDrawCommitsOnce(t *testing.T) {
	r, backend, _ := newTestRenderer(t)

	r.Draw()
	assert.Equal(t, 1, backend.commits)
	assert.Len(t, backend.presented, 1)
	assert.Equal(t, [][2]uint32{{0, 3}}, backend.drawCalls)
}

func TestDrawStepOrder(t *testing.T) {
	r, backend, _ := newTestRenderer(t)
	backend.log = nil

	r.Draw()
	assert.Equal(t, []string{
		"AcquireDrawable",
		"AcquireCommandBuffer",
		"AcquirePassDescriptor",
		"AcquireEncoder",
		"SetVertexBytes",
		"SetPipelineState",
		"DrawPrimitives",
		"EndEncoding",
		"Present",
		"Commit",
	}, backend.log)
}

func TestFrameAbandonedAtEachAcquisitionStep(t *testing.T) {
	cases := []struct {
		name             string
		prepare          func(b *fakeBackend)
		drawableReleases int
		bufferReleases   int
	}{
		{"drawable unavailable", func(b *fakeBackend) { b.failDrawable = true }, 0, 0},
		{"command buffer unavailable", func(b *fakeBackend) { b.failCommandBuffer = true }, 1, 0},
		{"pass descriptor unavailable", func(b *fakeBackend) { b.failPassDescriptor = true }, 1, 1},
		{"encoder unavailable", func(b *fakeBackend) { b.failEncoder = true }, 1, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, backend, _ := newTestRenderer(t)
			tc.prepare(backend)

			r.Draw()

			// No partial encoding or submission of any kind.
			assert.Zero(t, backend.commits)
			assert.Empty(t, backend.presented)
			assert.Empty(t, backend.vertexUploads)
			assert.Empty(t, backend.boundStates)
			assert.Equal(t, tc.drawableReleases, backend.drawableReleases)
			assert.Equal(t, tc.bufferReleases, backend.commandBufferReleases)
		})
	}
}

func TestSkippedFrameRetriesNextTick(t *testing.T) {
	r, backend, _ := newTestRenderer(t)

	backend.failDrawable = true
	r.Draw()
	assert.Zero(t, backend.commits)

	backend.failDrawable = false
	r.Draw()
	assert.Equal(t, 1, backend.commits)
}

func TestPipelineStateSingleton(t *testing.T) {
	r, backend, _ := newTestRenderer(t)
	state := r.Pipeline().State()

	r.Draw()
	r.Resized(1024, 768)
	r.Draw()
	r.Draw()

	assert.Equal(t, 1, backend.pipelineCreations)
	assert.Same(t, state, r.Pipeline().State())
	for _, bound := range backend.boundStates {
		assert.Same(t, state, bound)
	}
}

func TestFixedTriangleGeometry(t *testing.T) {
	r, backend, _ := newTestRenderer(t)

	r.Draw()
	r.Draw()

	assert.Len(t, backend.vertexUploads, 2)
	for _, slot := range backend.vertexSlots {
		assert.Equal(t, geometryVertexSlot, slot)
	}

	expected := common.SliceToBytes([]common.VertexInput{
		{Position: common.PackedFloat3{X: -halfEdge, Y: -0.25}, Color: common.PackedFloat3{X: 1}},
		{Position: common.PackedFloat3{X: halfEdge, Y: -0.25}, Color: common.PackedFloat3{Y: 1}},
		{Position: common.PackedFloat3{Y: 0.5}, Color: common.PackedFloat3{Z: 1}},
	})
	for _, upload := range backend.vertexUploads {
		assert.Equal(t, expected, upload)
	}
}

func TestResizeExactness(t *testing.T) {
	r, backend, _ := newTestRenderer(t)
	state := r.Pipeline().State()

	r.Resized(1024, 768)

	width, height := backend.SurfaceSize()
	assert.Equal(t, 1024, width)
	assert.Equal(t, 768, height)
	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, backend.configuredSizes)

	// Resize never recreates GPU resources.
	assert.Equal(t, 1, backend.pipelineCreations)
	assert.Same(t, state, r.Pipeline().State())
}

func TestSceneClockAdvancesMonotonically(t *testing.T) {
	clock := NewSceneClock()
	first := clock.Elapsed()
	second := clock.Elapsed()
	assert.GreaterOrEqual(t, second, first)
	assert.GreaterOrEqual(t, clock.Properties().Time, second)
}
