package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kiln-gfx/kiln/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the shader library and primitive configuration used to create the GPU
// pipeline state, plus the compiled state once the backend has produced it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for GPU object labels
	pipelineKey string

	// library supplies the vertex and fragment entry points for the pipeline's shader stages
	library shader.Library

	// state is the compiled, fully-linked GPU pipeline. It is set exactly once during
	// bootstrap and never replaced; every frame binds this same instance.
	state *wgpu.RenderPipeline

	// The following properties configure primitive assembly during pipeline creation
	// and can be set with the builder options.

	topology  wgpu.PrimitiveTopology
	frontFace wgpu.FrontFace
	cullMode  wgpu.CullMode
}

// Pipeline defines the interface for a render pipeline descriptor and its compiled
// state. Before bootstrap it carries only configuration (shader library, primitive
// topology, winding, culling); after the backend compiles it, State returns the
// immutable GPU pipeline that every frame binds.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for GPU object labels.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Library retrieves the shader library supplying this pipeline's entry points.
	//
	// Returns:
	//   - shader.Library: the shader library for this pipeline
	Library() shader.Library

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order (e.g., wgpu.FrontFaceCCW)
	FrontFace() wgpu.FrontFace

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode (e.g., wgpu.CullModeNone)
	CullMode() wgpu.CullMode

	// State returns the compiled GPU pipeline state, or nil if the pipeline has not
	// been created yet.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline state
	State() *wgpu.RenderPipeline

	// SetState stores the compiled GPU pipeline state. Called by the backend exactly
	// once during bootstrap; the stored state is never replaced afterwards.
	//
	// Parameters:
	//   - state: the compiled WebGPU render pipeline
	SetState(state *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline descriptor bound to the given shader library.
// Defaults: triangle-list topology, counter-clockwise winding, no culling.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - library: the shader library supplying the vertex and fragment entry points
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline descriptor with the specified configuration
func NewPipeline(pipelineKey string, library shader.Library, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		library:     library,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		cullMode:    wgpu.CullModeNone,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Library() shader.Library {
	return p.library
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) State() *wgpu.RenderPipeline {
	return p.state
}

func (p *pipeline) SetState(state *wgpu.RenderPipeline) {
	p.state = state
}
