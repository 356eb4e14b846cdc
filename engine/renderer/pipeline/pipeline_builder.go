package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option applied to a pipeline during construction via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithTopology sets the primitive topology for the pipeline.
//
// Parameters:
//   - topology: the primitive topology to use (e.g., wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for the pipeline.
//
// Parameters:
//   - frontFace: the winding order to use (e.g., wgpu.FrontFaceCCW)
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithCullMode sets the cull mode for the pipeline.
//
// Parameters:
//   - cullMode: the cull mode to use (e.g., wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithCullMode(cullMode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = cullMode
	}
}
