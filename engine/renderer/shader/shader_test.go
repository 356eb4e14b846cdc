package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const validSource = `
@vertex
fn vertex_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}

@fragment
fn fragment_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func TestValidateResolvesDefaultEntryPoints(t *testing.T) {
	l := NewLibrary("test", validSource)
	assert.NoError(t, l.Validate())
	assert.Equal(t, "vertex_main", l.VertexEntry())
	assert.Equal(t, "fragment_main", l.FragmentEntry())
}

func TestValidateMissingFragmentEntry(t *testing.T) {
	src := `
@vertex
fn vertex_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
`
	err := NewLibrary("test", src).Validate()
	assert.ErrorIs(t, err, ErrEntryPointNotFound)
	assert.ErrorContains(t, err, "fragment_main")
}

func TestValidateMissingVertexEntry(t *testing.T) {
	src := `
@fragment
fn fragment_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	err := NewLibrary("test", src).Validate()
	assert.ErrorIs(t, err, ErrEntryPointNotFound)
	assert.ErrorContains(t, err, "vertex_main")
}

func TestValidateStageMismatch(t *testing.T) {
	// A function with the right name but the wrong stage annotation does not count.
	src := `
@fragment
fn vertex_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }

@fragment
fn fragment_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	err := NewLibrary("test", src).Validate()
	assert.ErrorIs(t, err, ErrEntryPointNotFound)
}

func TestEntryPointOverrides(t *testing.T) {
	src := `
@vertex
fn vs(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }

@fragment
fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	l := NewLibrary("test", src, WithVertexEntry("vs"), WithFragmentEntry("fs"))
	assert.NoError(t, l.Validate())
	assert.Equal(t, "vs", l.VertexEntry())
	assert.Equal(t, "fs", l.FragmentEntry())
}

func TestTriangleLibraryIsValid(t *testing.T) {
	l := Triangle()
	assert.NoError(t, l.Validate())
	assert.Equal(t, "triangle", l.Key())
	assert.Contains(t, l.Source(), "@binding(1)")
}
