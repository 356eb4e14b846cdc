// package common contains common types that are used throughout this rendering host. They are not interface-wrapped structs, just plain structs that express
// commonly used GPU-facing data-types.
package common

// PackedFloat3 is a tightly packed three-component float vector with no padding.
// The vertex shader reads geometry as a flat f32 array, so the Go-side layout
// must stay at exactly 12 bytes per vector.
type PackedFloat3 struct {
	// X is the first vector component.
	X float32
	// Y is the second vector component.
	Y float32
	// Z is the third vector component.
	Z float32
}

// VertexInput is one vertex of the scene geometry as uploaded to the vertex shader's
// geometry slot. Field order matches the shader's packed read order: position first,
// color second, 24 bytes total.
type VertexInput struct {
	// Position is the vertex position in normalized device coordinates.
	Position PackedFloat3
	// Color is the vertex color (RGB, each component in [0, 1]).
	Color PackedFloat3
}

// SceneProperties holds per-frame scene values intended for the vertex shader's
// reserved input slot 0. It is present in the data model as an animation extension
// point but is not currently bound to any shader input.
type SceneProperties struct {
	// Time is the elapsed scene time in seconds.
	Time float32
}
