package engine

import (
	"github.com/kiln-gfx/kiln/engine/window"
)

// HostBuilderOption is a functional option for configuring a Host.
// Use the With* functions to create options that are applied directly to the host instance.
type HostBuilderOption func(*host)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithProfiling(enabled bool) HostBuilderOption {
	return func(h *host) {
		h.profilingEnabled = enabled
	}
}

// WithWindow sets a pre-configured window for the host to drive rather than
// allowing the host to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithWindow(w window.Window) HostBuilderOption {
	return func(h *host) {
		h.window = w
	}
}

// WithUpdateCallback registers the per-iteration update function during host
// construction.
//
// Parameters:
//   - callback: function receiving the delta time in seconds since the previous iteration
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithUpdateCallback(callback func(deltaTime float32)) HostBuilderOption {
	return func(h *host) {
		h.updateCallback = callback
	}
}
