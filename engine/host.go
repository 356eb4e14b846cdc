package engine

import (
	"sync"
	"time"

	"github.com/kiln-gfx/kiln/engine/profiler"
	"github.com/kiln-gfx/kiln/engine/window"
)

// host implements the Host interface.
// Ties the window's event loop to the frame delegate and optional profiling.
type host struct {
	running bool

	quitOnce sync.Once // Ensures window teardown happens at most once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)
}

// Host is the main entry point for the rendering host.
// It owns the window's event loop and drives the registered frame delegate
// once per loop iteration until the window closes.
type Host interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers the function called once per loop iteration,
	// after the frame delegate has drawn. Use this for application logic that
	// tracks frame timing.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds since the previous iteration
	SetUpdateCallback(callback func(deltaTime float32))

	// Run starts the main event loop (blocks until the window closes).
	Run()

	// Quit closes the window, which ends the event loop on its next iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Host = &host{}

// NewHost creates a new Host instance with the provided options.
// Options are applied directly to the host struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for host configuration (window, profiling)
//
// Returns:
//   - Host: the newly created host
func NewHost(options ...HostBuilderOption) Host {
	h := &host{
		profiler: profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(h)
	}

	return h
}

func (h *host) Window() window.Window {
	return h.window
}

// Run wires the per-iteration update hook into the window and blocks inside
// its event loop. Everything runs on the calling goroutine: event pumping,
// delegate draws, the update callback, and profiler ticks are strictly
// sequential within one iteration.
func (h *host) Run() {
	lastUpdate := time.Now()
	h.window.SetUpdateCallback(func() {
		now := time.Now()
		dt := float32(now.Sub(lastUpdate).Seconds())
		lastUpdate = now

		if h.updateCallback != nil {
			h.updateCallback(dt)
		}
		if h.profilingEnabled && h.profiler != nil {
			h.profiler.Tick()
		}
	})

	h.running = true
	h.window.ProcessEvents()
	h.running = false
}

// Quit closes the window; ProcessEvents observes the close on its next
// iteration and returns. Safe to call multiple times due to sync.Once.
func (h *host) Quit() {
	h.quitOnce.Do(func() {
		h.running = false
		_ = h.window.Close()
	})
}

// EnableProfiler enables performance profiling output to the log.
func (h *host) EnableProfiler() {
	h.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (h *host) DisableProfiler() {
	h.profilingEnabled = false
}

// SetUpdateCallback registers the function called once per loop iteration.
func (h *host) SetUpdateCallback(callback func(deltaTime float32)) {
	h.updateCallback = callback
}
