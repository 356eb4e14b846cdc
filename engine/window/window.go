package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// FrameDelegate receives per-frame and resize notifications from the window.
// The window holds its delegate by reference only; registering a delegate does
// not transfer ownership.
type FrameDelegate interface {
	// Draw is invoked once per redraw tick on the thread that owns the window.
	// Implementations must not block; a frame that cannot be produced should be
	// skipped, not waited for.
	Draw()

	// Resized is invoked when the window's framebuffer size changes.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	Resized(width, height int)
}

// Window provides platform windowing and event dispatch for the rendering host.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetFrameDelegate registers the delegate that receives Draw and Resized
	// notifications. The window keeps only a reference; passing nil detaches
	// the current delegate.
	//
	// Parameters:
	//   - delegate: the FrameDelegate to notify (or nil to detach)
	SetFrameDelegate(delegate FrameDelegate)

	// SetUpdateCallback sets the function called each event loop iteration,
	// after the frame delegate's Draw.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Title returns the current window title.
	//
	// Returns:
	//   - string: the title text
	Title() string

	// SetTitle sets the window title displayed in the title bar.
	//
	// Parameters:
	//   - title: the new title text
	SetTitle(title string)

	// Center positions the window at the center of the primary monitor's work area.
	Center()

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessEvents runs the window event loop. Blocks until the window is closed.
	// Each iteration polls pending platform events (dispatching Resized to the
	// delegate synchronously), then invokes the delegate's Draw for the redraw
	// tick, then the update callback. Presentation pacing (vsync) is what keeps
	// this loop at the display refresh cadence.
	ProcessEvents()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the registered frame delegate.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// delegate receives Draw and Resized notifications. Held by reference only.
	delegate FrameDelegate

	// onUpdate is called each iteration of the event loop (if set).
	onUpdate func()
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "Default Window Title",
		width:  800,
		height: 600,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetFrameDelegate(delegate FrameDelegate) {
	w.delegate = delegate
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) Center() {
	platformCenterWindow(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessEvents() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.delegate != nil {
			w.delegate.Draw()
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
