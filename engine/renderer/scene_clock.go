package renderer

import (
	"time"

	"github.com/kiln-gfx/kiln/common"
)

// SceneClock is the monotonically advancing scene time source. It exists as the
// animation extension point: when shader-side animation is wired up, each frame
// writes Properties() to the reserved vertex input slot 0 before the geometry
// upload. Until then the clock advances but feeds nothing.
type SceneClock struct {
	start time.Time
}

// NewSceneClock creates a SceneClock starting at the current instant.
//
// Returns:
//   - *SceneClock: the newly created clock
func NewSceneClock() *SceneClock {
	return &SceneClock{start: time.Now()}
}

// Reset restarts the clock at the current instant. Called when the renderer
// transitions to the ready state so scene time measures time since bootstrap.
func (c *SceneClock) Reset() {
	c.start = time.Now()
}

// Elapsed returns the seconds since the clock started. The value only ever
// grows between calls.
//
// Returns:
//   - float32: elapsed scene time in seconds
func (c *SceneClock) Elapsed() float32 {
	return float32(time.Since(c.start).Seconds())
}

// Properties packages the current scene time in the GPU-facing layout expected
// by the reserved vertex input slot.
//
// Returns:
//   - common.SceneProperties: the current per-frame scene properties
func (c *SceneClock) Properties() common.SceneProperties {
	return common.SceneProperties{Time: c.Elapsed()}
}
