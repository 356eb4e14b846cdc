package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame pacing and heap statistics for the render loop.
// Stats are flushed to the log at a fixed interval.
type Profiler struct {
	frameCount int
	worstFrame time.Duration
	lastFrame  time.Time
	lastFlush  time.Time

	flushInterval time.Duration

	memStats    runtime.MemStats
	lastGCCount uint32
}

// NewProfiler creates a new Profiler.
// The flush interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	now := time.Now()
	return &Profiler{
		lastFrame:     now,
		lastFlush:     now,
		flushInterval: time.Second,
	}
}

// SetFlushInterval changes how often accumulated stats are written to the log.
// Values <= 0 are treated as the default (1 second).
//
// Parameters:
//   - interval: duration between log lines
func (p *Profiler) SetFlushInterval(interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	p.flushInterval = interval
}

// Tick should be called once per loop iteration.
// Accumulates frame timing and, once the flush interval has elapsed, logs
// FPS, worst frame time, live heap size, and GC cycles since the last flush.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := time.Now()
	frame := now.Sub(p.lastFrame)
	p.lastFrame = now

	p.frameCount++
	if frame > p.worstFrame {
		p.worstFrame = frame
	}

	elapsed := now.Sub(p.lastFlush)
	if elapsed < p.flushInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	gcDelta := p.memStats.NumGC - p.lastGCCount

	log.Printf("[Profiler] FPS: %.2f | Worst Frame: %.2f ms | Heap: %.2f MB | GC Cycles: %d",
		fps, float64(p.worstFrame.Microseconds())/1000, heapMB, gcDelta)

	p.frameCount = 0
	p.worstFrame = 0
	p.lastFlush = now
	p.lastGCCount = p.memStats.NumGC
	return true
}
