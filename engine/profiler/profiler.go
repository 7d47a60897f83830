package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is a snapshot of the frame statistics.
type Stats struct {
	// FPS is the frame rate measured over the last completed interval.
	FPS float64

	// Update is the duration of the most recent mesh update.
	Update time.Duration

	// Draw is the duration of the most recent draw.
	Draw time.Duration

	// MaxDraw is the longest draw since the last ResetMax.
	MaxDraw time.Duration
}

// Profiler tracks frame rate, update and draw timings and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	logging        bool
	now            func() time.Time

	stats Stats

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often statistics are computed and logged. Defaults to 1 second.
//
// Parameters:
//   - interval: the logging interval; non-positive values are ignored
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogging enables or disables the periodic log line. Defaults to true.
//
// Parameters:
//   - enabled: whether Tick logs
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}

// WithClock replaces time.Now as the profiler's time source.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		logging:        true,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Measure runs fn and returns how long it took on the profiler's clock.
func (p *Profiler) Measure(fn func()) time.Duration {
	start := p.now()
	fn()
	return p.now().Sub(start)
}

// RecordUpdate stores the duration of the latest mesh update.
//
// Parameters:
//   - d: the update duration
func (p *Profiler) RecordUpdate(d time.Duration) {
	p.stats.Update = d
}

// RecordDraw stores the duration of the latest draw and raises the maximum if exceeded.
//
// Parameters:
//   - d: the draw duration
func (p *Profiler) RecordDraw(d time.Duration) {
	p.stats.Draw = d
	p.stats.MaxDraw = max(p.stats.MaxDraw, d)
}

// ResetMax clears the maximum draw time.
func (p *Profiler) ResetMax() {
	p.stats.MaxDraw = 0
}

// Stats returns the current statistics.
func (p *Profiler) Stats() Stats {
	return p.stats
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it recomputes FPS and, if logging is enabled, logs
// FPS, update and draw timings, heap usage, allocation rate and GC counts.
//
// Returns:
//   - bool: true if the interval elapsed this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.stats.FPS = float64(p.frameCount) / elapsed.Seconds()
	if p.logging {
		p.logStats(elapsed)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	return true
}

func (p *Profiler) logStats(elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024

	// TotalAlloc only grows, so the delta is the allocation churn over the interval
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()
	gcDelta := p.memStats.NumGC - p.lastGCCount

	log.Printf("[Profiler] FPS: %.2f | Update: %s | Draw: %s (max %s) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: +%d",
		p.stats.FPS, p.stats.Update, p.stats.Draw, p.stats.MaxDraw, allocMB, allocRateMB, gcDelta)

	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
