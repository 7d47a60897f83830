package demo

import (
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/profiler"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
)

// StateBuilderOption is a functional option for configuring a State.
type StateBuilderOption func(s *State)

// WithResolution sets the initial grid resolution. Defaults to 50x50.
//
// Parameters:
//   - rows: initial row count
//   - cols: initial column count
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithResolution(rows, cols int) StateBuilderOption {
	return func(s *State) {
		s.rows = rows
		s.cols = cols
	}
}

// WithMode sets the initial submission mode. Defaults to submission.ModeBufferObject.
//
// Parameters:
//   - mode: the initial mode
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithMode(mode submission.Mode) StateBuilderOption {
	return func(s *State) {
		s.mode = mode
	}
}

// WithGenerator sets the mesh generator. Defaults to grid.NewGenerator().
//
// Parameters:
//   - gen: the generator
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithGenerator(gen grid.Generator) StateBuilderOption {
	return func(s *State) {
		s.gen = gen
	}
}

// WithCamera sets the camera. Defaults to camera.NewCamera().
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithCamera(cam camera.Camera) StateBuilderOption {
	return func(s *State) {
		s.camera = cam
	}
}

// WithProfiler sets the profiler that receives update and draw timings.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) StateBuilderOption {
	return func(s *State) {
		s.profiler = p
	}
}

// WithStatic starts the demo with per-frame updates disabled.
//
// Parameters:
//   - static: true to skip updates
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithStatic(static bool) StateBuilderOption {
	return func(s *State) {
		s.static = static
	}
}
