// Package demo holds the interactive wave grid application: its state, key bindings and the
// per-frame update and draw sequence.
package demo

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/profiler"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
)

// ResolutionStep is how many rows or columns one arrow key press adds or removes.
const ResolutionStep = 10

// State is the demo's application state. It is owned by the render thread.
type State struct {
	rows int
	cols int

	mode     submission.Mode
	strategy submission.Strategy

	paused bool
	static bool

	gen      grid.Generator
	renderer renderer.Renderer
	camera   camera.Camera
	profiler *profiler.Profiler
}

// NewState builds the initial mesh and attaches the initial submission strategy.
//
// Parameters:
//   - r: the renderer to draw through
//   - options: functional options to configure the state
//
// Returns:
//   - *State: the ready state
//   - error: an error if the initial mesh could not be built or attached
func NewState(r renderer.Renderer, options ...StateBuilderOption) (*State, error) {
	if r == nil {
		return nil, errors.New("demo: nil renderer")
	}

	s := &State{
		rows:     50,
		cols:     50,
		mode:     submission.ModeBufferObject,
		renderer: r,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.gen == nil {
		s.gen = grid.NewGenerator()
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.profiler == nil {
		s.profiler = profiler.NewProfiler(profiler.WithLogging(false))
	}

	mesh, err := s.gen.Build(s.rows, s.cols)
	if err != nil {
		return nil, err
	}
	strategy, err := submission.New(s.mode)
	if err != nil {
		return nil, err
	}
	if err := strategy.Attach(r, mesh); err != nil {
		return nil, fmt.Errorf("attach %s: %w", s.mode, err)
	}
	s.strategy = strategy

	log.Printf("[Demo] %dx%d grid, mode %s", s.rows, s.cols, s.mode)
	return s, nil
}

// Rows returns the current row count.
func (s *State) Rows() int { return s.rows }

// Cols returns the current column count.
func (s *State) Cols() int { return s.cols }

// Mode returns the active submission mode.
func (s *State) Mode() submission.Mode { return s.mode }

// Paused reports whether frames are skipped.
func (s *State) Paused() bool { return s.paused }

// Static reports whether per-frame updates are skipped.
func (s *State) Static() bool { return s.static }

// Mesh returns the mesh currently drawn.
func (s *State) Mesh() *grid.Mesh { return s.gen.Mesh() }

// Camera returns the demo camera.
func (s *State) Camera() camera.Camera { return s.camera }

// SetResolution rebuilds the mesh at rows x cols and reattaches the strategy. Invalid
// dimensions are rejected and the current mesh stays in use.
//
// Parameters:
//   - rows: the new row count (>= 1)
//   - cols: the new column count (>= 2)
//
// Returns:
//   - error: grid.ErrInvalidDimensions, or an error from attaching the new mesh
func (s *State) SetResolution(rows, cols int) error {
	mesh, err := s.gen.Build(rows, cols)
	if err != nil {
		return err
	}
	s.rows, s.cols = rows, cols
	if err := s.strategy.Attach(s.renderer, mesh); err != nil {
		return fmt.Errorf("attach %dx%d mesh: %w", rows, cols, err)
	}
	log.Printf("[Demo] grid resized to %dx%d", rows, cols)
	return nil
}

// Reconfigure replaces the generator, typically after a config reload changed the waves,
// extent or normal mode, and rebuilds the mesh at the current resolution.
//
// Parameters:
//   - gen: the new generator
//
// Returns:
//   - error: an error if the mesh could not be built or attached; the old generator stays active
func (s *State) Reconfigure(gen grid.Generator) error {
	mesh, err := gen.Build(s.rows, s.cols)
	if err != nil {
		return err
	}
	if err := s.strategy.Attach(s.renderer, mesh); err != nil {
		return fmt.Errorf("attach reconfigured mesh: %w", err)
	}
	s.gen = gen
	log.Printf("[Demo] generator reconfigured: %d waves, %s normals", len(gen.Waves()), gen.NormalMode())
	return nil
}

// SetMode swaps the submission strategy. The new strategy is attached before the old one is
// released, so a failed attach leaves the old strategy active.
//
// Parameters:
//   - mode: the new submission mode
//
// Returns:
//   - error: an error if the mode is unknown or the strategy could not be attached
func (s *State) SetMode(mode submission.Mode) error {
	if mode == s.mode {
		return nil
	}
	strategy, err := submission.New(mode)
	if err != nil {
		return err
	}
	if err := strategy.Attach(s.renderer, s.gen.Mesh()); err != nil {
		return fmt.Errorf("attach %s: %w", mode, err)
	}
	s.strategy.Release()
	s.strategy = strategy
	s.mode = mode
	log.Printf("[Demo] mode %s", mode)
	return nil
}

// HandleKey applies a key binding. Every key press also resets the maximum draw time.
//
//	Up/Down      rows +/- ResolutionStep
//	Left/Right   cols -/+ ResolutionStep
//	Space        next submission mode
//	1-4          select submission mode
//	F            toggle wireframe
//	L            toggle lighting
//	P            pause
//	S            toggle static rendering
//
// Parameters:
//   - keyCode: the key code from the window
func (s *State) HandleKey(keyCode uint32) {
	s.profiler.ResetMax()

	var err error
	switch keyCode {
	case common.KeyUp:
		err = s.SetResolution(s.rows+ResolutionStep, s.cols)
	case common.KeyDown:
		err = s.SetResolution(s.rows-ResolutionStep, s.cols)
	case common.KeyLeft:
		err = s.SetResolution(s.rows, s.cols-ResolutionStep)
	case common.KeyRight:
		err = s.SetResolution(s.rows, s.cols+ResolutionStep)
	case common.KeySpace:
		err = s.SetMode(s.mode.Next())
	case common.Key1, common.Key2, common.Key3, common.Key4:
		err = s.SetMode(submission.Modes[keyCode-common.Key1])
	case common.KeyF:
		s.renderer.SetFillMode(s.renderer.FillMode().Toggle())
	case common.KeyL:
		s.renderer.SetLighting(!s.renderer.Lighting())
	case common.KeyP:
		s.paused = !s.paused
	case common.KeyS:
		s.static = !s.static
	}
	if err != nil {
		log.Printf("[Demo] key %d: %v", keyCode, err)
	}
}

// Resize updates the renderer surface and the camera aspect ratio.
//
// Parameters:
//   - width, height: the new framebuffer size in pixels
func (s *State) Resize(width, height int) {
	s.renderer.Resize(width, height)
	s.camera.SetViewport(width, height)
}

// Frame updates the mesh to time now and draws it. Paused frames do nothing; static frames draw
// without updating. Device errors are returned but never leave a frame open.
//
// Parameters:
//   - now: the animation time in seconds
//
// Returns:
//   - error: the device errors raised during the frame, or nil
func (s *State) Frame(now float32) error {
	if s.paused {
		return nil
	}

	var errs []error
	if !s.static {
		var err error
		s.profiler.RecordUpdate(s.profiler.Measure(func() {
			err = s.strategy.Update(s.gen, now)
		}))
		if err != nil {
			errs = append(errs, fmt.Errorf("update: %w", err))
		}
	}

	s.renderer.SetCamera(s.camera.ViewMatrix(), s.camera.ProjectionMatrix(s.renderer.ClipSpace()))
	if err := s.renderer.BeginFrame(); err != nil {
		return errors.Join(append(errs, fmt.Errorf("begin frame: %w", err))...)
	}

	var err error
	s.profiler.RecordDraw(s.profiler.Measure(func() {
		err = s.strategy.Draw()
	}))
	if err != nil {
		errs = append(errs, fmt.Errorf("draw: %w", err))
	}
	if err := s.renderer.EndFrame(); err != nil {
		errs = append(errs, fmt.Errorf("end frame: %w", err))
	}
	s.renderer.Present()
	return errors.Join(errs...)
}

// Release frees the active strategy's device resources.
func (s *State) Release() {
	if s.strategy != nil {
		s.strategy.Release()
	}
}
