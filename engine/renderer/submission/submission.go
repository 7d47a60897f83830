// Package submission implements the interchangeable ways of getting a grid mesh's vertices to
// the GPU each frame. Every strategy draws the same triangle strips; they differ in where the
// per-frame update is written (host array or mapped device buffer) and in how the draw call
// addresses vertex data.
package submission

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
)

// ErrNotAttached is returned by Update and Draw before a successful Attach.
var ErrNotAttached = errors.New("strategy not attached to a mesh")

// Mode identifies a submission strategy.
type Mode int

const (
	// ModeImmediate walks the vertex array by grid arithmetic and emits every vertex through
	// the immediate strip primitives.
	ModeImmediate Mode = iota

	// ModeIndexedImmediate emits vertices through the immediate primitives in index-array order.
	ModeIndexedImmediate

	// ModeClientArray issues one indexed draw per strip from the host arrays.
	ModeClientArray

	// ModeBufferObject keeps the vertices in a device buffer that is mapped and updated every
	// frame, and draws each strip by index buffer offset.
	ModeBufferObject

	modeCount
)

// Modes lists every mode in cycling order.
var Modes = []Mode{ModeImmediate, ModeIndexedImmediate, ModeClientArray, ModeBufferObject}

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeIndexedImmediate:
		return "indexed_immediate"
	case ModeClientArray:
		return "client_array"
	case ModeBufferObject:
		return "buffer_object"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Next returns the mode after m, wrapping around to ModeImmediate.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// Valid reports whether m names a strategy.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// ParseMode maps a config name to a Mode.
//
// Parameters:
//   - s: one of the names returned by Mode.String, or empty for ModeBufferObject
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error if the name is unknown
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeBufferObject, nil
	}
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeBufferObject, fmt.Errorf("unknown submission mode %q", s)
}

// Strategy pushes a mesh to a Renderer once per frame.
//
// The caller owns the frame: Update runs before BeginFrame (it may map device buffers, which
// must not happen mid-frame on every backend) and Draw runs between BeginFrame and EndFrame.
type Strategy interface {
	// Mode returns the mode this strategy implements.
	Mode() Mode

	// Attach binds the strategy to a renderer and a freshly built mesh. Called after every
	// rebuild; strategies that keep device copies release the old ones and upload new ones.
	//
	// Parameters:
	//   - r: the renderer to draw through
	//   - mesh: the mesh to draw
	//
	// Returns:
	//   - error: an error if device buffers could not be created
	Attach(r renderer.Renderer, mesh *grid.Mesh) error

	// Update re-evaluates every vertex at time t wherever this strategy keeps its vertices.
	//
	// Parameters:
	//   - gen: the generator that evaluates heights and normals
	//   - t: the animation time in seconds
	//
	// Returns:
	//   - error: ErrNotAttached, or a device error from mapping
	Update(gen grid.Generator, t float32) error

	// Draw issues one triangle strip per mesh column.
	//
	// Returns:
	//   - error: ErrNotAttached, or the first device error raised by a strip
	Draw() error

	// Release frees any device resources held by the strategy.
	Release()
}

// New creates the strategy for a mode.
//
// Parameters:
//   - mode: the submission mode
//
// Returns:
//   - Strategy: the strategy, not yet attached
//   - error: an error if the mode is unknown
func New(mode Mode) (Strategy, error) {
	switch mode {
	case ModeImmediate:
		return &immediateStrategy{}, nil
	case ModeIndexedImmediate:
		return &immediateStrategy{indexed: true}, nil
	case ModeClientArray:
		return &clientArrayStrategy{}, nil
	case ModeBufferObject:
		return &bufferObjectStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown submission mode %d", int(mode))
}

// hostMesh is the state shared by the strategies that keep their vertices in host memory.
type hostMesh struct {
	r    renderer.Renderer
	mesh *grid.Mesh
}

func (h *hostMesh) attach(r renderer.Renderer, mesh *grid.Mesh) error {
	if r == nil || mesh == nil {
		return fmt.Errorf("attach: %w", ErrNotAttached)
	}
	h.r = r
	h.mesh = mesh
	return nil
}

func (h *hostMesh) Update(gen grid.Generator, t float32) error {
	if h.mesh == nil {
		return ErrNotAttached
	}
	gen.UpdateInto(h.mesh.Vertices, h.mesh.Vertices, t)
	return nil
}

func (h *hostMesh) Release() {
	h.r = nil
	h.mesh = nil
}
