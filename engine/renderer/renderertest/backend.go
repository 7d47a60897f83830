// Package renderertest provides a RendererBackend that records every call instead of drawing,
// so submission paths can be checked without a GPU.
package renderertest

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// EventKind identifies a recorded backend call.
type EventKind int

const (
	EventBeginFrame EventKind = iota
	EventDrawImmediate
	EventDrawClient
	EventCreateBuffers
	EventMap
	EventUnmap
	EventDrawBuffer
	EventReleaseBuffers
	EventEndFrame
	EventPresent
)

func (k EventKind) String() string {
	switch k {
	case EventBeginFrame:
		return "begin_frame"
	case EventDrawImmediate:
		return "draw_immediate"
	case EventDrawClient:
		return "draw_client"
	case EventCreateBuffers:
		return "create_buffers"
	case EventMap:
		return "map"
	case EventUnmap:
		return "unmap"
	case EventDrawBuffer:
		return "draw_buffer"
	case EventReleaseBuffers:
		return "release_buffers"
	case EventEndFrame:
		return "end_frame"
	case EventPresent:
		return "present"
	default:
		return "unknown"
	}
}

// Event is one recorded backend call. Draw events carry the resolved strip: the vertices in
// the order the GPU would consume them.
type Event struct {
	Kind  EventKind
	Strip []grid.Vertex
}

// ErrReleased is returned when a released buffer handle is used.
var ErrReleased = errors.New("buffer handle released")

type buffer struct {
	vertices []grid.Vertex
	indices  []uint32
	mapped   bool
	released bool
}

// Backend records calls made through a renderer.Renderer.
type Backend struct {
	mu *sync.Mutex

	events []Event

	Width, Height int
	Fill          renderer.FillMode
	Light         bool
	View          mgl32.Mat4
	Projection    mgl32.Mat4

	// MapErr, when set, is returned by the next MapVertices call.
	MapErr error
	// DrawErr, when set, is returned by every draw call.
	DrawErr error

	live int
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		mu:         &sync.Mutex{},
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
	}
}

// NewRenderer wraps a new recording backend in a renderer.Renderer.
//
// Returns:
//   - renderer.Renderer: the facade to drive
//   - *Backend: the recorder behind it
func NewRenderer(options ...renderer.RendererBuilderOption) (renderer.Renderer, *Backend) {
	b := NewBackend()
	return renderer.NewRendererWithBackend(b, 640, 480, options...), b
}

// Events returns a copy of the recorded events.
func (b *Backend) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

// Kinds returns the kinds of the recorded events in order.
func (b *Backend) Kinds() []EventKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	kinds := make([]EventKind, len(b.events))
	for i, e := range b.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Strips returns the resolved vertex sequence of every draw event in order.
func (b *Backend) Strips() [][]grid.Vertex {
	b.mu.Lock()
	defer b.mu.Unlock()
	var strips [][]grid.Vertex
	for _, e := range b.events {
		if e.Strip != nil {
			strips = append(strips, e.Strip)
		}
	}
	return strips
}

// Count returns how many events of kind k were recorded.
func (b *Backend) Count(k EventKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// LiveBuffers returns the number of created and not yet released buffer handles.
func (b *Backend) LiveBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Reset drops the recorded events.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

func (b *Backend) record(kind EventKind, strip []grid.Vertex) {
	b.events = append(b.events, Event{Kind: kind, Strip: strip})
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {}

func (b *Backend) ClipSpace() camera.ClipSpace {
	return camera.ClipSpaceZeroToOne
}

func (b *Backend) SetCamera(view, projection mgl32.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.View, b.Projection = view, projection
}

func (b *Backend) SetFillMode(mode renderer.FillMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Fill = mode
}

func (b *Backend) SetLighting(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Light = enabled
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(EventBeginFrame, nil)
	return nil
}

func (b *Backend) DrawImmediateStrip(vertices []grid.Vertex) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DrawErr != nil {
		return b.DrawErr
	}
	b.record(EventDrawImmediate, slices.Clone(vertices))
	return nil
}

func (b *Backend) DrawClientStrip(vertices []grid.Vertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DrawErr != nil {
		return b.DrawErr
	}
	b.record(EventDrawClient, resolve(vertices, indices))
	return nil
}

func (b *Backend) CreateMeshBuffers(mesh *grid.Mesh) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(EventCreateBuffers, nil)
	b.live++
	return &buffer{
		vertices: slices.Clone(mesh.Vertices),
		indices:  slices.Clone(mesh.Indices),
	}, nil
}

func (b *Backend) MapVertices(handle any) ([]byte, error) {
	buf := handle.(*buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.released {
		return nil, ErrReleased
	}
	if err := b.MapErr; err != nil {
		b.MapErr = nil
		return nil, err
	}
	buf.mapped = true
	b.record(EventMap, nil)
	return common.SliceToBytes(buf.vertices), nil
}

func (b *Backend) UnmapVertices(handle any) error {
	buf := handle.(*buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.released {
		return ErrReleased
	}
	buf.mapped = false
	b.record(EventUnmap, nil)
	return nil
}

func (b *Backend) DrawBufferStrip(handle any, firstIndex, count int) error {
	buf := handle.(*buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.released {
		return ErrReleased
	}
	if b.DrawErr != nil {
		return b.DrawErr
	}
	b.record(EventDrawBuffer, resolve(buf.vertices, buf.indices[firstIndex:firstIndex+count]))
	return nil
}

func (b *Backend) ReleaseMeshBuffers(handle any) {
	buf, ok := handle.(*buffer)
	if !ok || buf == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.released {
		return
	}
	buf.released = true
	b.live--
	b.record(EventReleaseBuffers, nil)
}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(EventEndFrame, nil)
	return nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(EventPresent, nil)
}

func (b *Backend) Release() {}

func resolve(vertices []grid.Vertex, indices []uint32) []grid.Vertex {
	strip := make([]grid.Vertex, len(indices))
	for i, idx := range indices {
		strip[i] = vertices[idx]
	}
	return strip
}
