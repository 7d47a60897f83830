package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNoFrame is returned by draw calls issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame was not ended.
	ErrFrameInProgress = errors.New("previous frame not ended")

	// ErrStripState is returned when BeginStrip/EndStrip calls are unbalanced.
	ErrStripState = errors.New("immediate strip begin/end mismatch")

	// ErrAlreadyMapped is returned when mapping a vertex buffer that is already mapped.
	ErrAlreadyMapped = errors.New("vertex buffer already mapped")

	// ErrNotMapped is returned when unmapping a vertex buffer that is not mapped.
	ErrNotMapped = errors.New("vertex buffer not mapped")

	// ErrBufferMapped is returned when drawing from a vertex buffer that is still mapped.
	ErrBufferMapped = errors.New("draw from mapped vertex buffer")

	// ErrInvalidBuffers is returned for buffers that were released or belong to another renderer.
	ErrInvalidBuffers = errors.New("invalid mesh buffers")
)

// MeshBuffers is a device-resident copy of a mesh: a vertex buffer the host can map for
// per-frame updates and an immutable index buffer.
type MeshBuffers struct {
	owner    *renderer
	handle   any
	layout   grid.Layout
	mapped   bool
	released bool
}

// Layout returns the stride, offsets and strip geometry of the uploaded mesh.
func (b *MeshBuffers) Layout() grid.Layout {
	return b.layout
}

// Mapped reports whether the vertex buffer is currently mapped into host memory.
func (b *MeshBuffers) Mapped() bool {
	return b.mapped
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	inFrame    bool
	inStrip    bool
	strip      []grid.Vertex
	fillMode   FillMode
	lighting   bool
	liveBuffer map[*MeshBuffers]struct{}

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           [4]float64
}

// Renderer is the graphics device facade the submission strategies draw through.
//
// It exposes three ways of getting vertices to the GPU (immediate strips, indexed draws from
// host arrays, and device buffer objects) and enforces their ordering rules: draws happen
// inside a frame, a mapped buffer is never drawn from, and a buffer is never mapped twice.
type Renderer interface {
	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required afterwards.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// ClipSpace reports the depth convention projection matrices must target for this backend.
	//
	// Returns:
	//   - camera.ClipSpace: the clip space convention
	ClipSpace() camera.ClipSpace

	// SetCamera sets the view and projection matrices used by subsequent draws.
	//
	// Parameters:
	//   - view: world to eye transform
	//   - projection: eye to clip transform for ClipSpace()
	SetCamera(view, projection mgl32.Mat4)

	// SetFillMode selects filled triangles or a wireframe.
	SetFillMode(mode FillMode)

	// FillMode returns the current fill mode.
	FillMode() FillMode

	// SetLighting toggles the light.
	SetLighting(enabled bool)

	// Lighting reports whether the light is enabled.
	Lighting() bool

	// BeginFrame acquires the frame target and clears it.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or a device error if the target could not be acquired
	BeginFrame() error

	// InFrame reports whether a frame is in progress.
	InFrame() bool

	// BeginStrip opens an immediate-mode triangle strip.
	//
	// Returns:
	//   - error: ErrNoFrame or ErrStripState
	BeginStrip() error

	// Vertex appends one vertex to the open immediate-mode strip. Ignored outside a strip.
	//
	// Parameters:
	//   - position: vertex position
	//   - normal: vertex normal
	Vertex(position, normal mgl32.Vec3)

	// EndStrip closes and draws the open immediate-mode strip.
	//
	// Returns:
	//   - error: ErrStripState, or a device error
	EndStrip() error

	// DrawClientStrip draws one triangle strip from host memory, addressed by indices.
	//
	// Parameters:
	//   - vertices: the host vertex array
	//   - indices: the strip indices into vertices
	//
	// Returns:
	//   - error: ErrNoFrame, or a device error
	DrawClientStrip(vertices []grid.Vertex, indices []uint32) error

	// CreateMeshBuffers uploads a mesh's vertex and index arrays to device buffers.
	//
	// Parameters:
	//   - mesh: the mesh to upload
	//
	// Returns:
	//   - *MeshBuffers: the device buffers
	//   - error: an error if the mesh is invalid or allocation fails
	CreateMeshBuffers(mesh *grid.Mesh) (*MeshBuffers, error)

	// MapVertices maps the device vertex buffer for writing. May block until the device has
	// finished reading the buffer.
	//
	// Parameters:
	//   - b: the buffers to map
	//
	// Returns:
	//   - []grid.Vertex: the mapped vertices, valid until UnmapVertices
	//   - error: ErrInvalidBuffers, ErrAlreadyMapped, or a device error
	MapVertices(b *MeshBuffers) ([]grid.Vertex, error)

	// UnmapVertices publishes the mapped vertices to the device. Draws issued after it
	// returns read the written data.
	//
	// Parameters:
	//   - b: the buffers to unmap
	//
	// Returns:
	//   - error: ErrInvalidBuffers, ErrNotMapped, or a device error
	UnmapVertices(b *MeshBuffers) error

	// DrawBufferStrip draws count indices starting at firstIndex from device buffers.
	//
	// Parameters:
	//   - b: the buffers to draw from
	//   - firstIndex: the first index of the strip
	//   - count: the number of indices
	//
	// Returns:
	//   - error: ErrNoFrame, ErrInvalidBuffers, ErrBufferMapped, or a device error
	DrawBufferStrip(b *MeshBuffers, firstIndex, count int) error

	// ReleaseMeshBuffers frees the device buffers. Releasing twice is a no-op.
	ReleaseMeshBuffers(b *MeshBuffers)

	// EndFrame finishes and submits the frame's commands.
	//
	// Returns:
	//   - error: ErrNoFrame, or device errors raised during the frame
	EndFrame() error

	// Present displays the finished frame.
	Present()

	// Release frees all live mesh buffers and the backend.
	Release()

	// BackendType returns the backend driving this renderer.
	BackendType() RendererBackendType
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend on the given window.
// The WebGPU backend creates its surface from the window; the GL backend makes the window's
// context current and loads the GL entry points.
//
// Parameters:
//   - backendType: the type of rendering backend to use (WGPU or GL)
//   - win: the window to render into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the device could not be initialized
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeGL:
		win.MakeContextCurrent()
		r.backend, err = newGLRendererBackend(r.clearColor, win.SwapBuffers)
	case BackendTypeWGPU:
		r.backend, err = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	default:
		return nil, fmt.Errorf("renderer backend %s needs NewRendererWithBackend", backendType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s renderer: %w", backendType, err)
	}

	r.init(win.Width(), win.Height())
	log.Printf("[Renderer] initialized %s backend at %dx%d", backendType, win.Width(), win.Height())
	return r, nil
}

// NewRendererWithBackend creates a Renderer over a caller-supplied backend, such as a
// recording backend in tests or an offscreen target.
//
// Parameters:
//   - backend: the backend to drive
//   - width, height: the initial surface size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
func NewRendererWithBackend(backend RendererBackend, width, height int, options ...RendererBuilderOption) Renderer {
	r := newRenderer(BackendTypeCustom, options...)
	r.backend = backend
	r.init(width, height)
	return r
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		lighting:    true,
		liveBuffer:  make(map[*MeshBuffers]struct{}),
		clearColor:  [4]float64{0, 0, 0, 1},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) init(width, height int) {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetFillMode(r.fillMode)
	r.backend.SetLighting(r.lighting)
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		// minimized windows report a zero framebuffer
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) ClipSpace() camera.ClipSpace {
	return r.backend.ClipSpace()
}

func (r *renderer) SetCamera(view, projection mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetCamera(view, projection)
}

func (r *renderer) SetFillMode(mode FillMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fillMode = mode
	r.backend.SetFillMode(mode)
}

func (r *renderer) FillMode() FillMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fillMode
}

func (r *renderer) SetLighting(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lighting = enabled
	r.backend.SetLighting(enabled)
}

func (r *renderer) Lighting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lighting
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inFrame {
		return ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) InFrame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFrame
}

func (r *renderer) BeginStrip() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	if r.inStrip {
		return fmt.Errorf("%w: strip already open", ErrStripState)
	}
	r.inStrip = true
	r.strip = r.strip[:0]
	return nil
}

func (r *renderer) Vertex(position, normal mgl32.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inStrip {
		return
	}
	r.strip = append(r.strip, grid.Vertex{Position: position, Normal: normal})
}

func (r *renderer) EndStrip() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inStrip {
		return fmt.Errorf("%w: no strip open", ErrStripState)
	}
	r.inStrip = false
	if len(r.strip) < 3 {
		return nil
	}
	return r.backend.DrawImmediateStrip(r.strip)
}

func (r *renderer) DrawClientStrip(vertices []grid.Vertex, indices []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	if len(indices) < 3 {
		return nil
	}
	return r.backend.DrawClientStrip(vertices, indices)
}

func (r *renderer) CreateMeshBuffers(mesh *grid.Mesh) (*MeshBuffers, error) {
	if mesh == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidBuffers)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBuffers, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	handle, err := r.backend.CreateMeshBuffers(mesh)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh buffers for %dx%d grid: %w", mesh.Rows, mesh.Cols, err)
	}
	b := &MeshBuffers{
		owner:  r,
		handle: handle,
		layout: mesh.Layout(),
	}
	r.liveBuffer[b] = struct{}{}
	return b, nil
}

func (r *renderer) MapVertices(b *MeshBuffers) ([]grid.Vertex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkBuffers(b); err != nil {
		return nil, err
	}
	if b.mapped {
		return nil, ErrAlreadyMapped
	}

	data, err := r.backend.MapVertices(b.handle)
	if err != nil {
		return nil, err
	}
	vertices := common.BytesToSlice[grid.Vertex](data)
	if len(vertices) < b.layout.VertexCount {
		_ = r.backend.UnmapVertices(b.handle)
		return nil, fmt.Errorf("mapped range holds %d vertices, want %d", len(vertices), b.layout.VertexCount)
	}
	b.mapped = true
	return vertices[:b.layout.VertexCount], nil
}

func (r *renderer) UnmapVertices(b *MeshBuffers) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkBuffers(b); err != nil {
		return err
	}
	if !b.mapped {
		return ErrNotMapped
	}
	b.mapped = false
	return r.backend.UnmapVertices(b.handle)
}

func (r *renderer) DrawBufferStrip(b *MeshBuffers, firstIndex, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	if err := r.checkBuffers(b); err != nil {
		return err
	}
	if b.mapped {
		return ErrBufferMapped
	}
	if firstIndex < 0 || count < 0 || firstIndex+count > b.layout.IndexCount {
		return fmt.Errorf("%w: strip [%d, %d) outside %d indices", ErrInvalidBuffers, firstIndex, firstIndex+count, b.layout.IndexCount)
	}
	if count < 3 {
		return nil
	}
	return r.backend.DrawBufferStrip(b.handle, firstIndex, count)
}

func (r *renderer) ReleaseMeshBuffers(b *MeshBuffers) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b == nil || b.owner != r || b.released {
		return
	}
	if b.mapped {
		_ = r.backend.UnmapVertices(b.handle)
		b.mapped = false
	}
	r.backend.ReleaseMeshBuffers(b.handle)
	b.released = true
	b.handle = nil
	delete(r.liveBuffer, b)
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	r.inStrip = false
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for b := range r.liveBuffer {
		r.backend.ReleaseMeshBuffers(b.handle)
		b.released = true
		b.handle = nil
	}
	clear(r.liveBuffer)
	r.backend.Release()
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

// checkBuffers rejects nil, foreign or released buffers. Caller holds r.mu.
func (r *renderer) checkBuffers(b *MeshBuffers) error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBuffers)
	}
	if b.owner != r {
		return fmt.Errorf("%w: owned by another renderer", ErrInvalidBuffers)
	}
	if b.released {
		return fmt.Errorf("%w: released", ErrInvalidBuffers)
	}
	return nil
}
