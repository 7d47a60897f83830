package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// glRendererBackendImpl drives the fixed-function OpenGL 2.1 pipeline. Every submission path
// maps onto its classic GL entry point: glBegin/glEnd, client-side arrays, and buffer objects
// updated through glMapBuffer.
type glRendererBackendImpl struct {
	mu *sync.Mutex

	swap       func()
	clearColor [4]float32

	view       mgl32.Mat4
	projection mgl32.Mat4
	fillMode   FillMode
	lighting   bool
}

// glMeshBuffers holds the names of a mesh's vertex and index buffer objects.
type glMeshBuffers struct {
	vbo  uint32
	ibo  uint32
	size int
}

var _ RendererBackend = &glRendererBackendImpl{}

// newGLRendererBackend loads the GL entry points for the current context and applies the
// fixed lighting and depth state. The window's context must already be current.
func newGLRendererBackend(clearColor [4]float64, swap func()) (*glRendererBackendImpl, error) {
	runtime.LockOSThread()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}

	b := &glRendererBackendImpl{
		mu:         &sync.Mutex{},
		swap:       swap,
		clearColor: [4]float32{float32(clearColor[0]), float32(clearColor[1]), float32(clearColor[2]), float32(clearColor[3])},
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		lighting:   true,
	}

	gl.ShadeModel(gl.SMOOTH)
	gl.Enable(gl.DEPTH_TEST)
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)
	gl.Enable(gl.COLOR_MATERIAL)
	gl.LightModeli(gl.LIGHT_MODEL_TWO_SIDE, gl.TRUE)
	gl.ClearColor(b.clearColor[0], b.clearColor[1], b.clearColor[2], b.clearColor[3])

	gl.Lightfv(gl.LIGHT0, gl.AMBIENT, &LightAmbient[0])
	gl.Lightfv(gl.LIGHT0, gl.DIFFUSE, &LightDiffuse[0])
	gl.Lightfv(gl.LIGHT0, gl.SPECULAR, &LightSpecular[0])
	gl.Enable(gl.LIGHT0)

	if err := drainGLErrors(); err != nil {
		return nil, fmt.Errorf("gl state setup: %w", err)
	}
	return b, nil
}

func (b *glRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gl.Viewport(0, 0, int32(width), int32(height))
}

// SetPresentMode is a no-op: the swap interval belongs to the window's GL context.
func (b *glRendererBackendImpl) SetPresentMode(mode PresentMode) {}

func (b *glRendererBackendImpl) ClipSpace() camera.ClipSpace {
	return camera.ClipSpaceNegOneToOne
}

func (b *glRendererBackendImpl) SetCamera(view, projection mgl32.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = view
	b.projection = projection
}

func (b *glRendererBackendImpl) SetFillMode(mode FillMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fillMode = mode
}

func (b *glRendererBackendImpl) SetLighting(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lighting = enabled
}

func (b *glRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&b.projection[0])

	// The light position is transformed by the modelview in effect when it is set,
	// so it goes in under identity to stay fixed relative to the eye.
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.Lightfv(gl.LIGHT0, gl.POSITION, &LightPosition[0])
	gl.LoadMatrixf(&b.view[0])

	if b.lighting {
		gl.Enable(gl.LIGHTING)
	} else {
		gl.Disable(gl.LIGHTING)
	}
	if b.fillMode == FillModeLine {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.Color3f(1, 1, 1)
	return nil
}

func (b *glRendererBackendImpl) DrawImmediateStrip(vertices []grid.Vertex) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gl.Begin(gl.TRIANGLE_STRIP)
	for i := range vertices {
		gl.Normal3fv(&vertices[i].Normal[0])
		gl.Vertex3fv(&vertices[i].Position[0])
	}
	gl.End()
	return nil
}

func (b *glRendererBackendImpl) DrawClientStrip(vertices []grid.Vertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.EnableClientState(gl.NORMAL_ARRAY)

	gl.VertexPointer(3, gl.FLOAT, int32(grid.VertexStride), unsafe.Pointer(&vertices[0].Position[0]))
	gl.NormalPointer(gl.FLOAT, int32(grid.VertexStride), unsafe.Pointer(&vertices[0].Normal[0]))
	gl.DrawElements(gl.TRIANGLE_STRIP, int32(len(indices)), gl.UNSIGNED_INT, gl.Ptr(indices))

	gl.DisableClientState(gl.VERTEX_ARRAY)
	gl.DisableClientState(gl.NORMAL_ARRAY)
	return nil
}

func (b *glRendererBackendImpl) CreateMeshBuffers(mesh *grid.Mesh) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mb := &glMeshBuffers{size: len(mesh.Vertices) * grid.VertexStride}

	gl.GenBuffers(1, &mb.vbo)
	gl.GenBuffers(1, &mb.ibo)

	// Vertex data is rewritten every frame through glMapBuffer.
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, mb.size, gl.Ptr(mesh.Vertices), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ibo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*grid.IndexSize, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	if err := drainGLErrors(); err != nil {
		gl.DeleteBuffers(1, &mb.vbo)
		gl.DeleteBuffers(1, &mb.ibo)
		return nil, err
	}
	return mb, nil
}

func (b *glRendererBackendImpl) MapVertices(handle any) ([]byte, error) {
	mb := handle.(*glMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	// Blocks if the GPU is still reading the buffer from the previous frame.
	ptr := gl.MapBuffer(gl.ARRAY_BUFFER, gl.WRITE_ONLY)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if ptr == nil {
		if err := drainGLErrors(); err != nil {
			return nil, fmt.Errorf("glMapBuffer failed: %w", err)
		}
		return nil, errors.New("glMapBuffer returned nil")
	}
	return unsafe.Slice((*byte)(ptr), mb.size), nil
}

func (b *glRendererBackendImpl) UnmapVertices(handle any) error {
	mb := handle.(*glMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	ok := gl.UnmapBuffer(gl.ARRAY_BUFFER)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if !ok {
		// The buffer contents were lost (e.g. mode switch); the next map rewrites every vertex.
		return errors.New("glUnmapBuffer reported corrupted buffer contents")
	}
	return nil
}

func (b *glRendererBackendImpl) DrawBufferStrip(handle any, firstIndex, count int) error {
	mb := handle.(*glMeshBuffers)

	b.mu.Lock()
	defer b.mu.Unlock()

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ibo)
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.EnableClientState(gl.NORMAL_ARRAY)

	gl.VertexPointer(3, gl.FLOAT, int32(grid.VertexStride), gl.PtrOffset(grid.PositionOffset))
	gl.NormalPointer(gl.FLOAT, int32(grid.VertexStride), gl.PtrOffset(grid.NormalOffset))
	gl.DrawElements(gl.TRIANGLE_STRIP, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(firstIndex*grid.IndexSize))

	gl.DisableClientState(gl.VERTEX_ARRAY)
	gl.DisableClientState(gl.NORMAL_ARRAY)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return nil
}

func (b *glRendererBackendImpl) ReleaseMeshBuffers(handle any) {
	mb, ok := handle.(*glMeshBuffers)
	if !ok || mb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	gl.DeleteBuffers(1, &mb.vbo)
	gl.DeleteBuffers(1, &mb.ibo)
}

func (b *glRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gl.Flush()
	return drainGLErrors()
}

func (b *glRendererBackendImpl) Present() {
	if b.swap != nil {
		b.swap()
	}
}

func (b *glRendererBackendImpl) Release() {}

// drainGLErrors collects every pending glGetError code into one error, or nil if none.
func drainGLErrors() error {
	var errs []error
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = append(errs, fmt.Errorf("gl error 0x%04X", code))
	}
	return errors.Join(errs...)
}
