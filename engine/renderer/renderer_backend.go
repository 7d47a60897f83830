package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeGL selects the fixed-function OpenGL 2.1 backend.
	BackendTypeGL

	// BackendTypeCustom marks a backend supplied by the caller through NewRendererWithBackend.
	BackendTypeCustom
)

// String returns the config name of the backend type.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeGL:
		return "gl"
	default:
		return "custom"
	}
}

// ParseBackendType maps a config name to a RendererBackendType.
//
// Parameters:
//   - s: "wgpu" (or empty) or "gl"
//
// Returns:
//   - RendererBackendType: the parsed backend type
//   - error: an error if the name is unknown
func ParseBackendType(s string) (RendererBackendType, error) {
	switch s {
	case "", "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	case "gl", "opengl":
		return BackendTypeGL, nil
	}
	return BackendTypeWGPU, fmt.Errorf("unknown renderer backend %q", s)
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4. The GL backend ignores it.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// FillMode selects between filled triangles and a wireframe.
type FillMode int

const (
	// FillModeFill rasterizes filled triangles.
	FillModeFill FillMode = iota

	// FillModeLine draws only the strip edges.
	FillModeLine
)

// String returns the config name of the fill mode.
func (f FillMode) String() string {
	if f == FillModeLine {
		return "line"
	}
	return "fill"
}

// Toggle returns the other fill mode.
func (f FillMode) Toggle() FillMode {
	if f == FillModeLine {
		return FillModeFill
	}
	return FillModeLine
}

// ParseFillMode maps a config name to a FillMode.
func ParseFillMode(s string) (FillMode, error) {
	switch s {
	case "", "fill":
		return FillModeFill, nil
	case "line", "wireframe":
		return FillModeLine, nil
	}
	return FillModeFill, fmt.Errorf("unknown fill mode %q", s)
}

// RendererBackend is the device API a Renderer drives. Frame-state and buffer-state validation
// happens in the Renderer, so backends may assume calls arrive in a legal order.
//
// Buffer handles returned by CreateMeshBuffers are opaque to the Renderer and passed back
// unchanged to the other buffer methods.
type RendererBackend interface {
	// ConfigureSurface resizes the drawable surface and any size-dependent attachments.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// ClipSpace reports the depth convention the backend's projection matrices must target.
	//
	// Returns:
	//   - camera.ClipSpace: the clip space convention
	ClipSpace() camera.ClipSpace

	// SetCamera stores the view and projection matrices applied to subsequent draws.
	SetCamera(view, projection mgl32.Mat4)

	// SetFillMode selects filled or wireframe rasterization for subsequent draws.
	SetFillMode(mode FillMode)

	// SetLighting enables or disables the light for subsequent draws.
	SetLighting(enabled bool)

	// BeginFrame acquires the next frame target and clears it.
	//
	// Returns:
	//   - error: an error if the frame target could not be acquired
	BeginFrame() error

	// DrawImmediateStrip draws a triangle strip from vertices collected one at a time.
	//
	// Parameters:
	//   - vertices: the strip vertices in submission order
	//
	// Returns:
	//   - error: a device error, if any
	DrawImmediateStrip(vertices []grid.Vertex) error

	// DrawClientStrip draws a triangle strip addressed by indices into a host vertex array.
	//
	// Parameters:
	//   - vertices: the full host vertex array
	//   - indices: the strip's indices into vertices
	//
	// Returns:
	//   - error: a device error, if any
	DrawClientStrip(vertices []grid.Vertex, indices []uint32) error

	// CreateMeshBuffers uploads a mesh's vertex and index arrays into device buffers.
	//
	// Parameters:
	//   - mesh: the mesh to upload
	//
	// Returns:
	//   - any: the backend buffer handle
	//   - error: an error if allocation fails
	CreateMeshBuffers(mesh *grid.Mesh) (any, error)

	// MapVertices maps the device vertex buffer into host memory for writing.
	// This may block until the device stops reading the buffer.
	//
	// Parameters:
	//   - handle: a handle returned by CreateMeshBuffers
	//
	// Returns:
	//   - []byte: the mapped range, valid until UnmapVertices
	//   - error: an error if mapping fails
	MapVertices(handle any) ([]byte, error)

	// UnmapVertices publishes the mapped range back to the device. Once it returns,
	// subsequent draws observe the written vertices.
	//
	// Parameters:
	//   - handle: a handle returned by CreateMeshBuffers
	//
	// Returns:
	//   - error: an error if unmapping fails
	UnmapVertices(handle any) error

	// DrawBufferStrip draws count indices starting at firstIndex from the device buffers.
	//
	// Parameters:
	//   - handle: a handle returned by CreateMeshBuffers
	//   - firstIndex: the first index of the strip in the index buffer
	//   - count: the number of indices in the strip
	//
	// Returns:
	//   - error: a device error, if any
	DrawBufferStrip(handle any, firstIndex, count int) error

	// ReleaseMeshBuffers frees the device buffers behind a handle.
	ReleaseMeshBuffers(handle any)

	// EndFrame finishes and submits the frame's commands.
	//
	// Returns:
	//   - error: device errors raised while recording or submitting the frame
	EndFrame() error

	// Present displays the finished frame.
	Present()

	// Release frees every device resource held by the backend.
	Release()
}
