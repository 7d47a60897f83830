package renderer

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GridShaderSource is the WGSL program used by the WebGPU backend to draw grid strips.
// Its VertexInput matches grid.Vertex and its Globals struct matches GPUGlobals.
//
//go:embed assets/grid.wgsl
var GridShaderSource string

// Light parameters shared by both backends. The light is positional and fixed in eye space.
var (
	LightAmbient  = [4]float32{.2, .2, .2, 1}
	LightDiffuse  = [4]float32{.7, .7, .7, 1}
	LightSpecular = [4]float32{1, 1, 1, 1}
	LightPosition = [4]float32{0, 0, 20, 5}
)

// GPUGlobals is the uniform block bound at group 0, binding 0 of the grid shader.
// Size: 160 bytes (std140 aligned, no padding required).
type GPUGlobals struct {
	View          mgl32.Mat4 // offset   0: world to eye
	Projection    mgl32.Mat4 // offset  64: eye to clip
	LightPosition [4]float32 // offset 128: homogeneous eye-space light position
	Params        [4]float32 // offset 144: x = lighting enabled (0 or 1)
}

// Size returns the size of the GPUGlobals struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// gridVertexLayout describes grid.Vertex to the WebGPU vertex stage.
func gridVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(grid.VertexStride),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         uint64(grid.PositionOffset),
				ShaderLocation: 0,
			},
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         uint64(grid.NormalOffset),
				ShaderLocation: 1,
			},
		},
	}
}
