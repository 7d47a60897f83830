package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/renderertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMesh(t *testing.T, rows, cols int) *grid.Mesh {
	t.Helper()
	mesh, err := grid.NewGenerator().Build(rows, cols)
	require.NoError(t, err)
	return mesh
}

func TestDrawOutsideFrame(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	mesh := buildMesh(t, 2, 2)

	assert.ErrorIs(t, r.BeginStrip(), renderer.ErrNoFrame)
	assert.ErrorIs(t, r.DrawClientStrip(mesh.Vertices, mesh.Strip(0)), renderer.ErrNoFrame)

	b, err := r.CreateMeshBuffers(mesh)
	require.NoError(t, err)
	assert.ErrorIs(t, r.DrawBufferStrip(b, 0, mesh.StripLength()), renderer.ErrNoFrame)
	assert.ErrorIs(t, r.EndFrame(), renderer.ErrNoFrame)
}

func TestFrameLifecycle(t *testing.T) {
	r, rec := renderertest.NewRenderer()

	require.NoError(t, r.BeginFrame())
	assert.True(t, r.InFrame())
	assert.ErrorIs(t, r.BeginFrame(), renderer.ErrFrameInProgress)
	require.NoError(t, r.EndFrame())
	assert.False(t, r.InFrame())
	r.Present()

	assert.Equal(t, []renderertest.EventKind{
		renderertest.EventBeginFrame,
		renderertest.EventEndFrame,
		renderertest.EventPresent,
	}, rec.Kinds())
}

func TestImmediateStrip(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	require.NoError(t, r.BeginFrame())

	require.NoError(t, r.BeginStrip())
	assert.ErrorIs(t, r.BeginStrip(), renderer.ErrStripState)
	r.Vertex(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	r.Vertex(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	r.Vertex(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, r.EndStrip())
	assert.ErrorIs(t, r.EndStrip(), renderer.ErrStripState)

	// strips with fewer than three vertices draw nothing
	require.NoError(t, r.BeginStrip())
	r.Vertex(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, r.EndStrip())
	require.NoError(t, r.EndFrame())

	strips := rec.Strips()
	require.Len(t, strips, 1)
	assert.Len(t, strips[0], 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, strips[0][1].Position)
}

func TestVertexOutsideStripIgnored(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	require.NoError(t, r.BeginFrame())
	r.Vertex(mgl32.Vec3{}, mgl32.Vec3{})
	require.NoError(t, r.EndFrame())
	assert.Empty(t, rec.Strips())
}

func TestMapUnmapRules(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	mesh := buildMesh(t, 3, 4)

	b, err := r.CreateMeshBuffers(mesh)
	require.NoError(t, err)
	assert.Equal(t, mesh.Layout(), b.Layout())

	assert.ErrorIs(t, r.UnmapVertices(b), renderer.ErrNotMapped)

	vertices, err := r.MapVertices(b)
	require.NoError(t, err)
	assert.Len(t, vertices, len(mesh.Vertices))
	assert.Equal(t, mesh.Vertices, vertices)
	assert.True(t, b.Mapped())

	_, err = r.MapVertices(b)
	assert.ErrorIs(t, err, renderer.ErrAlreadyMapped)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.DrawBufferStrip(b, 0, mesh.StripLength()), renderer.ErrBufferMapped)
	require.NoError(t, r.UnmapVertices(b))
	assert.False(t, b.Mapped())
	assert.NoError(t, r.DrawBufferStrip(b, 0, mesh.StripLength()))
	require.NoError(t, r.EndFrame())
}

func TestMappedWritesReachDraw(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	mesh := buildMesh(t, 1, 2)

	b, err := r.CreateMeshBuffers(mesh)
	require.NoError(t, err)

	vertices, err := r.MapVertices(b)
	require.NoError(t, err)
	vertices[0].Position[1] = 42
	require.NoError(t, r.UnmapVertices(b))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawBufferStrip(b, mesh.StripOffset(0), mesh.StripLength()))
	require.NoError(t, r.EndFrame())

	strips := rec.Strips()
	require.Len(t, strips, 1)
	assert.Equal(t, float32(42), strips[0][0].Position[1])
}

func TestDrawBufferStripRange(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	mesh := buildMesh(t, 2, 2)
	b, err := r.CreateMeshBuffers(mesh)
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.DrawBufferStrip(b, len(mesh.Indices)-2, 6), renderer.ErrInvalidBuffers)
	assert.ErrorIs(t, r.DrawBufferStrip(b, -1, 3), renderer.ErrInvalidBuffers)
	require.NoError(t, r.EndFrame())
}

func TestReleasedAndForeignBuffers(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	other, _ := renderertest.NewRenderer()
	mesh := buildMesh(t, 2, 2)

	b, err := r.CreateMeshBuffers(mesh)
	require.NoError(t, err)

	_, err = other.MapVertices(b)
	assert.ErrorIs(t, err, renderer.ErrInvalidBuffers)

	r.ReleaseMeshBuffers(b)
	r.ReleaseMeshBuffers(b)
	assert.Equal(t, 1, rec.Count(renderertest.EventReleaseBuffers))
	assert.Equal(t, 0, rec.LiveBuffers())

	_, err = r.MapVertices(b)
	assert.ErrorIs(t, err, renderer.ErrInvalidBuffers)
	_, err = r.MapVertices(nil)
	assert.ErrorIs(t, err, renderer.ErrInvalidBuffers)
}

func TestCreateMeshBuffersRejectsInvalidMesh(t *testing.T) {
	r, _ := renderertest.NewRenderer()

	_, err := r.CreateMeshBuffers(nil)
	assert.ErrorIs(t, err, renderer.ErrInvalidBuffers)

	mesh := buildMesh(t, 2, 2)
	mesh.Indices[0] = 1000
	_, err = r.CreateMeshBuffers(mesh)
	assert.ErrorIs(t, err, renderer.ErrInvalidBuffers)
}

func TestMapErrorLeavesBufferUnmapped(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	b, err := r.CreateMeshBuffers(buildMesh(t, 2, 2))
	require.NoError(t, err)

	boom := errors.New("device lost")
	rec.MapErr = boom
	_, err = r.MapVertices(b)
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.Mapped())
}

func TestReleaseFreesLiveBuffers(t *testing.T) {
	r, rec := renderertest.NewRenderer()
	_, err := r.CreateMeshBuffers(buildMesh(t, 2, 2))
	require.NoError(t, err)
	_, err = r.CreateMeshBuffers(buildMesh(t, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, rec.LiveBuffers())

	r.Release()
	assert.Equal(t, 0, rec.LiveBuffers())
}

func TestOptionsReachBackend(t *testing.T) {
	r, rec := renderertest.NewRenderer(renderer.WithFillMode(renderer.FillModeLine), renderer.WithLighting(false))

	assert.Equal(t, renderer.FillModeLine, rec.Fill)
	assert.False(t, rec.Light)
	assert.Equal(t, 640, rec.Width)

	r.SetFillMode(r.FillMode().Toggle())
	assert.Equal(t, renderer.FillModeFill, rec.Fill)
	r.SetLighting(true)
	assert.True(t, r.Lighting())
	assert.True(t, rec.Light)

	r.Resize(0, 100)
	assert.Equal(t, 640, rec.Width)
	r.Resize(800, 600)
	assert.Equal(t, 800, rec.Width)
	assert.Equal(t, renderer.BackendTypeCustom, r.BackendType())
}

func TestParseHelpers(t *testing.T) {
	bt, err := renderer.ParseBackendType("opengl")
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeGL, bt)
	bt, err = renderer.ParseBackendType("")
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeWGPU, bt)
	_, err = renderer.ParseBackendType("vulkan")
	assert.Error(t, err)

	fm, err := renderer.ParseFillMode("line")
	require.NoError(t, err)
	assert.Equal(t, renderer.FillModeLine, fm)
	assert.Equal(t, renderer.FillModeFill, fm.Toggle())
}
