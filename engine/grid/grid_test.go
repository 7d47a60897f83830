package grid

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-wave/engine/wave"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCounts(t *testing.T) {
	g := NewGenerator()
	for _, dim := range [][2]int{{1, 2}, {2, 2}, {7, 3}, {40, 40}, {100, 10}} {
		m, err := g.Build(dim[0], dim[1])
		require.NoError(t, err)
		assert.Len(t, m.Vertices, (dim[0]+1)*(dim[1]+1))
		assert.Len(t, m.Indices, dim[1]*(dim[0]+1)*2)
		assert.NoError(t, m.Validate())
	}
}

func TestBuildSmallGrid(t *testing.T) {
	g := NewGenerator()
	m, err := g.Build(2, 2)
	require.NoError(t, err)
	require.Len(t, m.Vertices, 9)
	require.Len(t, m.Indices, 12)

	v := m.At(0, 0)
	assert.Equal(t, float32(-1), v.Position[0])
	assert.Equal(t, float32(-1), v.Position[2])

	last := m.At(2, 2)
	assert.InDelta(t, 1, last.Position[0], 1e-6)
	assert.InDelta(t, 1, last.Position[2], 1e-6)

	assert.Equal(t, []uint32{0, 3, 1, 4, 2, 5}, m.Strip(0))
	assert.Equal(t, []uint32{3, 6, 4, 7, 5, 8}, m.Strip(1))
}

func TestStripStartsWithAdjacentColumns(t *testing.T) {
	g := NewGenerator()
	m, err := g.Build(5, 4)
	require.NoError(t, err)
	require.Equal(t, 4, m.StripCount())
	for i := range m.StripCount() {
		s := m.Strip(i)
		require.Len(t, s, m.StripLength())
		assert.Equal(t, uint32(m.VertexIndex(i, 0)), s[0])
		assert.Equal(t, uint32(m.VertexIndex(i+1, 0)), s[1])
	}
}

func TestBuildRejectsInvalidDimensions(t *testing.T) {
	g := NewGenerator()
	good, err := g.Build(4, 4)
	require.NoError(t, err)

	for _, dim := range [][2]int{{0, 4}, {4, 1}, {-3, 10}, {4, 0}} {
		m, err := g.Build(dim[0], dim[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
		assert.Nil(t, m)
		assert.Same(t, good, g.Mesh())
	}
}

func TestMeshNilBeforeBuild(t *testing.T) {
	g := NewGenerator()
	assert.Nil(t, g.Mesh())
	assert.NotPanics(t, func() { g.Update(1) })
}

func TestUpdateKeepsXZ(t *testing.T) {
	g := NewGenerator(WithWaves(wave.Default()))
	m, err := g.Build(10, 12)
	require.NoError(t, err)

	before := make([]Vertex, len(m.Vertices))
	copy(before, m.Vertices)

	g.Update(3.7)
	for i := range m.Vertices {
		assert.Equal(t, before[i].Position[0], m.Vertices[i].Position[0])
		assert.Equal(t, before[i].Position[2], m.Vertices[i].Position[2])
		x, z := m.Vertices[i].Position[0], m.Vertices[i].Position[2]
		assert.Equal(t, g.Height(x, z, 3.7), m.Vertices[i].Position[1])
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	g := NewGenerator()
	m, err := g.Build(8, 8)
	require.NoError(t, err)

	g.Update(1.5)
	first := make([]Vertex, len(m.Vertices))
	copy(first, m.Vertices)
	g.Update(1.5)
	assert.Equal(t, first, m.Vertices)
}

func TestUpdateIntoMatchesUpdate(t *testing.T) {
	g := NewGenerator()
	m, err := g.Build(6, 9)
	require.NoError(t, err)

	dst := make([]Vertex, len(m.Vertices))
	g.UpdateInto(dst, m.Vertices, 2.25)
	g.Update(2.25)
	assert.Equal(t, m.Vertices, dst)

	assert.Panics(t, func() { g.UpdateInto(dst[:3], m.Vertices, 0) })
}

func TestParallelUpdateMatchesSerial(t *testing.T) {
	serial := NewGenerator(WithWaves(wave.Default()))
	parallel := NewGenerator(WithWaves(wave.Default()), WithUpdateWorkers(4))

	ms, err := serial.Build(200, 200)
	require.NoError(t, err)
	mp, err := parallel.Build(200, 200)
	require.NoError(t, err)
	require.Greater(t, len(mp.Vertices), parallelThreshold)

	serial.Update(0.8)
	parallel.Update(0.8)
	for i := range ms.Vertices {
		require.Equal(t, math.Float32bits(ms.Vertices[i].Position[1]), math.Float32bits(mp.Vertices[i].Position[1]))
		require.Equal(t, ms.Vertices[i].Normal, mp.Vertices[i].Normal)
	}
}

func TestLegacyNormal(t *testing.T) {
	w := wave.Wave{Amplitude: 0.25, Wavenumber: 2 * math32.Pi, AngularFrequency: 0.25 * math32.Pi}
	g := NewGenerator(WithWaves(wave.Set{w}), WithNormalMode(NormalModeLegacy))
	n := g.Normal(0.3, 0.4, 1)
	assert.Equal(t, float32(1), n[1])
	assert.Equal(t, float32(0), n[2])
	assert.InDelta(t, -w.LegacySlope(0.3, 0.4, 1), n[0], 1e-6)
}

func TestSurfaceNormalIsUnitAndUpward(t *testing.T) {
	g := NewGenerator(WithWaves(wave.Default()))
	m, err := g.Build(16, 16)
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), 1e-5)
		assert.Greater(t, v.Normal[1], float32(0))
	}
}

func TestSurfaceNormalFlatAtOrigin(t *testing.T) {
	g := NewGenerator()
	n := g.Normal(0, 0, 0)
	assert.InDelta(t, 0, n[0], 1e-6)
	assert.InDelta(t, 1, n[1], 1e-6)
	assert.InDelta(t, 0, n[2], 1e-6)
}

func TestFlatGridWithoutWaves(t *testing.T) {
	g := NewGenerator(WithWaves(nil), WithExtent(20, 20), WithOrigin(-10, -10))
	m, err := g.Build(3, 3)
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.Equal(t, float32(0), v.Position[1])
	}
	assert.Equal(t, float32(-10), m.At(0, 0).Position[0])
	assert.InDelta(t, 10, m.At(3, 3).Position[2], 1e-5)
}

func TestLayout(t *testing.T) {
	g := NewGenerator()
	m, err := g.Build(3, 4)
	require.NoError(t, err)
	l := m.Layout()
	assert.Equal(t, 24, l.Stride)
	assert.Equal(t, 0, l.PositionOffset)
	assert.Equal(t, 12, l.NormalOffset)
	assert.Equal(t, 20, l.VertexCount)
	assert.Equal(t, 32, l.IndexCount)
	assert.Equal(t, 4, l.StripCount)
	assert.Equal(t, 8, l.StripLength)
	assert.Equal(t, 2*8*IndexSize, l.StripByteOffset(2))
}

func TestParseNormalMode(t *testing.T) {
	m, err := ParseNormalMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, NormalModeLegacy, m)
	assert.Equal(t, "legacy", m.String())

	m, err = ParseNormalMode("")
	require.NoError(t, err)
	assert.Equal(t, NormalModeSurface, m)

	_, err = ParseNormalMode("smooth")
	assert.Error(t, err)
}
