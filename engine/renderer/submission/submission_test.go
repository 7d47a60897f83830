package submission

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawFrame attaches a strategy for mode to a fresh rows x cols mesh, updates it at t and
// records one frame.
func drawFrame(t *testing.T, mode Mode, rows, cols int, at float32) *renderertest.Backend {
	t.Helper()

	gen := grid.NewGenerator()
	mesh, err := gen.Build(rows, cols)
	require.NoError(t, err)

	r, rec := renderertest.NewRenderer()
	s, err := New(mode)
	require.NoError(t, err)
	require.Equal(t, mode, s.Mode())
	require.NoError(t, s.Attach(r, mesh))

	require.NoError(t, s.Update(gen, at))
	require.NoError(t, r.BeginFrame())
	require.NoError(t, s.Draw())
	require.NoError(t, r.EndFrame())
	return rec
}

func TestStrategiesDrawIdenticalStrips(t *testing.T) {
	want := drawFrame(t, ModeImmediate, 7, 5, 1.3).Strips()
	require.Len(t, want, 5)
	for _, strip := range want {
		assert.Len(t, strip, 2*(7+1))
	}

	for _, mode := range Modes[1:] {
		t.Run(mode.String(), func(t *testing.T) {
			assert.Equal(t, want, drawFrame(t, mode, 7, 5, 1.3).Strips())
		})
	}
}

func TestStripsFollowColumnPairs(t *testing.T) {
	gen := grid.NewGenerator()
	mesh, err := gen.Build(2, 2)
	require.NoError(t, err)

	strips := drawFrame(t, ModeClientArray, 2, 2, 0).Strips()
	require.Len(t, strips, 2)
	assert.Equal(t, *mesh.At(0, 0), strips[0][0])
	assert.Equal(t, *mesh.At(1, 0), strips[0][1])
	assert.Equal(t, *mesh.At(1, 2), strips[1][4])
	assert.Equal(t, *mesh.At(2, 2), strips[1][5])
}

func TestBufferObjectUnmapsBeforeDraw(t *testing.T) {
	rec := drawFrame(t, ModeBufferObject, 3, 4, 0.5)

	kinds := rec.Kinds()
	assert.Equal(t, []renderertest.EventKind{
		renderertest.EventCreateBuffers,
		renderertest.EventMap,
		renderertest.EventUnmap,
		renderertest.EventBeginFrame,
		renderertest.EventDrawBuffer,
		renderertest.EventDrawBuffer,
		renderertest.EventDrawBuffer,
		renderertest.EventDrawBuffer,
		renderertest.EventEndFrame,
	}, kinds)
}

func TestBufferObjectReattachReleasesOldBuffers(t *testing.T) {
	gen := grid.NewGenerator()
	r, rec := renderertest.NewRenderer()
	s, err := New(ModeBufferObject)
	require.NoError(t, err)

	mesh, err := gen.Build(4, 4)
	require.NoError(t, err)
	require.NoError(t, s.Attach(r, mesh))
	mesh, err = gen.Build(8, 8)
	require.NoError(t, err)
	require.NoError(t, s.Attach(r, mesh))

	assert.Equal(t, 1, rec.LiveBuffers())
	assert.Equal(t, 1, rec.Count(renderertest.EventReleaseBuffers))

	s.Release()
	assert.Equal(t, 0, rec.LiveBuffers())
	s.Release()
}

func TestBufferObjectMapFailure(t *testing.T) {
	gen := grid.NewGenerator()
	mesh, err := gen.Build(2, 2)
	require.NoError(t, err)

	r, rec := renderertest.NewRenderer()
	s, err := New(ModeBufferObject)
	require.NoError(t, err)
	require.NoError(t, s.Attach(r, mesh))

	boom := errors.New("device lost")
	rec.MapErr = boom
	assert.ErrorIs(t, s.Update(gen, 1), boom)

	// the next frame recovers
	assert.NoError(t, s.Update(gen, 1))
}

func TestHostUpdateMovesVertices(t *testing.T) {
	gen := grid.NewGenerator()
	mesh, err := gen.Build(4, 4)
	require.NoError(t, err)
	v := *mesh.At(1, 3)

	r, _ := renderertest.NewRenderer()
	s, err := New(ModeClientArray)
	require.NoError(t, err)
	require.NoError(t, s.Attach(r, mesh))
	require.NoError(t, s.Update(gen, 0.9))

	moved := *mesh.At(1, 3)
	assert.Equal(t, v.Position[0], moved.Position[0])
	assert.Equal(t, v.Position[2], moved.Position[2])
	assert.Equal(t, gen.Height(v.Position[0], v.Position[2], 0.9), moved.Position[1])
}

func TestUnattached(t *testing.T) {
	for _, mode := range Modes {
		s, err := New(mode)
		require.NoError(t, err)
		assert.ErrorIs(t, s.Draw(), ErrNotAttached)
		assert.ErrorIs(t, s.Update(grid.NewGenerator(), 0), ErrNotAttached)
		assert.ErrorIs(t, s.Attach(nil, nil), ErrNotAttached)
	}
}

func TestDrawErrorNamesStrip(t *testing.T) {
	gen := grid.NewGenerator()
	mesh, err := gen.Build(2, 3)
	require.NoError(t, err)

	r, rec := renderertest.NewRenderer()
	s, err := New(ModeClientArray)
	require.NoError(t, err)
	require.NoError(t, s.Attach(r, mesh))

	boom := errors.New("out of memory")
	rec.DrawErr = boom
	require.NoError(t, r.BeginFrame())
	err = s.Draw()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "strip 0")
}

func TestModeCycling(t *testing.T) {
	m := ModeImmediate
	seen := []Mode{m}
	for range len(Modes) - 1 {
		m = m.Next()
		seen = append(seen, m)
	}
	assert.Equal(t, Modes, seen)
	assert.Equal(t, ModeImmediate, m.Next())
	assert.False(t, Mode(9).Valid())

	_, err := New(Mode(9))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBufferObject, got)

	_, err = ParseMode("display_list")
	assert.Error(t, err)
}
