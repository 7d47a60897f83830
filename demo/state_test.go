package demo

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T, options ...StateBuilderOption) (*State, *renderertest.Backend) {
	t.Helper()
	r, rec := renderertest.NewRenderer()
	s, err := NewState(r, options...)
	require.NoError(t, err)
	return s, rec
}

func TestDefaults(t *testing.T) {
	s, rec := newState(t)
	assert.Equal(t, 50, s.Rows())
	assert.Equal(t, 50, s.Cols())
	assert.Equal(t, submission.ModeBufferObject, s.Mode())
	assert.Equal(t, 1, rec.LiveBuffers())
	assert.Len(t, s.Mesh().Vertices, 51*51)
}

func TestArrowKeysResize(t *testing.T) {
	s, _ := newState(t, WithResolution(20, 20))

	s.HandleKey(common.KeyUp)
	assert.Equal(t, 30, s.Rows())
	s.HandleKey(common.KeyRight)
	assert.Equal(t, 30, s.Cols())
	s.HandleKey(common.KeyLeft)
	s.HandleKey(common.KeyDown)
	assert.Equal(t, 20, s.Rows())
	assert.Equal(t, 20, s.Cols())
	assert.Len(t, s.Mesh().Vertices, 21*21)
}

func TestInvalidResizeKeepsMesh(t *testing.T) {
	s, rec := newState(t, WithResolution(5, 5))
	mesh := s.Mesh()

	s.HandleKey(common.KeyDown)
	s.HandleKey(common.KeyLeft)

	assert.Equal(t, 5, s.Rows())
	assert.Equal(t, 5, s.Cols())
	assert.Same(t, mesh, s.Mesh())
	assert.Equal(t, 1, rec.Count(renderertest.EventCreateBuffers))
}

func TestModeKeys(t *testing.T) {
	s, rec := newState(t, WithResolution(4, 4), WithMode(submission.ModeImmediate))
	assert.Equal(t, 0, rec.LiveBuffers())

	s.HandleKey(common.KeySpace)
	assert.Equal(t, submission.ModeIndexedImmediate, s.Mode())

	s.HandleKey(common.Key4)
	assert.Equal(t, submission.ModeBufferObject, s.Mode())
	assert.Equal(t, 1, rec.LiveBuffers())

	s.HandleKey(common.KeySpace)
	assert.Equal(t, submission.ModeImmediate, s.Mode())
	assert.Equal(t, 0, rec.LiveBuffers())

	s.HandleKey(common.Key3)
	assert.Equal(t, submission.ModeClientArray, s.Mode())
}

func TestToggleKeys(t *testing.T) {
	s, rec := newState(t, WithResolution(4, 4))

	s.HandleKey(common.KeyF)
	assert.Equal(t, renderer.FillModeLine, rec.Fill)
	s.HandleKey(common.KeyF)
	assert.Equal(t, renderer.FillModeFill, rec.Fill)

	s.HandleKey(common.KeyL)
	assert.False(t, rec.Light)

	s.HandleKey(common.KeyP)
	assert.True(t, s.Paused())
	s.HandleKey(common.KeyS)
	assert.True(t, s.Static())
}

func TestFrameSequence(t *testing.T) {
	s, rec := newState(t, WithResolution(3, 2))
	rec.Reset()

	require.NoError(t, s.Frame(0.5))
	assert.Equal(t, []renderertest.EventKind{
		renderertest.EventMap,
		renderertest.EventUnmap,
		renderertest.EventBeginFrame,
		renderertest.EventDrawBuffer,
		renderertest.EventDrawBuffer,
		renderertest.EventEndFrame,
		renderertest.EventPresent,
	}, rec.Kinds())
}

func TestPausedFrameDoesNothing(t *testing.T) {
	s, rec := newState(t, WithResolution(3, 2))
	rec.Reset()

	s.HandleKey(common.KeyP)
	require.NoError(t, s.Frame(1))
	assert.Empty(t, rec.Kinds())
}

func TestStaticFrameSkipsUpdate(t *testing.T) {
	s, rec := newState(t, WithResolution(3, 2), WithStatic(true))
	rec.Reset()

	require.NoError(t, s.Frame(1))
	assert.Zero(t, rec.Count(renderertest.EventMap))
	assert.Equal(t, 2, rec.Count(renderertest.EventDrawBuffer))
}

func TestFrameUsesNowForHeights(t *testing.T) {
	s, rec := newState(t, WithResolution(4, 4), WithMode(submission.ModeClientArray))
	rec.Reset()

	require.NoError(t, s.Frame(0.75))
	v := s.Mesh().At(2, 1)
	assert.Equal(t, s.gen.Height(v.Position[0], v.Position[2], 0.75), v.Position[1])
}

func TestResize(t *testing.T) {
	s, rec := newState(t)
	s.Resize(1000, 500)
	assert.Equal(t, 1000, rec.Width)
	assert.Equal(t, float32(2), s.Camera().Aspect())
}

func TestRelease(t *testing.T) {
	s, rec := newState(t, WithResolution(4, 4))
	s.Release()
	assert.Equal(t, 0, rec.LiveBuffers())
}

func TestNewStateRejectsInvalidResolution(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	_, err := NewState(r, WithResolution(0, 5))
	assert.Error(t, err)
	_, err = NewState(nil)
	assert.Error(t, err)
}

func TestReconfigure(t *testing.T) {
	s, rec := newState(t, WithResolution(6, 6))
	old := s.Mesh()

	gen := grid.NewGenerator(grid.WithNormalMode(grid.NormalModeLegacy), grid.WithExtent(20, 20), grid.WithOrigin(-10, -10))
	require.NoError(t, s.Reconfigure(gen))

	assert.NotSame(t, old, s.Mesh())
	assert.Equal(t, float32(-10), s.Mesh().At(0, 0).Position[0])
	assert.Equal(t, 1, rec.LiveBuffers())
	require.NoError(t, s.Frame(0.2))
}
