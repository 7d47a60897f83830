package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-wave/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow pumps up to maxFrames iterations or until closed.
type fakeWindow struct {
	maxFrames int
	frames    int
	closed    bool

	onUpdate func()
	onResize func(width, height int)
	onKey    func(keyCode uint32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetKeyDownCallback(callback func(keyCode uint32))   { w.onKey = callback }
func (w *fakeWindow) SetKeyUpCallback(callback func(keyCode uint32))     {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor         { return nil }
func (w *fakeWindow) MakeContextCurrent()                                {}
func (w *fakeWindow) SwapBuffers()                                       {}
func (w *fakeWindow) SetSwapInterval(interval int)                       {}
func (w *fakeWindow) ClientAPI() window.ClientAPI                        { return window.ClientAPINone }
func (w *fakeWindow) IsRunning() bool                                    { return !w.closed && w.frames < w.maxFrames }
func (w *fakeWindow) RequestClose()                                      { w.closed = true }
func (w *fakeWindow) Close() error                                       { w.closed = true; return nil }
func (w *fakeWindow) Width() int                                         { return 640 }
func (w *fakeWindow) Height() int                                        { return 480 }

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() {
		w.frames++
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

// stepClock advances by step on every read.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestRunCallsFramePerIteration(t *testing.T) {
	w := &fakeWindow{maxFrames: 5}
	clock := &stepClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	e := NewEngine(WithWindow(w), WithClock(clock.now))

	var nows []float32
	e.SetFrameCallback(func(now, dt float32) {
		assert.Greater(t, dt, float32(0))
		nows = append(nows, now)
	})
	e.Run()

	require.Len(t, nows, 5)
	for i := 1; i < len(nows); i++ {
		assert.Greater(t, nows[i], nows[i-1])
	}
	assert.False(t, e.Running())
}

func TestQuitFromFrameStopsLoop(t *testing.T) {
	w := &fakeWindow{maxFrames: 100}
	e := NewEngine(WithWindow(w))

	frames := 0
	e.SetFrameCallback(func(now, dt float32) {
		frames++
		if frames == 3 {
			e.Quit()
			e.Quit()
		}
	})
	e.Run()

	assert.Equal(t, 3, frames)
	assert.True(t, w.closed)
}

func TestPanicInFrameQuits(t *testing.T) {
	w := &fakeWindow{maxFrames: 100}
	e := NewEngine(WithWindow(w))

	frames := 0
	e.SetFrameCallback(func(now, dt float32) {
		frames++
		panic("device lost")
	})

	assert.NotPanics(t, e.Run)
	assert.Equal(t, 1, frames)
	assert.True(t, w.closed)
}

func TestCallbacksForwarded(t *testing.T) {
	w := &fakeWindow{}
	e := NewEngine(WithWindow(w))

	var key uint32
	var width, height int
	e.SetKeyCallback(func(keyCode uint32) { key = keyCode })
	e.SetResizeCallback(func(wd, ht int) { width, height = wd, ht })

	w.onKey(70)
	w.onResize(800, 600)
	assert.Equal(t, uint32(70), key)
	assert.Equal(t, 800, width)
	assert.Equal(t, 600, height)
}

func TestFrameLimit(t *testing.T) {
	e := NewEngine(WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestRunWithoutWindow(t *testing.T) {
	e := NewEngine()
	assert.NotPanics(t, e.Run)
	assert.NotNil(t, e.Profiler())
}
