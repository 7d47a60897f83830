package engine

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-wave/engine/profiler"
	"github.com/Carmen-Shannon/oxy-wave/engine/window"
)

// engine implements the Engine interface.
// Drives the frame callback from the window's message loop on the calling thread.
type engine struct {
	mu *sync.Mutex

	running bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback  func(now, deltaTime float32)
	resizeCallback func(width, height int)
	keyCallback    func(keyCode uint32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	clock            func() time.Time
	start            time.Time
	lastFrame        time.Time
}

// Engine runs the frame loop. Everything happens on the thread that calls Run: window
// messages are pumped, then the frame callback runs, then the optional frame cap sleeps.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Profiler returns the engine's profiler so frame callbacks can record timings into it.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler instance
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called once per frame.
	//
	// Parameters:
	//   - callback: receives the time since Run started and the time since the previous
	//     frame, both in seconds
	SetFrameCallback(callback func(now, deltaTime float32))

	// SetResizeCallback registers the function called when the window framebuffer changes size.
	//
	// Parameters:
	//   - callback: receives the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback registers the function called on key press and repeat.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyCallback(callback func(keyCode uint32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the frame loop and blocks until the window closes or Quit is called.
	Run()

	// Running reports whether Run is executing.
	Running() bool

	// Quit stops the frame loop after the current frame.
	// Safe to call multiple times and from inside the frame callback.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		quitChannel:      make(chan struct{}),
		profilingEnabled: false,
		clock:            time.Now,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.clock))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.resizeCallback != nil {
				e.resizeCallback(width, height)
			}
		})
		e.window.SetKeyDownCallback(func(keyCode uint32) {
			if e.keyCallback != nil {
				e.keyCallback(keyCode)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(now, deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetKeyCallback(callback func(keyCode uint32)) {
	e.keyCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() {
	if e.window == nil {
		log.Printf("[Engine] no window configured")
		return
	}

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	e.start = e.clock()
	e.lastFrame = e.start
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
}

func (e *engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// frame runs one iteration of the loop. Called by the window after each message pump.
// Recovers from panics in the frame callback, logs them and quits.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		return
	default:
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame callback recovered from panic: %v", r)
			e.Quit()
		}
	}()

	frameStart := e.clock()
	dt := float32(frameStart.Sub(e.lastFrame).Seconds())
	e.lastFrame = frameStart

	if e.frameCallback != nil {
		e.frameCallback(float32(frameStart.Sub(e.start).Seconds()), dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		elapsed := e.clock().Sub(frameStart)
		if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
			time.Sleep(remaining)
		}
	}
}
