package config

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
	"github.com/go-gl/mathgl/mgl32"
)

// ProfilerInterval parses the profiler logging interval. Empty means one second.
func (c Config) ProfilerInterval() (time.Duration, error) {
	if c.Profiler.Interval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.Profiler.Interval)
	if err != nil {
		return 0, fmt.Errorf("profiler.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("profiler.interval %s is not positive", d)
	}
	return d, nil
}

// GeneratorOptions translates the grid and wave sections into generator options.
//
// Returns:
//   - []grid.GeneratorBuilderOption: the options for grid.NewGenerator
//   - error: an error if the normal mode is unknown
func (c Config) GeneratorOptions() ([]grid.GeneratorBuilderOption, error) {
	normals, err := grid.ParseNormalMode(c.Grid.Normals)
	if err != nil {
		return nil, err
	}
	return []grid.GeneratorBuilderOption{
		grid.WithExtent(c.Grid.ExtentX, c.Grid.ExtentZ),
		grid.WithOrigin(c.Grid.OriginX, c.Grid.OriginZ),
		grid.WithWaves(c.Waves),
		grid.WithNormalMode(normals),
		grid.WithUpdateWorkers(c.Grid.Workers),
	}, nil
}

// CameraOptions translates the camera section and window size into camera options.
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	opts := []camera.CameraBuilderOption{
		camera.WithOrbit(c.Camera.Distance, c.Camera.Pitch, c.Camera.Heading),
		camera.WithFov(mgl32.DegToRad(c.Camera.Fov)),
	}
	if c.Window.Height > 0 {
		opts = append(opts, camera.WithAspect(float32(c.Window.Width)/float32(c.Window.Height)))
	}
	return opts
}

// RendererOptions translates the render section into renderer options.
//
// Returns:
//   - []renderer.RendererBuilderOption: the options for renderer.NewRenderer
//   - error: an error if the fill mode is unknown
func (c Config) RendererOptions() ([]renderer.RendererBuilderOption, error) {
	fill, err := renderer.ParseFillMode(c.Render.Fill)
	if err != nil {
		return nil, err
	}
	present := renderer.PresentModeVSync
	if !c.Render.VSync {
		present = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAAOff
	if c.Render.MSAA {
		msaa = renderer.MSAA4x
	}
	return []renderer.RendererBuilderOption{
		renderer.WithFillMode(fill),
		renderer.WithLighting(c.Render.Lighting),
		renderer.WithPresentMode(present),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(c.Render.Software),
	}, nil
}

// BackendType parses the render backend name.
func (c Config) BackendType() (renderer.RendererBackendType, error) {
	return renderer.ParseBackendType(c.Render.Backend)
}

// SubmissionMode parses the render mode name.
func (c Config) SubmissionMode() (submission.Mode, error) {
	return submission.ParseMode(c.Render.Mode)
}
