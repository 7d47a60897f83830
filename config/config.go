// Package config loads the wave grid configuration from a TOML file and layers command line
// flags over it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-wave/common"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
	"github.com/Carmen-Shannon/oxy-wave/engine/wave"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned by Validate for out-of-range or unknown values.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete application configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Grid     GridConfig     `toml:"grid"`
	Waves    wave.Set       `toml:"waves"`
	Render   RenderConfig   `toml:"render"`
	Camera   CameraConfig   `toml:"camera"`
	Profiler ProfilerConfig `toml:"profiler"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// WindowConfig sizes and names the window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// GridConfig configures the mesh generator.
type GridConfig struct {
	Rows    int     `toml:"rows"`
	Cols    int     `toml:"cols"`
	ExtentX float32 `toml:"extent_x"`
	ExtentZ float32 `toml:"extent_z"`
	OriginX float32 `toml:"origin_x"`
	OriginZ float32 `toml:"origin_z"`
	Normals string  `toml:"normals"`
	Workers int     `toml:"workers"`
}

// RenderConfig selects the backend, submission mode and initial render state.
type RenderConfig struct {
	Backend    string  `toml:"backend"`
	Mode       string  `toml:"mode"`
	Fill       string  `toml:"fill"`
	Lighting   bool    `toml:"lighting"`
	VSync      bool    `toml:"vsync"`
	MSAA       bool    `toml:"msaa"`
	FrameLimit float64 `toml:"frame_limit"`
	Software   bool    `toml:"software"`
	Static     bool    `toml:"static"`
}

// CameraConfig places the orbit camera. Angles are in degrees.
type CameraConfig struct {
	Distance float32 `toml:"distance"`
	Pitch    float32 `toml:"pitch"`
	Heading  float32 `toml:"heading"`
	Fov      float32 `toml:"fov"`
}

// ProfilerConfig enables the periodic statistics log line.
type ProfilerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// SnapshotConfig configures the headless heightmap export.
type SnapshotConfig struct {
	Path string  `toml:"path"`
	Time float32 `toml:"time"`
	Size int     `toml:"size"`
}

// Default returns the built-in configuration: a 50x50 grid over [-1, 1] animated by the
// dominant default wave, drawn with buffer objects on WebGPU.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "Wave Grid", Width: 1024, Height: 768},
		Grid: GridConfig{
			Rows:    50,
			Cols:    50,
			ExtentX: 2,
			ExtentZ: 2,
			OriginX: -1,
			OriginZ: -1,
			Normals: grid.NormalModeSurface.String(),
			Workers: 1,
		},
		Waves: wave.Default().Dominant(),
		Render: RenderConfig{
			Backend:  renderer.BackendTypeWGPU.String(),
			Mode:     submission.ModeBufferObject.String(),
			Fill:     renderer.FillModeFill.String(),
			Lighting: true,
			VSync:    true,
			MSAA:     true,
		},
		Camera:   CameraConfig{Distance: 7, Pitch: 30, Fov: 45},
		Profiler: ProfilerConfig{Interval: "1s"},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep their default
// values; unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read or decoded
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if decoding fails or a key is unknown
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	// a [[waves]] table in the file replaces the default set instead of merging into it
	cfg.Waves = nil
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Waves == nil {
		cfg.Waves = Default().Waves
	}
	return cfg, nil
}

// Write encodes the configuration as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an error if encoding fails
func (c Config) Write(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// Flags holds command line overrides. Zero values leave the configuration untouched.
type Flags struct {
	Backend      string
	Mode         string
	Normals      string
	Rows         int
	Cols         int
	Profile      bool
	Snapshot     string
	SnapshotTime float32
	SnapshotSize int
}

// Resolve layers f over c and returns the result.
//
// Parameters:
//   - f: the command line overrides
//
// Returns:
//   - Config: the resolved configuration
func (c Config) Resolve(f Flags) Config {
	c.Render.Backend = common.Coalesce(f.Backend, c.Render.Backend)
	c.Render.Mode = common.Coalesce(f.Mode, c.Render.Mode)
	c.Grid.Normals = common.Coalesce(f.Normals, c.Grid.Normals)
	c.Grid.Rows = common.Coalesce(f.Rows, c.Grid.Rows)
	c.Grid.Cols = common.Coalesce(f.Cols, c.Grid.Cols)
	c.Profiler.Enabled = f.Profile || c.Profiler.Enabled
	c.Snapshot.Path = common.Coalesce(f.Snapshot, c.Snapshot.Path)
	c.Snapshot.Time = common.Coalesce(f.SnapshotTime, c.Snapshot.Time)
	c.Snapshot.Size = common.Coalesce(f.SnapshotSize, c.Snapshot.Size)
	return c
}

// Validate checks every field that has a constrained range or a fixed set of names.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with every problem found, or nil
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Grid.Rows < 1 {
		invalid("grid.rows %d < 1", c.Grid.Rows)
	}
	if c.Grid.Cols < 2 {
		invalid("grid.cols %d < 2", c.Grid.Cols)
	}
	if c.Grid.ExtentX <= 0 || c.Grid.ExtentZ <= 0 {
		invalid("grid extent %gx%g", c.Grid.ExtentX, c.Grid.ExtentZ)
	}
	if c.Grid.Workers < 0 {
		invalid("grid.workers %d", c.Grid.Workers)
	}
	if len(c.Waves) == 0 {
		invalid("no waves")
	}
	if _, err := grid.ParseNormalMode(c.Grid.Normals); err != nil {
		invalid("%v", err)
	}
	if _, err := renderer.ParseBackendType(c.Render.Backend); err != nil {
		invalid("%v", err)
	}
	if _, err := submission.ParseMode(c.Render.Mode); err != nil {
		invalid("%v", err)
	}
	if _, err := renderer.ParseFillMode(c.Render.Fill); err != nil {
		invalid("%v", err)
	}
	if c.Render.FrameLimit < 0 {
		invalid("render.frame_limit %g", c.Render.FrameLimit)
	}
	if c.Camera.Distance <= 0 {
		invalid("camera.distance %g", c.Camera.Distance)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		invalid("camera.fov %g", c.Camera.Fov)
	}
	if _, err := c.ProfilerInterval(); err != nil {
		invalid("%v", err)
	}
	if c.Snapshot.Path != "" && c.Snapshot.Size < 0 {
		invalid("snapshot.size %d", c.Snapshot.Size)
	}
	return errors.Join(errs...)
}
