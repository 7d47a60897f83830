package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer/submission"
	"github.com/Carmen-Shannon/oxy-wave/engine/wave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, wave.Default().Dominant(), cfg.Waves)
	assert.Equal(t, 50, cfg.Grid.Rows)
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	src := `
[grid]
rows = 12
normals = "legacy"

[render]
backend = "gl"
mode = "client_array"
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12, cfg.Grid.Rows)
	assert.Equal(t, 50, cfg.Grid.Cols)
	assert.Equal(t, "legacy", cfg.Grid.Normals)
	assert.Equal(t, float32(2), cfg.Grid.ExtentX)
	assert.Equal(t, Default().Waves, cfg.Waves)

	bt, err := cfg.BackendType()
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeGL, bt)
	mode, err := cfg.SubmissionMode()
	require.NoError(t, err)
	assert.Equal(t, submission.ModeClientArray, mode)
}

func TestDecodeWavesReplaceDefaults(t *testing.T) {
	src := `
[[waves]]
amplitude = 0.5
wavenumber = 1.0
angular_frequency = 2.0

[[waves]]
amplitude = 0.1
wavenumber = 3.0
angular_frequency = 0.5
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, wave.Set{
		{Amplitude: 0.5, Wavenumber: 1, AngularFrequency: 2},
		{Amplitude: 0.1, Wavenumber: 3, AngularFrequency: 0.5},
	}, cfg.Waves)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[grid]\nrowz = 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Decode(strings.NewReader("[grid\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 640\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))

	cfg, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Default().Resolve(Flags{Backend: "gl", Rows: 80, Profile: true, SnapshotTime: 1.5})

	assert.Equal(t, "gl", cfg.Render.Backend)
	assert.Equal(t, 80, cfg.Grid.Rows)
	assert.Equal(t, 50, cfg.Grid.Cols)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, float32(1.5), cfg.Snapshot.Time)
	assert.Equal(t, Default().Render.Mode, cfg.Render.Mode)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"rows":     func(c *Config) { c.Grid.Rows = 0 },
		"cols":     func(c *Config) { c.Grid.Cols = 1 },
		"extent":   func(c *Config) { c.Grid.ExtentZ = 0 },
		"waves":    func(c *Config) { c.Waves = nil },
		"normals":  func(c *Config) { c.Grid.Normals = "flat" },
		"backend":  func(c *Config) { c.Render.Backend = "metal" },
		"mode":     func(c *Config) { c.Render.Mode = "display_list" },
		"fill":     func(c *Config) { c.Render.Fill = "points" },
		"window":   func(c *Config) { c.Window.Width = 0 },
		"distance": func(c *Config) { c.Camera.Distance = 0 },
		"fov":      func(c *Config) { c.Camera.Fov = 180 },
		"interval": func(c *Config) { c.Profiler.Interval = "soon" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestGeneratorOptions(t *testing.T) {
	cfg := Default()
	cfg.Grid.ExtentX, cfg.Grid.ExtentZ = 20, 10
	cfg.Grid.OriginX, cfg.Grid.OriginZ = -10, -5
	cfg.Grid.Normals = "legacy"

	opts, err := cfg.GeneratorOptions()
	require.NoError(t, err)
	gen := grid.NewGenerator(opts...)

	assert.Equal(t, grid.NormalModeLegacy, gen.NormalMode())
	x, z := gen.Extent()
	assert.Equal(t, float32(20), x)
	assert.Equal(t, float32(10), z)

	mesh, err := gen.Build(2, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(-10), mesh.At(0, 0).Position[0])
	assert.Equal(t, float32(-5), mesh.At(0, 0).Position[2])
}

func TestProfilerInterval(t *testing.T) {
	cfg := Default()
	cfg.Profiler.Interval = "250ms"
	d, err := cfg.ProfilerInterval()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	cfg.Profiler.Interval = ""
	d, err = cfg.ProfilerInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}
