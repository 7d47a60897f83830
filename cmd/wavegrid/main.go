// Command wavegrid renders an animated sine-wave grid and lets the vertex submission strategy,
// grid resolution, fill mode and lighting be switched at runtime from the keyboard.
//
// With -snapshot it renders nothing and writes the grid's heightmap as PNG or WebP instead.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-wave/config"
	"github.com/Carmen-Shannon/oxy-wave/demo"
	"github.com/Carmen-Shannon/oxy-wave/engine"
	"github.com/Carmen-Shannon/oxy-wave/engine/camera"
	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/profiler"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
	"github.com/Carmen-Shannon/oxy-wave/engine/window"
	"github.com/Carmen-Shannon/oxy-wave/heightmap"
	"github.com/spf13/pflag"
)

func init() {
	// GLFW and both graphics APIs must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	var flags config.Flags
	configPath := pflag.StringP("config", "c", "", "TOML config file")
	watch := pflag.Bool("watch", false, "reload the grid and waves when the config file changes")
	dumpConfig := pflag.Bool("dump-config", false, "print the resolved config as TOML and exit")
	pflag.StringVarP(&flags.Backend, "backend", "b", "", "renderer backend: wgpu or gl")
	pflag.StringVarP(&flags.Mode, "mode", "m", "", "submission mode: immediate, indexed_immediate, client_array or buffer_object")
	pflag.StringVar(&flags.Normals, "normals", "", "normal mode: surface or legacy")
	pflag.IntVar(&flags.Rows, "rows", 0, "grid rows")
	pflag.IntVar(&flags.Cols, "cols", 0, "grid columns")
	pflag.BoolVar(&flags.Profile, "profile", false, "log frame statistics")
	pflag.StringVar(&flags.Snapshot, "snapshot", "", "write the heightmap to this .png or .webp file and exit")
	pflag.Float32Var(&flags.SnapshotTime, "snapshot-time", 0, "animation time of the snapshot in seconds")
	pflag.IntVar(&flags.SnapshotSize, "snapshot-size", 0, "snapshot edge length in pixels (0 = one pixel per vertex)")
	pflag.Parse()

	cfg, err := loadConfig(*configPath, flags)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	switch {
	case *dumpConfig:
		if err := cfg.Write(os.Stdout); err != nil {
			log.Fatalf("config: %v", err)
		}
	case cfg.Snapshot.Path != "":
		if err := snapshot(cfg); err != nil {
			log.Fatalf("snapshot: %v", err)
		}
	default:
		watchPath := ""
		if *watch {
			watchPath = *configPath
		}
		if err := run(cfg, watchPath); err != nil {
			log.Fatalf("wavegrid: %v", err)
		}
	}
}

func loadConfig(path string, flags config.Flags) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	cfg = cfg.Resolve(flags)
	return cfg, cfg.Validate()
}

func newGenerator(cfg config.Config) (grid.Generator, error) {
	opts, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}
	return grid.NewGenerator(opts...), nil
}

func snapshot(cfg config.Config) error {
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	img, err := heightmap.Capture(gen, cfg.Grid.Rows, cfg.Grid.Cols, cfg.Snapshot.Time, cfg.Snapshot.Size)
	if err != nil {
		return err
	}
	if err := heightmap.WriteFile(cfg.Snapshot.Path, img); err != nil {
		return err
	}
	log.Printf("[Heightmap] wrote %s (%dx%d, t=%.2fs)", cfg.Snapshot.Path, img.Bounds().Dx(), img.Bounds().Dy(), cfg.Snapshot.Time)
	return nil
}

// run opens the window and blocks until it closes. When watchPath is set, valid edits to that
// file swap in a new generator between frames.
func run(cfg config.Config, watchPath string) error {
	backendType, err := cfg.BackendType()
	if err != nil {
		return err
	}
	mode, err := cfg.SubmissionMode()
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	rendererOpts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}
	interval, err := cfg.ProfilerInterval()
	if err != nil {
		return err
	}

	api := window.ClientAPINone
	if backendType == renderer.BackendTypeGL {
		api = window.ClientAPIOpenGL
	}
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithClientAPI(api),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	r, err := renderer.NewRenderer(backendType, win, rendererOpts...)
	if err != nil {
		return err
	}
	defer r.Release()
	if cfg.Render.VSync {
		win.SetSwapInterval(1)
	} else {
		win.SetSwapInterval(0)
	}

	prof := profiler.NewProfiler(profiler.WithInterval(interval))
	cam := camera.NewCamera(cfg.CameraOptions()...)
	cam.SetViewport(win.Width(), win.Height())

	state, err := demo.NewState(r,
		demo.WithGenerator(gen),
		demo.WithResolution(cfg.Grid.Rows, cfg.Grid.Cols),
		demo.WithMode(mode),
		demo.WithCamera(cam),
		demo.WithProfiler(prof),
		demo.WithStatic(cfg.Render.Static),
	)
	if err != nil {
		return err
	}
	defer state.Release()

	var changes <-chan config.Config
	if watchPath != "" {
		w, err := config.Watch(watchPath)
		if err != nil {
			return err
		}
		defer w.Close()
		changes = w.Changes()
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Profiler.Enabled),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
	)
	eng.SetKeyCallback(state.HandleKey)
	eng.SetResizeCallback(state.Resize)
	eng.SetFrameCallback(func(now, deltaTime float32) {
		select {
		case next := <-changes:
			if err := reconfigure(state, next); err != nil {
				log.Printf("[Demo] reload: %v", err)
			}
		default:
		}
		if err := state.Frame(now); err != nil {
			log.Printf("[Demo] frame: %v", err)
		}
	})

	log.Printf("[Demo] %s backend, keys: arrows resize, space/1-4 mode, F fill, L light, P pause, S static, Esc quit", backendType)
	eng.Run()
	return nil
}

func reconfigure(state *demo.State, cfg config.Config) error {
	gen, err := newGenerator(cfg)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	return state.Reconfigure(gen)
}
