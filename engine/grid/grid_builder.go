package grid

import (
	"github.com/Carmen-Shannon/oxy-wave/engine/wave"
)

// GeneratorBuilderOption is a functional option for configuring a Generator.
// Use the With* functions to create options.
type GeneratorBuilderOption func(g *generator)

// WithExtent sets the size of the grid along X and Z.
// Non-positive values are ignored.
//
// Parameters:
//   - x: extent along X
//   - z: extent along Z
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithExtent(x, z float32) GeneratorBuilderOption {
	return func(g *generator) {
		if x > 0 {
			g.extentX = x
		}
		if z > 0 {
			g.extentZ = z
		}
	}
}

// WithOrigin sets the XZ position of vertex (0, 0).
//
// Parameters:
//   - x: origin along X
//   - z: origin along Z
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithOrigin(x, z float32) GeneratorBuilderOption {
	return func(g *generator) {
		g.originX = x
		g.originZ = z
	}
}

// WithWaves sets the wave set summed at each vertex.
// An empty set produces a flat grid.
//
// Parameters:
//   - waves: the waves to sum
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithWaves(waves wave.Set) GeneratorBuilderOption {
	return func(g *generator) {
		g.waves = append(wave.Set(nil), waves...)
	}
}

// WithNormalMode sets how vertex normals are derived.
//
// Parameters:
//   - mode: the normal mode
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithNormalMode(mode NormalMode) GeneratorBuilderOption {
	return func(g *generator) {
		g.normalMode = mode
	}
}

// WithUpdateWorkers sets the number of workers used by Update and UpdateInto on large meshes.
// A value of 1 (the default) keeps updates on the calling goroutine.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithUpdateWorkers(n int) GeneratorBuilderOption {
	return func(g *generator) {
		if n < 1 {
			n = 1
		}
		g.updateWorkers = n
	}
}
