package grid

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-wave/engine/wave"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidDimensions is returned by Build when rows < 1 or cols < 2.
var ErrInvalidDimensions = errors.New("invalid grid dimensions")

// NormalMode selects how vertex normals are derived from the wave set.
type NormalMode int

const (
	// NormalModeSurface derives the true surface normal from both partial derivatives
	// and normalizes it.
	NormalModeSurface NormalMode = iota

	// NormalModeLegacy uses the dominant wave slope along x only: (-k*A*cos(angle), 1, 0), unnormalized.
	// It ignores the Z slope entirely, so lighting is only approximately correct.
	NormalModeLegacy
)

// String returns the config name of the normal mode.
func (m NormalMode) String() string {
	switch m {
	case NormalModeLegacy:
		return "legacy"
	default:
		return "surface"
	}
}

// ParseNormalMode maps a config name to a NormalMode.
func ParseNormalMode(s string) (NormalMode, error) {
	switch s {
	case "", "surface":
		return NormalModeSurface, nil
	case "legacy":
		return NormalModeLegacy, nil
	}
	return NormalModeSurface, fmt.Errorf("unknown normal mode %q", s)
}

// parallelThreshold is the minimum vertex count before Update fans out to the worker pool.
const parallelThreshold = 16384

// generator is the implementation of the Generator interface.
type generator struct {
	extentX, extentZ float32
	originX, originZ float32

	waves      wave.Set
	normalMode NormalMode

	mesh *Mesh

	updateWorkers int
	pool          worker.DynamicWorkerPool
}

// Generator builds a wave-displaced grid mesh and keeps its heights and normals current.
type Generator interface {
	// Build allocates a new mesh of the given resolution, evaluates every vertex at t=0 and
	// replaces the held mesh. Invalid dimensions are rejected and the held mesh is kept.
	//
	// Parameters:
	//   - rows: number of rows (>= 1)
	//   - cols: number of columns (>= 2)
	//
	// Returns:
	//   - *Mesh: the newly built mesh
	//   - error: ErrInvalidDimensions (wrapped) if rows < 1 or cols < 2
	Build(rows, cols int) (*Mesh, error)

	// Mesh returns the currently held mesh, or nil before the first successful Build.
	//
	// Returns:
	//   - *Mesh: the held mesh
	Mesh() *Mesh

	// Height evaluates the summed wave height at (x, z) and time t.
	//
	// Parameters:
	//   - x, z: the point in the grid plane
	//   - t: time in seconds
	//
	// Returns:
	//   - float32: the displacement along Y
	Height(x, z, t float32) float32

	// Normal evaluates the vertex normal at (x, z) and time t according to the NormalMode.
	//
	// Parameters:
	//   - x, z: the point in the grid plane
	//   - t: time in seconds
	//
	// Returns:
	//   - mgl32.Vec3: the normal
	Normal(x, z, t float32) mgl32.Vec3

	// Update recomputes the height and normal of every vertex of the held mesh at time t.
	// X and Z are read from the stored positions and never change. No-op before Build.
	//
	// Parameters:
	//   - t: time in seconds
	Update(t float32)

	// UpdateInto reads X and Z from src and writes the complete vertex evaluated at time t into dst.
	// This is the form used against a mapped device buffer. dst may alias src.
	// Panics if the slices differ in length.
	//
	// Parameters:
	//   - dst: destination vertices (host array or mapped buffer)
	//   - src: source vertices providing X and Z
	//   - t: time in seconds
	UpdateInto(dst, src []Vertex, t float32)

	// Waves returns the wave set summed by this generator.
	//
	// Returns:
	//   - wave.Set: the configured waves
	Waves() wave.Set

	// NormalMode returns the configured normal derivation.
	//
	// Returns:
	//   - NormalMode: the normal mode
	NormalMode() NormalMode

	// Extent returns the size of the grid along X and Z.
	//
	// Returns:
	//   - float32, float32: extent along X and Z
	Extent() (float32, float32)
}

var _ Generator = &generator{}

// NewGenerator creates a Generator with the given options.
// Defaults: 2x2 extent starting at (-1, -1), the dominant default wave, surface normals,
// serial update.
//
// Parameters:
//   - options: functional options to configure the generator
//
// Returns:
//   - Generator: the configured generator (no mesh until Build is called)
func NewGenerator(options ...GeneratorBuilderOption) Generator {
	g := &generator{
		extentX:       2,
		extentZ:       2,
		originX:       -1,
		originZ:       -1,
		waves:         wave.Default().Dominant(),
		normalMode:    NormalModeSurface,
		updateWorkers: 1,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.updateWorkers > 1 {
		g.pool = worker.NewDynamicWorkerPool(g.updateWorkers, 256, 1*time.Second)
	}
	return g
}

func (g *generator) Build(rows, cols int) (*Mesh, error) {
	if rows < 1 || cols < 2 {
		log.Printf("[Grid] rejected rebuild to %d rows x %d cols, keeping current mesh", rows, cols)
		return nil, fmt.Errorf("%w: rows=%d cols=%d (need rows >= 1, cols >= 2)", ErrInvalidDimensions, rows, cols)
	}

	m := &Mesh{
		Rows:     rows,
		Cols:     cols,
		Vertices: make([]Vertex, VertexCount(rows, cols)),
		Indices:  buildIndices(rows, cols),
	}

	dx := g.extentX / float32(cols)
	dz := g.extentZ / float32(rows)
	for i := 0; i <= cols; i++ {
		x := g.originX + float32(i)*dx
		for j := 0; j <= rows; j++ {
			z := g.originZ + float32(j)*dz
			m.Vertices[m.VertexIndex(i, j)] = Vertex{
				Position: mgl32.Vec3{x, g.Height(x, z, 0), z},
				Normal:   g.Normal(x, z, 0),
			}
		}
	}

	g.mesh = m
	return m, nil
}

func (g *generator) Mesh() *Mesh {
	return g.mesh
}

func (g *generator) Height(x, z, t float32) float32 {
	return g.waves.Height(x, z, t)
}

func (g *generator) Normal(x, z, t float32) mgl32.Vec3 {
	if g.normalMode == NormalModeLegacy {
		return mgl32.Vec3{-g.waves.LegacySlope(x, z, t), 1, 0}
	}

	dydx, dydz := g.waves.Slope(x, z, t)
	tangentX := mgl32.Vec3{1, dydx, 0}
	tangentZ := mgl32.Vec3{0, dydz, 1}
	return tangentZ.Cross(tangentX).Normalize()
}

func (g *generator) Update(t float32) {
	if g.mesh == nil {
		return
	}
	g.UpdateInto(g.mesh.Vertices, g.mesh.Vertices, t)
}

func (g *generator) UpdateInto(dst, src []Vertex, t float32) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("grid: UpdateInto length mismatch: dst=%d src=%d", len(dst), len(src)))
	}

	if g.pool == nil || len(src) < parallelThreshold {
		g.updateRange(dst, src, t)
		return
	}

	// Workers are reused across frames; the WaitGroup is the per-call barrier so the
	// caller observes a fully updated array on return.
	chunk := (len(src) + g.updateWorkers - 1) / g.updateWorkers
	var wg sync.WaitGroup
	for id, start := 0, 0; start < len(src); id, start = id+1, start+chunk {
		end := min(start+chunk, len(src))
		d, s := dst[start:end], src[start:end]
		wg.Add(1)
		g.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				g.updateRange(d, s, t)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// updateRange evaluates every vertex of src at time t and stores the result in dst.
func (g *generator) updateRange(dst, src []Vertex, t float32) {
	for i := range src {
		x, z := src[i].Position[0], src[i].Position[2]
		dst[i] = Vertex{
			Position: mgl32.Vec3{x, g.Height(x, z, t), z},
			Normal:   g.Normal(x, z, t),
		}
	}
}

func (g *generator) Waves() wave.Set {
	return g.waves
}

func (g *generator) NormalMode() NormalMode {
	return g.normalMode
}

func (g *generator) Extent() (float32, float32) {
	return g.extentX, g.extentZ
}
