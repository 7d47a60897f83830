package submission

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
)

// immediateStrategy emits every vertex through BeginStrip/Vertex/EndStrip. When indexed is set
// it walks each strip's slice of the index array, otherwise it pairs columns i and i+1 directly.
type immediateStrategy struct {
	hostMesh
	indexed bool
}

var _ Strategy = &immediateStrategy{}

func (s *immediateStrategy) Mode() Mode {
	if s.indexed {
		return ModeIndexedImmediate
	}
	return ModeImmediate
}

func (s *immediateStrategy) Attach(r renderer.Renderer, mesh *grid.Mesh) error {
	return s.attach(r, mesh)
}

func (s *immediateStrategy) Draw() error {
	if s.mesh == nil {
		return ErrNotAttached
	}
	for i := range s.mesh.StripCount() {
		if err := s.drawStrip(i); err != nil {
			return fmt.Errorf("strip %d: %w", i, err)
		}
	}
	return nil
}

func (s *immediateStrategy) drawStrip(i int) error {
	if err := s.r.BeginStrip(); err != nil {
		return err
	}

	m := s.mesh
	if s.indexed {
		for _, idx := range m.Strip(i) {
			v := &m.Vertices[idx]
			s.r.Vertex(v.Position, v.Normal)
		}
	} else {
		for j := range m.Rows + 1 {
			a, b := m.At(i, j), m.At(i+1, j)
			s.r.Vertex(a.Position, a.Normal)
			s.r.Vertex(b.Position, b.Normal)
		}
	}
	return s.r.EndStrip()
}
