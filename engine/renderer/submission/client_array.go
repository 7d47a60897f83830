package submission

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
)

// clientArrayStrategy draws each strip with one indexed call reading the host vertex array.
type clientArrayStrategy struct {
	hostMesh
}

var _ Strategy = &clientArrayStrategy{}

func (s *clientArrayStrategy) Mode() Mode {
	return ModeClientArray
}

func (s *clientArrayStrategy) Attach(r renderer.Renderer, mesh *grid.Mesh) error {
	return s.attach(r, mesh)
}

func (s *clientArrayStrategy) Draw() error {
	if s.mesh == nil {
		return ErrNotAttached
	}
	for i := range s.mesh.StripCount() {
		if err := s.r.DrawClientStrip(s.mesh.Vertices, s.mesh.Strip(i)); err != nil {
			return fmt.Errorf("strip %d: %w", i, err)
		}
	}
	return nil
}
