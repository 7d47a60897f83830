package submission

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-wave/engine/grid"
	"github.com/Carmen-Shannon/oxy-wave/engine/renderer"
)

// bufferObjectStrategy keeps the vertices in device memory. Update maps the device vertex
// buffer, evaluates the waves straight into it using the host array for x and z, and unmaps
// before returning, so every draw in the frame reads the new vertices.
type bufferObjectStrategy struct {
	r       renderer.Renderer
	mesh    *grid.Mesh
	buffers *renderer.MeshBuffers
}

var _ Strategy = &bufferObjectStrategy{}

func (s *bufferObjectStrategy) Mode() Mode {
	return ModeBufferObject
}

func (s *bufferObjectStrategy) Attach(r renderer.Renderer, mesh *grid.Mesh) error {
	if r == nil || mesh == nil {
		return fmt.Errorf("attach: %w", ErrNotAttached)
	}

	buffers, err := r.CreateMeshBuffers(mesh)
	if err != nil {
		return err
	}
	s.Release()
	s.r = r
	s.mesh = mesh
	s.buffers = buffers
	return nil
}

func (s *bufferObjectStrategy) Update(gen grid.Generator, t float32) error {
	if s.buffers == nil {
		return ErrNotAttached
	}

	mapped, err := s.r.MapVertices(s.buffers)
	if err != nil {
		return fmt.Errorf("map vertex buffer: %w", err)
	}
	gen.UpdateInto(mapped, s.mesh.Vertices, t)
	if err := s.r.UnmapVertices(s.buffers); err != nil {
		return fmt.Errorf("unmap vertex buffer: %w", err)
	}
	return nil
}

func (s *bufferObjectStrategy) Draw() error {
	if s.buffers == nil {
		return ErrNotAttached
	}
	layout := s.buffers.Layout()
	for i := range layout.StripCount {
		if err := s.r.DrawBufferStrip(s.buffers, i*layout.StripLength, layout.StripLength); err != nil {
			return fmt.Errorf("strip %d: %w", i, err)
		}
	}
	return nil
}

func (s *bufferObjectStrategy) Release() {
	if s.buffers != nil {
		s.r.ReleaseMeshBuffers(s.buffers)
	}
	s.r = nil
	s.mesh = nil
	s.buffers = nil
}
