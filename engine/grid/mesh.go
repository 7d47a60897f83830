package grid

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single grid point with its surface normal.
// The memory layout is tightly packed (24 bytes) so a []Vertex can be uploaded to the GPU as-is.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

const (
	// VertexStride is the size of a Vertex in bytes.
	VertexStride = int(unsafe.Sizeof(Vertex{}))

	// PositionOffset is the byte offset of Vertex.Position.
	PositionOffset = int(unsafe.Offsetof(Vertex{}.Position))

	// NormalOffset is the byte offset of Vertex.Normal.
	NormalOffset = int(unsafe.Offsetof(Vertex{}.Normal))

	// IndexSize is the size of one index in bytes (uint32).
	IndexSize = 4
)

// Layout describes how a Mesh is laid out in memory for the graphics API:
// the vertex stride and attribute offsets, and how the index buffer splits into strips.
type Layout struct {
	Stride         int
	PositionOffset int
	NormalOffset   int
	VertexCount    int
	IndexCount     int
	StripCount     int
	StripLength    int
}

// StripByteOffset returns the byte offset of strip i inside the index buffer.
func (l Layout) StripByteOffset(i int) int {
	return i * l.StripLength * IndexSize
}

// Mesh is a grid of (Rows+1)*(Cols+1) vertices and the triangle-strip indices to draw it.
// Vertices are stored column by column: vertex (i, j) for column i and row j lives at
// i*(Rows+1)+j. The index buffer holds Cols strips of 2*(Rows+1) indices each.
type Mesh struct {
	Rows     int
	Cols     int
	Vertices []Vertex
	Indices  []uint32
}

// VertexCount returns (rows+1)*(cols+1) for the given dimensions.
func VertexCount(rows, cols int) int {
	return (rows + 1) * (cols + 1)
}

// IndexCount returns cols*(rows+1)*2 for the given dimensions.
func IndexCount(rows, cols int) int {
	return cols * (rows + 1) * 2
}

// VertexIndex returns the position of vertex (col, row) in the vertex array.
func (m *Mesh) VertexIndex(col, row int) int {
	return col*(m.Rows+1) + row
}

// At returns a pointer to vertex (col, row).
func (m *Mesh) At(col, row int) *Vertex {
	return &m.Vertices[m.VertexIndex(col, row)]
}

// StripCount returns the number of triangle strips (one per column stripe).
func (m *Mesh) StripCount() int {
	return m.Cols
}

// StripLength returns the number of indices in each strip.
func (m *Mesh) StripLength() int {
	return 2 * (m.Rows + 1)
}

// StripOffset returns the index of the first element of strip i in the index array.
func (m *Mesh) StripOffset(i int) int {
	return i * m.StripLength()
}

// Strip returns the indices of strip i as a sub-slice of the index array.
func (m *Mesh) Strip(i int) []uint32 {
	start := m.StripOffset(i)
	return m.Indices[start : start+m.StripLength()]
}

// Layout returns the memory layout descriptor for this mesh.
func (m *Mesh) Layout() Layout {
	return Layout{
		Stride:         VertexStride,
		PositionOffset: PositionOffset,
		NormalOffset:   NormalOffset,
		VertexCount:    len(m.Vertices),
		IndexCount:     len(m.Indices),
		StripCount:     m.StripCount(),
		StripLength:    m.StripLength(),
	}
}

// Validate checks the mesh invariants: vertex and index counts match the dimensions and
// every index addresses an existing vertex.
//
// Returns:
//   - error: a description of the first broken invariant, or nil
func (m *Mesh) Validate() error {
	if want := VertexCount(m.Rows, m.Cols); len(m.Vertices) != want {
		return fmt.Errorf("mesh %dx%d has %d vertices, want %d", m.Rows, m.Cols, len(m.Vertices), want)
	}
	if want := IndexCount(m.Rows, m.Cols); len(m.Indices) != want {
		return fmt.Errorf("mesh %dx%d has %d indices, want %d", m.Rows, m.Cols, len(m.Indices), want)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d at position %d out of range [0, %d)", idx, i, n)
		}
	}
	return nil
}

// buildIndices fills the strip index array: for each column i and row j, vertex (i, j)
// followed by vertex (i+1, j).
func buildIndices(rows, cols int) []uint32 {
	indices := make([]uint32, 0, IndexCount(rows, cols))
	stride := uint32(rows + 1)
	for i := range uint32(cols) {
		for j := range stride {
			indices = append(indices, i*stride+j, (i+1)*stride+j)
		}
	}
	return indices
}
