// Package mesh provides in-memory geometry types for the model pipeline.
package mesh

import (
	"errors"
	"fmt"
)

// Mesh construction errors.
var (
	ErrIndexCountNotTriangles = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange        = errors.New("index out of range")
)

// Vertex is one vertex of a static mesh: position, normal and a 2D texture
// coordinate. Field order and packing define the on-disk layout, so the
// struct must stay free of padding.
type Vertex struct {
	Px, Py, Pz float32
	Nx, Ny, Nz float32
	Tu, Tv     float32
}

// VertexSize is the packed byte size of one Vertex.
const VertexSize = 32

// Mesh is a named triangle mesh: an ordered vertex sequence plus a triangle
// index sequence referencing it. A Mesh built through New always satisfies
// the index invariant (every index < vertex count, count a multiple of 3).
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// New constructs a Mesh, validating the index sequence against the vertex
// sequence. Index violations are build-time errors; they never reach the
// encoder.
func New(name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q: %w: %d indices", name, ErrIndexCountNotTriangles, len(indices))
	}
	for i, idx := range indices {
		if idx >= uint32(len(vertices)) {
			return nil, fmt.Errorf("mesh %q: %w: index %d at position %d, %d vertices",
				name, ErrIndexOutOfRange, idx, i, len(vertices))
		}
	}
	return &Mesh{Name: name, Vertices: vertices, Indices: indices}, nil
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh as min and max
// corners. A mesh with no vertices reports zero bounds.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	v := m.Vertices[0]
	min = [3]float32{v.Px, v.Py, v.Pz}
	max = min
	for _, v := range m.Vertices[1:] {
		p := [3]float32{v.Px, v.Py, v.Pz}
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}
