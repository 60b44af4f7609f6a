package sweep

import "github.com/ungerik/go3d/float64/vec3"

// Mesh is a triangle mesh produced by sweeping. Vertices and Normals
// run in parallel; Indices holds three entries per triangle, wound
// counter-clockwise seen from outside.
//
// A Mesh is cheaply shareable by pointer: the cache hands the same
// canonical mesh to every instance with a matching key, and callers
// place it using only their own outer Transform.
type Mesh struct {
	Vertices []vec3.T
	Normals  []vec3.T
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Transformed returns a copy of the mesh with the outer instance
// transform applied. Topology (the index slice) is shared with the
// receiver; only positions and normals are rewritten.
func (m *Mesh) Transformed(t Transform) *Mesh {
	out := &Mesh{
		Vertices: make([]vec3.T, len(m.Vertices)),
		Normals:  make([]vec3.T, len(m.Normals)),
		Indices:  m.Indices,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.ApplyPoint(v)
	}
	for i, n := range m.Normals {
		r := t.ApplyVector(n)
		out.Normals[i] = r
	}
	return out
}
