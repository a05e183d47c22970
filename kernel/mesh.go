package kernel

import (
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle mesh ready for upload to a renderer or writing to
// a file. Triangles do not share vertices, each carries its face normal.
type Mesh struct {
	// Vertices holds x, y, z triples.
	Vertices []float32
	// Normals holds one x, y, z normal per vertex.
	Normals []float32
	// Indices holds three vertex indices per triangle.
	Indices []uint32
	// PartName optionally names the part the mesh was made from.
	PartName string
}

// NewMesh converts triangles into a Mesh, computing face normals from
// the counter clockwise winding of each triangle.
func NewMesh(triangles [][3]r3.Vec) *Mesh {
	m := &Mesh{
		Vertices: make([]float32, 0, 9*len(triangles)),
		Normals:  make([]float32, 0, 9*len(triangles)),
		Indices:  make([]uint32, 0, 3*len(triangles)),
	}
	for i, tri := range triangles {
		var v [3][3]float32
		for j := range tri {
			v[j] = [3]float32{float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z)}
			m.Vertices = append(m.Vertices, v[j][0], v[j][1], v[j][2])
			m.Indices = append(m.Indices, uint32(3*i+j))
		}
		n := faceNormal(v)
		for j := 0; j < 3; j++ {
			m.Normals = append(m.Normals, n[0], n[1], n[2])
		}
	}
	return m
}

func faceNormal(v [3][3]float32) [3]float32 {
	var e1, e2 [3]float32
	for k := 0; k < 3; k++ {
		e1[k] = v[1][k] - v[0][k]
		e2[k] = v[2][k] - v[0][k]
	}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 || math32.IsNaN(l) {
		return [3]float32{}
	}
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Triangle returns the i'th triangle of the mesh.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	var t [3]r3.Vec
	for j := 0; j < 3; j++ {
		k := 3 * int(m.Indices[3*i+j])
		t[j] = r3.Vec{X: float64(m.Vertices[k]), Y: float64(m.Vertices[k+1]), Z: float64(m.Vertices[k+2])}
	}
	return t
}

// Triangles returns all triangles of the mesh.
func (m *Mesh) Triangles() [][3]r3.Vec {
	tris := make([][3]r3.Vec, m.TriangleCount())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return tris
}
