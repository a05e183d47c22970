package sdfx

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/partkit/internal/d3"
	"github.com/soypat/partkit/kernel"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// meshSDF3 is the signed distance field of a closed triangle shell.
// The nearest triangle is found with a kd-tree over triangle centroids,
// pruned with the mesh reach so the search is exact. The sign is taken
// from angle weighted pseudo normals of the closest feature (face, edge
// or vertex).
type meshSDF3 struct {
	tree *kdtree.Tree
	mesh *pseudoMesh
}

type pseudoMesh struct {
	bb        d3.Box
	vertices  []pseudoVertex
	triangles []meshTriangle
	// edge pseudo normals keyed by vertex indices, lower index first.
	edgeN map[[2]int]r3.Vec
	// reach is the largest distance from a triangle centroid to one of
	// its vertices.
	reach float64
}

type pseudoVertex struct {
	V r3.Vec
	// N is the pseudo normal weighted by the opening angle of each
	// triangle meeting at the vertex.
	N r3.Vec
}

func newMeshSDF3(sh *kernel.Shell) (*meshSDF3, error) {
	if len(sh.Faces) == 0 {
		return nil, errors.New("sdfx: empty shell")
	}
	flip := sh.Volume() < 0
	m := &pseudoMesh{
		bb:        d3.Box(sh.Bounds()),
		vertices:  make([]pseudoVertex, len(sh.Vertices)),
		triangles: make([]meshTriangle, len(sh.Faces)),
		edgeN:     make(map[[2]int]r3.Vec),
	}
	for i, v := range sh.Vertices {
		m.vertices[i].V = v
	}
	for i, face := range sh.Faces {
		if flip {
			face[1], face[2] = face[2], face[1]
		}
		tri := [3]r3.Vec{sh.Vertices[face[0]], sh.Vertices[face[1]], sh.Vertices[face[2]]}
		n := r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0]))
		if d3.IsZero(n, 1e-300) {
			return nil, errors.New("sdfx: shell has a degenerate face")
		}
		n = r3.Unit(n)
		centroid := r3.Scale(1./3., r3.Add(r3.Add(tri[0], tri[1]), tri[2]))
		for _, v := range tri {
			m.reach = math.Max(m.reach, r3.Norm(r3.Sub(v, centroid)))
		}
		m.triangles[i] = meshTriangle{
			C:        centroid,
			N:        n,
			Vertices: face,
			m:        m,
		}
		for j, vi := range face {
			s1, s2 := r3.Sub(tri[(j+1)%3], tri[j]), r3.Sub(tri[(j+2)%3], tri[j])
			alpha := math.Acos(math.Max(-1, math.Min(1, r3.Cos(s1, s2))))
			m.vertices[vi].N = r3.Add(m.vertices[vi].N, r3.Scale(alpha, n))
			edge := edgeKey(vi, face[(j+1)%3])
			m.edgeN[edge] = r3.Add(m.edgeN[edge], r3.Scale(math.Pi, n))
		}
	}
	tree := kdtree.New(m, true)
	return &meshSDF3{tree: tree, mesh: m}, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Evaluate returns the signed distance to the shell surface.
func (s *meshSDF3) Evaluate(p v3.Vec) float64 {
	q := toR3(p)
	nearest, _ := s.tree.Nearest(&meshTriangle{C: q})
	tri := nearest.(*meshTriangle)
	closest, feat := tri.closest(q)
	dist := r3.Norm(r3.Sub(q, closest))
	return math.Copysign(dist, tri.side(q, closest, feat))
}

func (s *meshSDF3) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: toV3(s.mesh.bb.Min), Max: toV3(s.mesh.bb.Max)}
}

// Index returns the ith element of the list of points.
func (m *pseudoMesh) Index(i int) kdtree.Comparable { return &m.triangles[i] }

// Len returns the length of the list.
func (m *pseudoMesh) Len() int { return len(m.triangles) }

// Pivot partitions the list based on the dimension specified.
func (m *pseudoMesh) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, triangles: m.triangles}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (m *pseudoMesh) Slice(start, end int) kdtree.Interface {
	sub := *m
	sub.triangles = sub.triangles[start:end]
	return &sub
}

// Bounds implements the kdtree.Bounder interface over triangle centroids.
func (m *pseudoMesh) Bounds() *kdtree.Bounding {
	min := meshTriangle{C: d3.Elem(math.MaxFloat64)}
	max := meshTriangle{C: d3.Elem(-math.MaxFloat64)}
	for _, t := range m.triangles {
		min.C = d3.MinElem(min.C, t.C)
		max.C = d3.MaxElem(max.C, t.C)
	}
	return &kdtree.Bounding{Min: &min, Max: &max}
}

type kdPlane struct {
	dim       kdtree.Dim
	triangles []meshTriangle
}

func (p kdPlane) Less(i, j int) bool {
	return p.triangles[i].Compare(&p.triangles[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.triangles[i], p.triangles[j] = p.triangles[j], p.triangles[i]
}
func (p kdPlane) Len() int {
	return len(p.triangles)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.triangles = p.triangles[start:end]
	return p
}
