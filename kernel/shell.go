package kernel

import (
	"errors"
	"math"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shell is an indexed triangle surface. Faces reference Vertices by
// index and are wound counter clockwise when seen from outside.
type Shell struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// Weld merges triangle corners closer than tol into shared vertices and
// returns the resulting shell. Faces that collapse are dropped. A tol of
// zero is inferred from the smallest triangle edge.
func Weld(triangles [][3]r3.Vec, tol float64) (*Shell, error) {
	if len(triangles) == 0 {
		return nil, errors.New("kernel: no triangles to weld")
	}
	if tol <= 0 {
		minEdge2 := math.MaxFloat64
		for _, tri := range triangles {
			for j := range tri {
				e2 := r3.Norm2(r3.Sub(tri[(j+1)%3], tri[j]))
				if e2 > 0 {
					minEdge2 = math.Min(minEdge2, e2)
				}
			}
		}
		if minEdge2 == math.MaxFloat64 {
			return nil, errors.New("kernel: all triangles are degenerate")
		}
		tol = math.Sqrt(minEdge2) / 256
	}
	sh := &Shell{}
	// vertex index cache keyed by position in tolerance units.
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	for _, tri := range triangles {
		var face [3]int
		for j, vert := range tri {
			v := r3.Scale(ri, vert)
			key := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			idx, ok := cache[key]
			if !ok {
				idx = len(sh.Vertices)
				cache[key] = idx
				sh.Vertices = append(sh.Vertices, vert)
			}
			face[j] = idx
		}
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			continue
		}
		sh.Faces = append(sh.Faces, face)
	}
	if len(sh.Faces) == 0 {
		return nil, errors.New("kernel: all faces collapsed while welding")
	}
	return sh, nil
}

// Triangle returns the vertices of face i.
func (sh *Shell) Triangle(i int) [3]r3.Vec {
	f := sh.Faces[i]
	return [3]r3.Vec{sh.Vertices[f[0]], sh.Vertices[f[1]], sh.Vertices[f[2]]}
}

// Triangles returns every face as a vertex triple.
func (sh *Shell) Triangles() [][3]r3.Vec {
	tris := make([][3]r3.Vec, len(sh.Faces))
	for i := range tris {
		tris[i] = sh.Triangle(i)
	}
	return tris
}

// Closed reports whether the shell is a closed, consistently oriented
// surface: every directed edge is used by exactly one face and its
// reverse by exactly one other face.
func (sh *Shell) Closed() bool {
	if len(sh.Faces) < 4 {
		return false
	}
	edges := make(map[[2]int]int, 3*len(sh.Faces))
	for _, f := range sh.Faces {
		for j := 0; j < 3; j++ {
			edges[[2]int{f[j], f[(j+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of the shell vertices.
func (sh *Shell) Bounds() r3.Box {
	return d3.Set(sh.Vertices).Bounds()
}

// Volume returns the signed volume enclosed by the shell. It is positive
// for closed shells whose faces are wound outward.
func (sh *Shell) Volume() float64 {
	var v float64
	for i := range sh.Faces {
		t := sh.Triangle(i)
		v += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return v / 6
}

// Flip reverses the winding of every face.
func (sh *Shell) Flip() {
	for i := range sh.Faces {
		sh.Faces[i][1], sh.Faces[i][2] = sh.Faces[i][2], sh.Faces[i][1]
	}
}
