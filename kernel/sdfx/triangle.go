package sdfx

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// triangleFeature is the part of a triangle closest to a query point.
type triangleFeature int

const (
	featureV0 triangleFeature = iota
	featureV1
	featureV2
	featureE0 // edge V0-V1
	featureE1 // edge V1-V2
	featureE2 // edge V2-V0
	featureFace
)

// meshTriangle is a kd-tree point. Query points are meshTriangles
// with only the centroid set.
type meshTriangle struct {
	C        r3.Vec // Centroid
	N        r3.Vec // Unit face normal, zero for query points.
	Vertices [3]int
	m        *pseudoMesh
}

var _ kdtree.Comparable = (*meshTriangle)(nil)

// Compare returns the signed distance from c to t along dimension d.
// Compared against a triangle, a query point's distance is shrunk by the
// reach of the mesh so it bounds the distance to every triangle whose
// centroid lies past the splitting plane.
func (t *meshTriangle) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*meshTriangle)
	var diff float64
	switch d {
	case 0:
		diff = t.C.X - q.C.X
	case 1:
		diff = t.C.Y - q.C.Y
	case 2:
		diff = t.C.Z - q.C.Z
	default:
		panic("unreachable")
	}
	if t.isPoint() && !q.isPoint() {
		diff = math.Copysign(math.Max(0, math.Abs(diff)-q.m.reach), diff)
	}
	return diff
}

func (t *meshTriangle) Dims() int { return 3 }

// Distance returns the squared distance between a query point and
// the closest point on the triangle.
func (t *meshTriangle) Distance(c kdtree.Comparable) float64 {
	point := c.(*meshTriangle)
	if t.isPoint() {
		if point.isPoint() {
			return r3.Norm2(r3.Sub(t.C, point.C))
		}
		point, t = t, point // make sure `t` is the triangle.
	}
	closest, _ := t.closest(point.C)
	return r3.Norm2(r3.Sub(point.C, closest))
}

func (t *meshTriangle) isPoint() bool {
	return t.m == nil
}

func (t *meshTriangle) triangle() [3]r3.Vec {
	v := t.m.vertices
	return [3]r3.Vec{v[t.Vertices[0]].V, v[t.Vertices[1]].V, v[t.Vertices[2]].V}
}

// closest returns the point of the triangle closest to p and the
// feature it lies on. See Ericson, Real-Time Collision Detection, 5.1.5.
func (t *meshTriangle) closest(p r3.Vec) (r3.Vec, triangleFeature) {
	tri := t.triangle()
	a, b, c := tri[0], tri[1], tri[2]
	ab, ac, ap := r3.Sub(b, a), r3.Sub(c, a), r3.Sub(p, a)
	d1, d2 := r3.Dot(ab, ap), r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, featureV0
	}
	bp := r3.Sub(p, b)
	d3, d4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, featureV1
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), featureE0
	}
	cp := r3.Sub(p, c)
	d5, d6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, featureV2
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)), featureE2
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), featureE1
	}
	denom := 1 / (va + vb + vc)
	v, w := vb*denom, vc*denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), featureFace
}

// side returns a value whose sign tells whether p is outside (positive)
// or inside (negative) the shell, using the pseudo normal of feat.
func (t *meshTriangle) side(p, closest r3.Vec, feat triangleFeature) float64 {
	var n r3.Vec
	switch {
	case feat <= featureV2:
		n = t.m.vertices[t.Vertices[feat]].N
	case feat <= featureE2:
		i := int(feat - featureE0)
		n = t.m.edgeN[edgeKey(t.Vertices[i], t.Vertices[(i+1)%3])]
	default:
		n = t.N
	}
	return r3.Dot(n, r3.Sub(p, closest))
}
