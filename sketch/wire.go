package sketch

import (
	"math"

	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Wire is a planar wire produced by a Builder. It embeds the
// 3D curve.Wire and remembers the plane it was drawn on.
type Wire struct {
	*curve.Wire
	plane  frame.Plane
	closed bool
}

// Plane returns the plane the wire was drawn on.
func (w *Wire) Plane() frame.Plane { return w.plane }

// Closed reports whether the sketch was closed or ends where it starts.
func (w *Wire) Closed() bool {
	return w.closed || w.Wire.Closed()
}

// Local returns the plane coordinates of the world point p.
func (w *Wire) Local(p r3.Vec) r2.Vec {
	return w.plane.ToLocal(p)
}

// LocalBounds returns the bounding box of the wire in plane coordinates.
func (w *Wire) LocalBounds() r2.Box {
	return d2.Set(w.Polygon(0)).Bounds()
}

const maxFlattenDepth = 12

// Polygon flattens the wire into plane coordinates. Curved segments are
// subdivided until every chord is within tol of the curve; tol <= 0
// selects a tolerance of 1e-3 times the wire length. The closing point
// of a closed wire is not repeated.
func (w *Wire) Polygon(tol float64) []r2.Vec {
	if tol <= 0 {
		tol = 1e-3 * w.Length()
	}
	var poly []r2.Vec
	poly = append(poly, w.Local(w.Start()))
	for _, seg := range w.Segments() {
		if seg.Kind() == curve.KindLine {
			poly = append(poly, w.Local(seg.End()))
			continue
		}
		t0, t1 := seg.ParamRange()
		// Seed subdivisions so symmetric curves are not mistaken for chords.
		const seeds = 4
		for i := 0; i < seeds; i++ {
			a := t0 + (t1-t0)*float64(i)/seeds
			b := t0 + (t1-t0)*float64(i+1)/seeds
			poly = w.flatten(poly, seg, a, b, tol, 0)
		}
	}
	if w.Closed() && len(poly) > 1 && d2.EqualWithin(poly[0], poly[len(poly)-1], curve.Tolerance) {
		poly = poly[:len(poly)-1]
	}
	return poly
}

// flatten appends the points after parameter a up to b.
func (w *Wire) flatten(dst []r2.Vec, seg curve.Segment, a, b, tol float64, depth int) []r2.Vec {
	pa, pb := seg.At(a), seg.At(b)
	mid := (a + b) / 2
	pm := seg.At(mid)
	if depth < maxFlattenDepth && distToSegment(pm, pa, pb) > tol {
		dst = w.flatten(dst, seg, a, mid, tol, depth+1)
		return w.flatten(dst, seg, mid, b, tol, depth+1)
	}
	return append(dst, w.Local(pb))
}

func distToSegment(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return r3.Norm(r3.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r3.Dot(r3.Sub(p, a), ab)/l2))
	return r3.Norm(r3.Sub(p, r3.Add(a, r3.Scale(t, ab))))
}
