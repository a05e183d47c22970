package curve

import (
	"math"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Arc is a circular arc. Its native parameter is the angle in radians
// swept from the start point about the arc normal, in [0, Sweep].
type Arc struct {
	center r3.Vec
	radius float64
	u, v   r3.Vec // orthonormal in-plane basis, u points at the start
	normal r3.Vec
	sweep  float64
}

var _ Segment = (*Arc)(nil)

// NewArc returns the arc starting at start, passing through mid
// and ending at end.
func NewArc(start, mid, end r3.Vec) (*Arc, error) {
	a := r3.Sub(start, end)
	b := r3.Sub(mid, end)
	axb := r3.Cross(a, b)
	den := 2 * r3.Norm2(axb)
	if den < Tolerance*Tolerance {
		return nil, ErrCollinear
	}
	// Circumcenter of the triangle (start, mid, end).
	num := r3.Cross(r3.Sub(r3.Scale(r3.Norm2(a), b), r3.Scale(r3.Norm2(b), a)), axb)
	center := r3.Add(end, r3.Scale(1/den, num))

	// Orient the normal so the arc runs start->mid->end counter-clockwise.
	normal := r3.Unit(r3.Cross(r3.Sub(mid, start), r3.Sub(end, mid)))
	u := r3.Sub(start, center)
	radius := r3.Norm(u)
	u = r3.Unit(u)
	v := r3.Cross(normal, u)
	arc := &Arc{center: center, radius: radius, u: u, v: v, normal: normal}
	arc.sweep = arc.angleOf(end)
	if arc.sweep < Tolerance {
		// end coincides with start, full circle.
		arc.sweep = 2 * math.Pi
	}
	return arc, nil
}

// angleOf returns the angle of p about the arc center in [0, 2π).
func (a *Arc) angleOf(p r3.Vec) float64 {
	d := r3.Sub(p, a.center)
	ang := math.Atan2(r3.Dot(d, a.v), r3.Dot(d, a.u))
	if ang < 0 {
		ang += 2 * math.Pi
	}
	return ang
}

func (a *Arc) Kind() Kind                   { return KindArc }
func (a *Arc) Center() r3.Vec               { return a.center }
func (a *Arc) Radius() float64              { return a.radius }
func (a *Arc) Normal() r3.Vec               { return a.normal }
func (a *Arc) Sweep() float64               { return a.sweep }
func (a *Arc) ParamRange() (t0, t1 float64) { return 0, a.sweep }
func (a *Arc) Length() float64              { return a.radius * a.sweep }
func (a *Arc) Start() r3.Vec                { return a.At(0) }
func (a *Arc) End() r3.Vec                  { return a.At(a.sweep) }

func (a *Arc) At(t float64) r3.Vec {
	s, c := math.Sincos(t)
	return r3.Add(a.center, r3.Add(r3.Scale(a.radius*c, a.u), r3.Scale(a.radius*s, a.v)))
}

func (a *Arc) AtLength(s float64) r3.Vec {
	return a.At(s / a.radius)
}

// Bounds returns the exact bounding box of the arc, including
// the axis extremes it passes through.
func (a *Arc) Bounds() r3.Box {
	bb := d3.EmptyBox().Include(a.Start()).Include(a.End())
	uc := [3]float64{a.u.X, a.u.Y, a.u.Z}
	vc := [3]float64{a.v.X, a.v.Y, a.v.Z}
	for axis := 0; axis < 3; axis++ {
		if uc[axis] == 0 && vc[axis] == 0 {
			continue
		}
		// d/dt (u cos t + v sin t) = 0
		ext := math.Atan2(vc[axis], uc[axis])
		for _, t := range [2]float64{ext, ext + math.Pi} {
			t = math.Mod(t+4*math.Pi, 2*math.Pi)
			if t <= a.sweep {
				bb = bb.Include(a.At(t))
			}
		}
	}
	return r3.Box(bb)
}
