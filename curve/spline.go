package curve

import (
	"math"
	"sort"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spline is a smooth curve interpolating a sequence of points. It is
// parametrized by cumulative chord length and interpolated per
// coordinate with Akima splines.
type Spline struct {
	knots   []float64 // cumulative chord length at each point
	points  []r3.Vec
	x, y, z interp.AkimaSpline
	arcLen  []float64 // cumulative arc length at each knot
}

var _ Segment = (*Spline)(nil)

// number of Gauss-Legendre nodes per knot interval when integrating length.
const splineQuadNodes = 12

// NewSpline returns the spline through pts. Consecutive coincident
// points are dropped.
func NewSpline(pts []r3.Vec) (*Spline, error) {
	s := &Spline{}
	for _, p := range pts {
		if len(s.points) > 0 && d3.EqualWithin(p, s.points[len(s.points)-1], Tolerance) {
			continue
		}
		s.points = append(s.points, p)
	}
	if len(s.points) < 2 {
		return nil, ErrFewPoints
	}
	n := len(s.points)
	s.knots = make([]float64, n)
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range s.points {
		if i > 0 {
			s.knots[i] = s.knots[i-1] + r3.Norm(r3.Sub(p, s.points[i-1]))
		}
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	for _, fit := range []struct {
		sp *interp.AkimaSpline
		vs []float64
	}{{&s.x, xs}, {&s.y, ys}, {&s.z, zs}} {
		if err := fit.sp.Fit(s.knots, fit.vs); err != nil {
			return nil, err
		}
	}
	s.arcLen = make([]float64, n)
	for i := 1; i < n; i++ {
		s.arcLen[i] = s.arcLen[i-1] + s.lengthBetween(s.knots[i-1], s.knots[i])
	}
	return s, nil
}

// Points returns a copy of the interpolated points.
func (s *Spline) Points() []r3.Vec {
	return append([]r3.Vec(nil), s.points...)
}

func (s *Spline) Kind() Kind    { return KindSpline }
func (s *Spline) Start() r3.Vec { return s.points[0] }
func (s *Spline) End() r3.Vec   { return s.points[len(s.points)-1] }

func (s *Spline) ParamRange() (t0, t1 float64) {
	return 0, s.knots[len(s.knots)-1]
}

func (s *Spline) Length() float64 {
	return s.arcLen[len(s.arcLen)-1]
}

func (s *Spline) At(t float64) r3.Vec {
	_, t1 := s.ParamRange()
	t = math.Max(0, math.Min(t, t1))
	return r3.Vec{X: s.x.Predict(t), Y: s.y.Predict(t), Z: s.z.Predict(t)}
}

// speed returns |dP/dt| estimated with a central difference
// kept inside the parameter range.
func (s *Spline) speed(t float64) float64 {
	t0, t1 := s.ParamRange()
	h := 1e-6 * math.Max(1, t1)
	a, b := math.Max(t0, t-h), math.Min(t1, t+h)
	return r3.Norm(r3.Sub(s.At(b), s.At(a))) / (b - a)
}

func (s *Spline) lengthBetween(ta, tb float64) float64 {
	if tb <= ta {
		return 0
	}
	return quad.Fixed(s.speed, ta, tb, splineQuadNodes, nil, 0)
}

// AtLength returns the point at arc length l from the start.
func (s *Spline) AtLength(l float64) r3.Vec {
	total := s.Length()
	switch {
	case l <= 0:
		return s.Start()
	case l >= total:
		return s.End()
	}
	i := sort.SearchFloat64s(s.arcLen, l)
	if i > 0 {
		i--
	}
	// Bisect for the parameter inside knot interval i.
	lo, hi := s.knots[i], s.knots[i+1]
	base := s.arcLen[i]
	for iter := 0; iter < 60 && hi-lo > 1e-12; iter++ {
		mid := (lo + hi) / 2
		if base+s.lengthBetween(s.knots[i], mid) < l {
			lo = mid
		} else {
			hi = mid
		}
	}
	return s.At((lo + hi) / 2)
}

// Bounds returns the bounding box of the spline sampled densely
// between knots. Akima splines do not overshoot far from their
// knots so the sampled box is tight.
func (s *Spline) Bounds() r3.Box {
	const perInterval = 16
	bb := d3.EmptyBox()
	for _, p := range s.points {
		bb = bb.Include(p)
	}
	for i := 1; i < len(s.knots); i++ {
		a, b := s.knots[i-1], s.knots[i]
		for j := 1; j < perInterval; j++ {
			bb = bb.Include(s.At(a + (b-a)*float64(j)/perInterval))
		}
	}
	return r3.Box(bb)
}
