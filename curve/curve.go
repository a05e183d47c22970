// Package curve implements the edge and wire representation exchanged
// with a modeling kernel: lines, circular arcs, interpolating splines
// and helices in 3D space.
package curve

import (
	"errors"
	"fmt"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the distance under which two points are considered coincident.
const Tolerance = 1e-7

var (
	ErrEmptyWire    = errors.New("curve: wire has no segments")
	ErrDegenerate   = errors.New("curve: degenerate segment")
	ErrCollinear    = errors.New("curve: arc points are collinear")
	ErrFewPoints    = errors.New("curve: spline needs at least two distinct points")
	ErrInvalidHelix = errors.New("curve: invalid helix parameters")
)

// Kind is the geometric kind of a Segment.
type Kind int

const (
	KindLine Kind = iota
	KindArc
	KindSpline
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindSpline:
		return "spline"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Segment is a single edge of a Wire. Every Segment exposes two
// parametrizations: its native one through At over ParamRange and
// arc length through AtLength over [0, Length].
type Segment interface {
	Kind() Kind
	Start() r3.Vec
	End() r3.Vec
	Length() float64
	ParamRange() (t0, t1 float64)
	At(t float64) r3.Vec
	AtLength(s float64) r3.Vec
	Bounds() r3.Box
}

// Line is a straight segment between two points. Its native
// parameter runs from 0 at P0 to 1 at P1.
type Line struct {
	P0, P1 r3.Vec
}

var _ Segment = Line{}

// NewLine returns the line from p0 to p1. Coincident points are rejected.
func NewLine(p0, p1 r3.Vec) (Line, error) {
	if d3.IsZero(r3.Sub(p1, p0), Tolerance) {
		return Line{}, ErrDegenerate
	}
	return Line{P0: p0, P1: p1}, nil
}

func (l Line) Kind() Kind                   { return KindLine }
func (l Line) Start() r3.Vec                { return l.P0 }
func (l Line) End() r3.Vec                  { return l.P1 }
func (l Line) Length() float64              { return r3.Norm(r3.Sub(l.P1, l.P0)) }
func (l Line) ParamRange() (t0, t1 float64) { return 0, 1 }

func (l Line) At(t float64) r3.Vec {
	return r3.Add(l.P0, r3.Scale(t, r3.Sub(l.P1, l.P0)))
}

func (l Line) AtLength(s float64) r3.Vec {
	length := l.Length()
	if length == 0 {
		return l.P0
	}
	return l.At(s / length)
}

func (l Line) Bounds() r3.Box {
	return d3.Set{l.P0, l.P1}.Bounds()
}

// Midpoint returns the point halfway between the line ends.
func (l Line) Midpoint() r3.Vec {
	return l.At(0.5)
}
