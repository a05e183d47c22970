package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"
)

// Path is a sweep rail.
type Path interface {
	At(t float64) r3.Vec
	ParamRange() (t0, t1 float64)
	Bounds() r3.Box
}

// Helix is a helical space curve about the Z axis starting at
// (radius, 0, 0). Its native parameter is the winding angle in
// radians, so one turn spans 2π. Right hand helices wind counter
// clockwise when seen from +Z.
type Helix struct {
	pitch    float64
	height   float64
	radius   float64
	angle    float64 // taper in radians, 0 is cylindrical
	lefthand bool
}

var _ Path = (*Helix)(nil)

// NewHelix returns a helix rising pitch per turn up to height.
// A non zero angle (degrees) makes the helix conical, its radius
// growing by tan(angle) per unit of height.
func NewHelix(pitch, height, radius, angle float64, lefthand bool) (*Helix, error) {
	if pitch <= 0 || height <= 0 || radius <= 0 || math.Abs(angle) >= 90 {
		return nil, fmt.Errorf("%w: pitch=%g height=%g radius=%g angle=%g", ErrInvalidHelix, pitch, height, radius, angle)
	}
	return &Helix{
		pitch:    pitch,
		height:   height,
		radius:   radius,
		angle:    angle * math.Pi / 180,
		lefthand: lefthand,
	}, nil
}

func (h *Helix) Pitch() float64  { return h.pitch }
func (h *Helix) Height() float64 { return h.height }
func (h *Helix) Radius() float64 { return h.radius }
func (h *Helix) LeftHand() bool  { return h.lefthand }

// Angle returns the taper angle in degrees.
func (h *Helix) Angle() float64 { return h.angle * 180 / math.Pi }

// Cylindrical reports whether the helix has no taper.
func (h *Helix) Cylindrical() bool { return h.angle == 0 }

// Turns returns the number of turns, not necessarily integer.
func (h *Helix) Turns() float64 { return h.height / h.pitch }

func (h *Helix) ParamRange() (t0, t1 float64) {
	return 0, 2 * math.Pi * h.Turns()
}

// hand returns +1 for right hand helices and -1 for left hand.
func (h *Helix) hand() float64 {
	if h.lefthand {
		return -1
	}
	return 1
}

// rise is dz/dt.
func (h *Helix) rise() float64 { return h.pitch / (2 * math.Pi) }

// grow is dr/dt.
func (h *Helix) grow() float64 { return math.Tan(h.angle) * h.rise() }

func (h *Helix) At(t float64) r3.Vec {
	r := h.radius + h.grow()*t
	s, c := math.Sincos(h.hand() * t)
	return r3.Vec{X: r * c, Y: r * s, Z: h.rise() * t}
}

// derivatives returns the first and second derivatives of the helix at t.
func (h *Helix) derivatives(t float64) (d1, d2 r3.Vec) {
	hs, k := h.hand(), h.grow()
	r := h.radius + k*t
	s, c := math.Sincos(hs * t)
	d1 = r3.Vec{
		X: k*c - hs*r*s,
		Y: k*s + hs*r*c,
		Z: h.rise(),
	}
	d2 = r3.Vec{
		X: -2*hs*k*s - r*c,
		Y: 2*hs*k*c - r*s,
	}
	return d1, d2
}

// Frenet returns the Frenet frame (tangent, normal, binormal) at t.
// For a cylindrical helix the normal always points at the Z axis.
func (h *Helix) Frenet(t float64) (tangent, normal, binormal r3.Vec) {
	d1, d2 := h.derivatives(t)
	tangent = r3.Unit(d1)
	binormal = r3.Unit(r3.Cross(d1, d2))
	normal = r3.Cross(binormal, tangent)
	return tangent, normal, binormal
}

// Length returns the arc length of the helix.
func (h *Helix) Length() float64 {
	t0, t1 := h.ParamRange()
	if h.Cylindrical() {
		return (t1 - t0) * math.Hypot(h.radius, h.rise())
	}
	speed := func(t float64) float64 {
		d1, _ := h.derivatives(t)
		return r3.Norm(d1)
	}
	return quad.Fixed(speed, t0, t1, 64, nil, 0)
}

// MaxRadius returns the largest distance of the helix to the Z axis.
func (h *Helix) MaxRadius() float64 {
	return math.Max(h.radius, h.radius+math.Tan(h.angle)*h.height)
}

func (h *Helix) Bounds() r3.Box {
	r := h.MaxRadius()
	return r3.Box{
		Min: r3.Vec{X: -r, Y: -r},
		Max: r3.Vec{X: r, Y: r, Z: h.height},
	}
}
