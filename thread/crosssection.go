package thread

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/internal/d2"
	"github.com/soypat/partkit/internal/d3"
	"github.com/soypat/partkit/sketch"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNilProfile = errors.New("thread: profile has no wire")
	ErrZeroLead   = errors.New("thread: profile has no height")
)

// classifyTolerance is the relative tolerance under which a profile line
// is considered vertical or horizontal. It is scaled by the profile size.
const classifyTolerance = 1e-9

// Lead returns the height of the profile along Z, the axial advance of
// the thread per turn.
func Lead(profile *sketch.Wire) float64 {
	bb := profile.Bounds()
	return bb.Max.Z - bb.Min.Z
}

// segmentClass is how a profile segment is emitted in the cross section.
type segmentClass int

const (
	// classCurve segments are sampled and emitted as a spline.
	classCurve segmentClass = iota
	// classVertical lines have constant radius and map to a circular arc.
	classVertical
	// classHorizontal lines have constant angle and map to a radial line.
	classHorizontal
)

func (c segmentClass) String() string {
	switch c {
	case classCurve:
		return "curve"
	case classVertical:
		return "vertical"
	case classHorizontal:
		return "horizontal"
	}
	return fmt.Sprintf("segmentClass(%d)", int(c))
}

func classify(seg curve.Segment, tol float64) segmentClass {
	if seg.Kind() != curve.KindLine {
		return classCurve
	}
	a, b := seg.Start(), seg.End()
	switch {
	case math.Abs(a.X-b.X) <= tol:
		return classVertical
	case math.Abs(a.Z-b.Z) <= tol:
		return classHorizontal
	}
	return classCurve
}

// polarMap maps profile points on the XZ plane to the cross section
// plane. Height along the lead becomes angle around one turn.
type polarMap struct {
	lead     float64
	lefthand bool
}

// angle returns the cross section angle of profile height z.
func (m polarMap) angle(z float64) float64 {
	a := z / m.lead * 2 * math.Pi
	if !m.lefthand {
		a = -a
	}
	return a
}

// apply maps the profile point p. The Y coordinate of p is ignored.
func (m polarMap) apply(p r3.Vec) r2.Vec {
	return d2.Pol{R: p.X, Theta: m.angle(p.Z)}.PolarToCartesian()
}

// CrossSection converts a thread profile into the equivalent cross
// section on the XY plane.
//
// The profile is a single wire on the XZ plane spanning one lead of the
// thread, so its height along Z is the lead. A profile point (x, z) maps
// to radius x at angle 2π z/lead, clockwise seen from +Z for right hand
// threads. Vertical profile lines become arcs, horizontal lines become
// radial lines and all other segments are approximated by a spline
// through points sampled along them, as many as res assigns to the segment.
func CrossSection(profile *sketch.Wire, res Resolution, lefthand bool) (*sketch.Wire, error) {
	if profile == nil || profile.Wire == nil || profile.Len() == 0 {
		return nil, ErrNilProfile
	}
	bb := profile.Bounds()
	diag := d3.Box(bb).Diagonal()
	tol := classifyTolerance * math.Max(1, diag)
	lead := Lead(profile)
	if lead <= tol {
		return nil, ErrZeroLead
	}
	counts, err := res.Counts(profile.Lengths())
	if err != nil {
		return nil, err
	}
	m := polarMap{lead: lead, lefthand: lefthand}

	start := m.apply(profile.Start())
	b := sketch.New(frame.XY()).MoveTo(start.X, start.Y)
	for i, seg := range profile.Segments() {
		class := classify(seg, tol)
		switch class {
		case classVertical:
			mid := m.apply(seg.AtLength(seg.Length() / 2))
			b.ThreePointArc(mid, m.apply(seg.End()))
		case classHorizontal:
			end := m.apply(seg.End())
			b.LineTo(end.X, end.Y)
		default:
			b.Spline(samples(seg, counts[i], m)...)
		}
		tracer().Debugf("thread: profile segment %d (%s) emitted as %s", i, seg.Kind(), class)
	}
	section, err := b.Close().Wire()
	if err != nil {
		return nil, fmt.Errorf("thread: cross section: %w", err)
	}
	return section, nil
}

// samples returns n mapped points evenly spaced along seg, the last one
// at its end. Arcs are sampled by parameter, everything else by length.
func samples(seg curve.Segment, n int, m polarMap) []r2.Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]r2.Vec, n)
	if seg.Kind() == curve.KindArc {
		t0, t1 := seg.ParamRange()
		step := (t1 - t0) / float64(n)
		for j := range pts {
			pts[j] = m.apply(seg.At(t0 + float64(j+1)*step))
		}
		return pts
	}
	step := seg.Length() / float64(n)
	for j := range pts {
		pts[j] = m.apply(seg.AtLength(float64(j+1) * step))
	}
	return pts
}
