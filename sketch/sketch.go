// Package sketch builds planar wires on a construction plane using
// pen style commands: move-to, line-to, three point arcs and splines.
package sketch

import (
	"errors"
	"fmt"

	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNoStart      = errors.New("sketch: drawing command before MoveTo")
	ErrMoveAfterUse = errors.New("sketch: MoveTo after drawing, a sketch holds one wire")
	ErrClosed       = errors.New("sketch: drawing command after Close")
	ErrEmpty        = errors.New("sketch: sketch has no segments")
)

// Builder accumulates pen commands into a single wire on a plane.
// Coordinates passed to the Builder are local to the plane. The first
// error encountered is kept and returned by Wire, subsequent commands
// are ignored.
type Builder struct {
	plane   frame.Plane
	segs    []curve.Segment
	start   r2.Vec
	current r2.Vec
	started bool
	closed  bool
	err     error
}

// New returns a Builder drawing on plane p.
func New(p frame.Plane) *Builder {
	return &Builder{plane: p}
}

// Plane returns the construction plane of the builder.
func (b *Builder) Plane() frame.Plane { return b.plane }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// ready reports whether a drawing command may proceed.
func (b *Builder) ready() bool {
	switch {
	case b.err != nil:
		return false
	case !b.started:
		b.fail(ErrNoStart)
		return false
	case b.closed:
		b.fail(ErrClosed)
		return false
	}
	return true
}

func (b *Builder) world(v r2.Vec) r3.Vec { return b.plane.ToWorld(v) }

// MoveTo places the pen at (x, y) without drawing.
func (b *Builder) MoveTo(x, y float64) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.segs) > 0 {
		return b.fail(ErrMoveAfterUse)
	}
	b.start = r2.Vec{X: x, Y: y}
	b.current = b.start
	b.started = true
	return b
}

// LineTo draws a straight line from the pen to (x, y).
func (b *Builder) LineTo(x, y float64) *Builder {
	if !b.ready() {
		return b
	}
	end := r2.Vec{X: x, Y: y}
	ln, err := curve.NewLine(b.world(b.current), b.world(end))
	if err != nil {
		return b.fail(fmt.Errorf("line %d: %w", len(b.segs), err))
	}
	b.segs = append(b.segs, ln)
	b.current = end
	return b
}

// ThreePointArc draws a circular arc from the pen through mid to end.
func (b *Builder) ThreePointArc(mid, end r2.Vec) *Builder {
	if !b.ready() {
		return b
	}
	arc, err := curve.NewArc(b.world(b.current), b.world(mid), b.world(end))
	if err != nil {
		return b.fail(fmt.Errorf("arc %d: %w", len(b.segs), err))
	}
	b.segs = append(b.segs, arc)
	b.current = end
	return b
}

// Spline draws an interpolating spline from the pen through pts.
// A spline through a single point is drawn as a line.
func (b *Builder) Spline(pts ...r2.Vec) *Builder {
	if !b.ready() {
		return b
	}
	if len(pts) == 0 {
		return b
	}
	if len(pts) == 1 {
		return b.LineTo(pts[0].X, pts[0].Y)
	}
	world := make([]r3.Vec, 0, len(pts)+1)
	world = append(world, b.world(b.current))
	for _, p := range pts {
		world = append(world, b.world(p))
	}
	sp, err := curve.NewSpline(world)
	if err != nil {
		return b.fail(fmt.Errorf("spline %d: %w", len(b.segs), err))
	}
	b.segs = append(b.segs, sp)
	b.current = pts[len(pts)-1]
	return b
}

// Polyline moves to the first point and draws lines through the rest.
func (b *Builder) Polyline(pts ...r2.Vec) *Builder {
	if len(pts) == 0 {
		return b
	}
	b.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		b.LineTo(p.X, p.Y)
	}
	return b
}

// Close draws a line back to the MoveTo point if the pen is elsewhere
// and marks the sketch as closed.
func (b *Builder) Close() *Builder {
	if !b.ready() {
		return b
	}
	if !d2.EqualWithin(b.current, b.start, curve.Tolerance) {
		b.LineTo(b.start.X, b.start.Y)
	}
	b.closed = true
	return b
}

// Wire returns the drawn wire or the first error encountered.
func (b *Builder) Wire() (*Wire, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.segs) == 0 {
		return nil, ErrEmpty
	}
	w, err := curve.NewWire(b.segs...)
	if err != nil {
		return nil, err
	}
	return &Wire{Wire: w, plane: b.plane, closed: b.closed}, nil
}
