package curve

import (
	"fmt"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// GapError is returned when consecutive wire segments do not touch.
type GapError struct {
	Index int // index of the segment whose start misses the previous end
	Gap   float64
}

func (e *GapError) Error() string {
	return fmt.Sprintf("curve: segment %d starts %g away from the end of segment %d", e.Index, e.Gap, e.Index-1)
}

// Wire is an ordered chain of contiguous segments.
type Wire struct {
	segs []Segment
}

// NewWire returns a wire made of segs. The end of each segment must
// coincide with the start of the next within Tolerance.
func NewWire(segs ...Segment) (*Wire, error) {
	if len(segs) == 0 {
		return nil, ErrEmptyWire
	}
	for i := 1; i < len(segs); i++ {
		gap := r3.Norm(r3.Sub(segs[i].Start(), segs[i-1].End()))
		if gap > Tolerance {
			return nil, &GapError{Index: i, Gap: gap}
		}
	}
	return &Wire{segs: append([]Segment(nil), segs...)}, nil
}

// Segments returns the wire segments in order.
func (w *Wire) Segments() []Segment {
	return append([]Segment(nil), w.segs...)
}

// Len returns the number of segments.
func (w *Wire) Len() int { return len(w.segs) }

func (w *Wire) Start() r3.Vec { return w.segs[0].Start() }
func (w *Wire) End() r3.Vec   { return w.segs[len(w.segs)-1].End() }

// Closed reports whether the wire ends where it starts.
func (w *Wire) Closed() bool {
	return d3.EqualWithin(w.Start(), w.End(), Tolerance)
}

// Lengths returns the length of every segment.
func (w *Wire) Lengths() []float64 {
	ls := make([]float64, len(w.segs))
	for i, s := range w.segs {
		ls[i] = s.Length()
	}
	return ls
}

// Length returns the total length of the wire.
func (w *Wire) Length() float64 {
	return floats.Sum(w.Lengths())
}

// Bounds returns the bounding box of the wire.
func (w *Wire) Bounds() r3.Box {
	bb := d3.Box(w.segs[0].Bounds())
	for _, s := range w.segs[1:] {
		bb = bb.Extend(d3.Box(s.Bounds()))
	}
	return r3.Box(bb)
}
