// Package kernel defines the boundary between part construction code and
// the solid modeling kernel that performs the actual geometry work.
package kernel

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/sketch"
	"gonum.org/v1/gonum/spatial/r3"
)

func tracer() tracing.Trace {
	return tracing.Select("partkit.kernel")
}

var (
	// ErrUnsupportedPath is returned by kernels that cannot sweep along
	// the given path type or shape.
	ErrUnsupportedPath = errors.New("kernel: unsupported sweep path")
	// ErrOpenSection is returned when sweeping a section that is not closed.
	ErrOpenSection = errors.New("kernel: sweep section is not closed")
	// ErrOpenShell is returned when building a solid from a shell with holes.
	ErrOpenShell = errors.New("kernel: shell is not closed")
	// ErrForeignSolid is returned when a Solid created by another kernel
	// is passed in.
	ErrForeignSolid = errors.New("kernel: solid belongs to another kernel")
)

// Solid is an opaque solid owned by a Kernel.
type Solid interface {
	Bounds() r3.Box
}

// SweepMode selects how the section is oriented along the sweep path.
type SweepMode int

const (
	// SweepFrenet keeps the section aligned with the path's Frenet frame.
	SweepFrenet SweepMode = iota
	// SweepFixed translates the section without reorienting it.
	SweepFixed
)

func (m SweepMode) String() string {
	switch m {
	case SweepFrenet:
		return "frenet"
	case SweepFixed:
		return "fixed"
	}
	return fmt.Sprintf("SweepMode(%d)", int(m))
}

// Kernel is the set of solid modeling operations parts are built with.
type Kernel interface {
	// Sweep moves the closed section along path producing a solid.
	Sweep(section *sketch.Wire, path curve.Path, mode SweepMode) (Solid, error)
	// IsValid reports whether s is a well formed closed solid.
	IsValid(s Solid) bool
	// Sew stitches the faces of s into a shell.
	Sew(s Solid) (*Shell, error)
	// SolidFromShell builds a solid bounded by a closed shell.
	SolidFromShell(sh *Shell) (Solid, error)
	Union(a, b Solid) Solid
	// Difference returns a - b.
	Difference(a, b Solid) Solid
	// Transform places s with the affine matrix m.
	Transform(s Solid, m frame.Matrix) Solid
	ToMesh(s Solid) (*Mesh, error)
}

// Intersecter is implemented by kernels with a native intersection.
type Intersecter interface {
	Intersection(a, b Solid) Solid
}

// Cleaner is implemented by kernels that can simplify the result of
// a boolean operation, for example by merging coplanar faces.
type Cleaner interface {
	Clean(s Solid) Solid
}

// Intersect returns the intersection of a and b. Kernels implementing
// Intersecter are used directly. Otherwise the intersection is obtained
// by inclusion-exclusion:
//
//	A∩B = (A∪B) - ((A-B) ∪ (B-A))
//
// If clean is set and k implements Cleaner the result is cleaned.
func Intersect(k Kernel, a, b Solid, clean bool) Solid {
	var s Solid
	if ik, ok := k.(Intersecter); ok {
		tracer().Debugf("intersect: native")
		s = ik.Intersection(a, b)
	} else {
		tracer().Debugf("intersect: inclusion-exclusion")
		s = k.Difference(
			k.Union(a, b),
			k.Union(k.Difference(a, b), k.Difference(b, a)),
		)
	}
	if c, ok := k.(Cleaner); ok && clean {
		s = c.Clean(s)
	}
	return s
}
