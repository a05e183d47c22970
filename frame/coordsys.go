// Package frame implements right handed orthonormal coordinate systems
// and the 4x4 affine matrices used to compose placements.
package frame

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/soypat/partkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// zeroTol is the norm under which a direction is considered degenerate.
	zeroTol = 1e-12
	// orthoTol is the largest accepted cosine between x and normal directions.
	orthoTol = 1e-6
)

var (
	ErrZeroDirection = errors.New("frame: zero length direction")
	ErrNotOrthogonal = errors.New("frame: x direction is not orthogonal to normal")
	ErrNotAffine     = errors.New("frame: matrix is not affine")
)

// CompositionError is returned when composing a CoordSystem
// with a value that is not a CoordSystem.
type CompositionError struct {
	Left, Right string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("frame: cannot compose %s with %s", e.Left, e.Right)
}

// CoordSystem is an oriented 3D frame: an origin and two orthonormal
// directions, x and z. The y direction is implied by z × x.
// CoordSystem is a value type; every operation returns a new value.
// The zero value is not valid, use Identity.
type CoordSystem struct {
	origin r3.Vec
	xDir   r3.Vec
	zDir   r3.Vec
}

// New returns a CoordSystem at origin with the given x direction and normal.
// Directions are normalized. They must not be zero and must be orthogonal.
func New(origin, xDir, normal r3.Vec) (CoordSystem, error) {
	if d3.IsZero(xDir, zeroTol) || d3.IsZero(normal, zeroTol) {
		return CoordSystem{}, ErrZeroDirection
	}
	x, z := r3.Unit(xDir), r3.Unit(normal)
	if math.Abs(r3.Dot(x, z)) > orthoTol {
		return CoordSystem{}, ErrNotOrthogonal
	}
	return CoordSystem{origin: origin, xDir: x, zDir: z}, nil
}

// MustNew is like New but panics on error.
func MustNew(origin, xDir, normal r3.Vec) CoordSystem {
	c, err := New(origin, xDir, normal)
	if err != nil {
		panic(err)
	}
	return c
}

// Identity returns the world coordinate system.
func Identity() CoordSystem {
	return CoordSystem{xDir: r3.Vec{X: 1}, zDir: r3.Vec{Z: 1}}
}

// FromPlane copies a kernel plane into a CoordSystem.
func FromPlane(p Plane) (CoordSystem, error) {
	return New(p.Origin, p.XDir, p.Normal)
}

// FromMatrix extracts the placement encoded in an affine matrix.
// The matrix is applied to the origin and to unit points along +X
// and +Z, the transformed origin is subtracted to recover the axis
// directions. Scale is discarded by normalization and residual shear
// is removed by re-orthogonalizing x against z.
func FromMatrix(m Matrix) (CoordSystem, error) {
	if m.d[12] != 0 || m.d[13] != 0 || m.d[14] != 0 || m.d[15] != 0 {
		return CoordSystem{}, ErrNotAffine
	}
	origin := m.Transform(r3.Vec{})
	x := r3.Sub(m.Transform(r3.Vec{X: 1}), origin)
	z := r3.Sub(m.Transform(r3.Vec{Z: 1}), origin)
	if d3.IsZero(x, zeroTol) || d3.IsZero(z, zeroTol) {
		return CoordSystem{}, ErrZeroDirection
	}
	z = r3.Unit(z)
	x = r3.Sub(x, r3.Scale(r3.Dot(x, z), z))
	if d3.IsZero(x, zeroTol) {
		return CoordSystem{}, ErrNotOrthogonal
	}
	return CoordSystem{origin: origin, xDir: r3.Unit(x), zDir: z}, nil
}

// Origin returns the origin of c in world coordinates.
func (c CoordSystem) Origin() r3.Vec { return c.origin }

// XDir returns the unit x direction of c.
func (c CoordSystem) XDir() r3.Vec { return c.xDir }

// YDir returns the unit y direction of c.
func (c CoordSystem) YDir() r3.Vec { return r3.Cross(c.zDir, c.xDir) }

// ZDir returns the unit z direction (normal) of c.
func (c CoordSystem) ZDir() r3.Vec { return c.zDir }

// Plane returns c as a kernel plane.
func (c CoordSystem) Plane() Plane {
	return Plane{Origin: c.origin, XDir: c.xDir, Normal: c.zDir}
}

// LocalToWorld returns the matrix mapping coordinates local to c
// into world coordinates.
func (c CoordSystem) LocalToWorld() Matrix {
	return Basis(c.origin, c.xDir, c.YDir(), c.zDir)
}

// WorldToLocal returns the matrix mapping world coordinates into
// coordinates local to c. It is the rigid inverse of LocalToWorld.
func (c CoordSystem) WorldToLocal() Matrix {
	x, y, z := c.xDir, c.YDir(), c.zDir
	o := c.origin
	return NewMatrix([]float64{
		x.X, x.Y, x.Z, -r3.Dot(x, o),
		y.X, y.Y, y.Z, -r3.Dot(y, o),
		z.X, z.Y, z.Z, -r3.Dot(z, o),
		0, 0, 0, 1,
	})
}

// ToWorld maps the point p given in c's local coordinates to world coordinates.
func (c CoordSystem) ToWorld(p r3.Vec) r3.Vec {
	return c.LocalToWorld().Transform(p)
}

// ToLocal maps the world point p into c's local coordinates.
func (c CoordSystem) ToLocal(p r3.Vec) r3.Vec {
	return c.WorldToLocal().Transform(p)
}

// Compose interprets b as expressed in c's local frame and returns b's
// placement in world coordinates.
func (c CoordSystem) Compose(b CoordSystem) CoordSystem {
	m := c.LocalToWorld().Mul(b.LocalToWorld())
	out, err := FromMatrix(m)
	if err != nil {
		// The product of two rigid transforms is rigid.
		panic("frame: composition of valid coordinate systems failed: " + err.Error())
	}
	return out
}

// Add is the dynamic form of Compose. It accepts a CoordSystem or
// a *CoordSystem and returns a *CompositionError for anything else.
// Zero value operands return ErrZeroDirection.
func (c CoordSystem) Add(v any) (CoordSystem, error) {
	var b CoordSystem
	switch v := v.(type) {
	case CoordSystem:
		b = v
	case *CoordSystem:
		if v == nil {
			return CoordSystem{}, &CompositionError{Left: fmt.Sprintf("%T", c), Right: fmt.Sprintf("%T", v)}
		}
		b = *v
	default:
		return CoordSystem{}, &CompositionError{Left: fmt.Sprintf("%T", c), Right: fmt.Sprintf("%T", v)}
	}
	if c.degenerate() || b.degenerate() {
		return CoordSystem{}, ErrZeroDirection
	}
	return c.Compose(b), nil
}

// degenerate reports whether c has a zero direction, as the zero value does.
func (c CoordSystem) degenerate() bool {
	return d3.IsZero(c.xDir, zeroTol) || d3.IsZero(c.zDir, zeroTol)
}

// Rotated returns c rotated about its own origin. Angles are in degrees
// and are applied about c's local X, then Y, then Z axes.
func (c CoordSystem) Rotated(x, y, z float64) CoordSystem {
	const deg = math.Pi / 180
	rot := RotationZ(z * deg).Mul(RotationY(y * deg)).Mul(RotationX(x * deg))
	local := CoordSystem{
		xDir: rot.TransformDir(r3.Vec{X: 1}),
		zDir: rot.TransformDir(r3.Vec{Z: 1}),
	}
	return c.Compose(local)
}

// Equal reports whether the origins and directions of c and o
// differ by at most tol on every component.
func (c CoordSystem) Equal(o CoordSystem, tol float64) bool {
	return d3.EqualWithin(c.origin, o.origin, tol) &&
		d3.EqualWithin(c.xDir, o.xDir, tol) &&
		d3.EqualWithin(c.zDir, o.zDir, tol)
}

// Random returns a coordinate system with its origin inside the
// cube [-scale, scale]³ and a uniformly random orientation.
func Random(rng *rand.Rand, scale float64) CoordSystem {
	origin := r3.Vec{
		X: scale * (2*rng.Float64() - 1),
		Y: scale * (2*rng.Float64() - 1),
		Z: scale * (2*rng.Float64() - 1),
	}
	randDir := func() r3.Vec {
		for {
			v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
			if !d3.IsZero(v, 1e-6) {
				return r3.Unit(v)
			}
		}
	}
	z := randDir()
	for {
		x := randDir()
		x = r3.Sub(x, r3.Scale(r3.Dot(x, z), z))
		if !d3.IsZero(x, 1e-6) {
			return CoordSystem{origin: origin, xDir: r3.Unit(x), zDir: z}
		}
	}
}

func (c CoordSystem) String() string {
	return fmt.Sprintf("CoordSystem(origin=%v, xDir=%v, normal=%v)", c.origin, c.xDir, c.zDir)
}
