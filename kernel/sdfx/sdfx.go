// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx signed distance field library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

func tracer() tracing.Trace {
	return tracing.Select("partkit.kernel")
}

// Compile-time interface checks.
var (
	_ kernel.Kernel      = (*Kernel)(nil)
	_ kernel.Intersecter = (*Kernel)(nil)
)

const (
	defaultMeshCells       = 200
	defaultValidationCells = 64
)

// solid wraps an sdf.SDF3 to implement kernel.Solid.
type solid struct {
	s sdf.SDF3
}

func (s *solid) Bounds() r3.Box {
	bb := s.s.BoundingBox()
	return r3.Box{Min: toR3(bb.Min), Max: toR3(bb.Max)}
}

// SDF returns the signed distance field of a Solid created by this package.
func SDF(s kernel.Solid) (sdf.SDF3, bool) {
	sol, ok := s.(*solid)
	if !ok {
		return nil, false
	}
	return sol.s, true
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	meshCells       int
	validationCells int
	flattenTol      float64
	weldTol         float64
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithMeshCells sets the marching cubes resolution used by ToMesh and Sew
// along the longest bounding box side.
func WithMeshCells(n int) Option {
	return func(k *Kernel) { k.meshCells = n }
}

// WithValidationCells sets the marching cubes resolution used by IsValid.
func WithValidationCells(n int) Option {
	return func(k *Kernel) { k.validationCells = n }
}

// WithFlattenTolerance sets the maximum distance between a section curve
// and the polygon approximating it. Zero selects a tolerance relative to
// the section size.
func WithFlattenTolerance(tol float64) Option {
	return func(k *Kernel) { k.flattenTol = tol }
}

// WithWeldTolerance sets the distance under which mesh vertices are merged.
// Zero infers it from the mesh.
func WithWeldTolerance(tol float64) Option {
	return func(k *Kernel) { k.weldTol = tol }
}

// New returns a new sdfx backed Kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		meshCells:       defaultMeshCells,
		validationCells: defaultValidationCells,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	sol, ok := s.(*solid)
	if !ok {
		panic(fmt.Errorf("%w: %T", kernel.ErrForeignSolid, s))
	}
	return sol.s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Transform places s with the affine matrix m. Matrices composed of
// translation, rotation and axis scaling are handed to sdfx, anything
// else is evaluated through the inverse matrix.
func (k *Kernel) Transform(s kernel.Solid, m frame.Matrix) kernel.Solid {
	if m == (frame.Matrix{}) {
		return s
	}
	if m44, ok := toM44(m); ok {
		return wrap(sdf.Transform3D(unwrap(s), m44))
	}
	tracer().Debugf("sdfx: transform is not translate-rotate-scale, using inverse evaluation")
	t, err := newMatrixSDF3(unwrap(s), m)
	if err != nil {
		panic(err)
	}
	return wrap(t)
}

// toM44 decomposes m into translation, ZYX rotation and axis scale.
func toM44(m frame.Matrix) (sdf.M44, bool) {
	e := m.Elems()
	if e[12] != 0 || e[13] != 0 || e[14] != 0 || e[15] != 1 {
		return sdf.M44{}, false
	}
	cols := [3]r3.Vec{
		{X: e[0], Y: e[4], Z: e[8]},
		{X: e[1], Y: e[5], Z: e[9]},
		{X: e[2], Y: e[6], Z: e[10]},
	}
	var scale [3]float64
	for i := range cols {
		scale[i] = r3.Norm(cols[i])
		if scale[i] < 1e-12 {
			return sdf.M44{}, false
		}
		cols[i] = r3.Scale(1/scale[i], cols[i])
	}
	const orthoTol = 1e-9
	if math.Abs(r3.Dot(cols[0], cols[1])) > orthoTol ||
		math.Abs(r3.Dot(cols[1], cols[2])) > orthoTol ||
		math.Abs(r3.Dot(cols[0], cols[2])) > orthoTol ||
		r3.Dot(r3.Cross(cols[0], cols[1]), cols[2]) < 0 {
		return sdf.M44{}, false
	}
	// R = Rz(gamma) Ry(beta) Rx(alpha)
	r00, r10, r20 := cols[0].X, cols[0].Y, cols[0].Z
	r21, r22 := cols[1].Z, cols[2].Z
	r01, r11 := cols[1].X, cols[1].Y
	var alpha, beta, gamma float64
	beta = math.Asin(math.Max(-1, math.Min(1, -r20)))
	if math.Abs(r20) < 1-1e-12 {
		alpha = math.Atan2(r21, r22)
		gamma = math.Atan2(r10, r00)
	} else {
		// Gimbal lock, fold alpha into gamma.
		gamma = math.Atan2(-r01, r11)
	}
	m44 := sdf.Translate3d(v3.Vec{X: e[3], Y: e[7], Z: e[11]}).
		Mul(sdf.RotateZ(gamma)).
		Mul(sdf.RotateY(beta)).
		Mul(sdf.RotateX(alpha)).
		Mul(sdf.Scale3d(v3.Vec{X: scale[0], Y: scale[1], Z: scale[2]}))
	return m44, true
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tris, err := k.triangulate(unwrap(s), k.meshCells)
	if err != nil {
		return nil, err
	}
	return kernel.NewMesh(tris), nil
}

func (k *Kernel) triangulate(s sdf.SDF3, cells int) (tris [][3]r3.Vec, err error) {
	if cells <= 0 {
		return nil, fmt.Errorf("sdfx: invalid mesh resolution %d", cells)
	}
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("sdfx: marching cubes: %v", a)
		}
	}()
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	tris = make([][3]r3.Vec, 0, len(triangles))
	for _, tri := range triangles {
		var t [3]r3.Vec
		for j := 0; j < 3; j++ {
			t[j] = toR3(tri[j])
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// IsValid reports whether s meshes into a non empty closed surface at
// the validation resolution.
func (k *Kernel) IsValid(s kernel.Solid) bool {
	tris, err := k.triangulate(unwrap(s), k.validationCells)
	if err != nil || len(tris) == 0 {
		tracer().Debugf("sdfx: validity: no surface (%v)", err)
		return false
	}
	sh, err := kernel.Weld(tris, k.weldTol)
	if err != nil {
		tracer().Debugf("sdfx: validity: %v", err)
		return false
	}
	closed := sh.Closed()
	tracer().Debugf("sdfx: validity: %d faces, closed=%t", len(sh.Faces), closed)
	return closed
}

// Sew meshes s and welds the triangles into a shell.
func (k *Kernel) Sew(s kernel.Solid) (*kernel.Shell, error) {
	tris, err := k.triangulate(unwrap(s), k.meshCells)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("sdfx: sew: solid has no surface")
	}
	return kernel.Weld(tris, k.weldTol)
}

// SolidFromShell returns the solid bounded by a closed shell.
func (k *Kernel) SolidFromShell(sh *kernel.Shell) (kernel.Solid, error) {
	if sh == nil || !sh.Closed() {
		return nil, kernel.ErrOpenShell
	}
	s, err := newMeshSDF3(sh)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

func toR3(v v3.Vec) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func toV3(v r3.Vec) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
