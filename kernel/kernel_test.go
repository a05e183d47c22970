package kernel

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// exprSolid records the boolean expression that produced it.
type exprSolid string

func (exprSolid) Bounds() r3.Box { return r3.Box{} }

// exprKernel is a Kernel that builds boolean expressions instead of geometry.
type exprKernel struct{}

var _ Kernel = exprKernel{}

func (exprKernel) Sweep(*sketch.Wire, curve.Path, SweepMode) (Solid, error) {
	return exprSolid("sweep"), nil
}
func (exprKernel) IsValid(Solid) bool                      { return true }
func (exprKernel) Sew(Solid) (*Shell, error)               { return nil, ErrOpenShell }
func (exprKernel) SolidFromShell(*Shell) (Solid, error)    { return nil, ErrOpenShell }
func (exprKernel) Transform(s Solid, _ frame.Matrix) Solid { return s }
func (exprKernel) ToMesh(Solid) (*Mesh, error)             { return &Mesh{}, nil }
func (exprKernel) Union(a, b Solid) Solid {
	return exprSolid("(" + string(a.(exprSolid)) + "|" + string(b.(exprSolid)) + ")")
}
func (exprKernel) Difference(a, b Solid) Solid {
	return exprSolid("(" + string(a.(exprSolid)) + "-" + string(b.(exprSolid)) + ")")
}

// nativeKernel adds native intersection and cleaning.
type nativeKernel struct{ exprKernel }

var (
	_ Intersecter = nativeKernel{}
	_ Cleaner     = nativeKernel{}
)

func (nativeKernel) Intersection(a, b Solid) Solid {
	return exprSolid("(" + string(a.(exprSolid)) + "&" + string(b.(exprSolid)) + ")")
}
func (nativeKernel) Clean(s Solid) Solid { return exprSolid("clean" + string(s.(exprSolid))) }

func TestIntersectInclusionExclusion(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	got := Intersect(exprKernel{}, exprSolid("a"), exprSolid("b"), true)
	assert.Equal(t, exprSolid("((a|b)-((a-b)|(b-a)))"), got)
}

func TestIntersectNative(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := nativeKernel{}
	assert.Equal(t, exprSolid("clean(a&b)"), Intersect(k, exprSolid("a"), exprSolid("b"), true))
	assert.Equal(t, exprSolid("(a&b)"), Intersect(k, exprSolid("a"), exprSolid("b"), false))
}

func TestSweepModeString(t *testing.T) {
	assert.Equal(t, "frenet", SweepFrenet.String())
	assert.Equal(t, "fixed", SweepFixed.String())
	assert.Equal(t, "SweepMode(7)", SweepMode(7).String())
}

// tetrahedron returns an outward wound tetrahedron.
func tetrahedron() [][3]r3.Vec {
	o := r3.Vec{}
	x, y, z := r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	return [][3]r3.Vec{
		{o, y, x},
		{o, x, z},
		{o, z, y},
		{x, y, z},
	}
}

func TestWeldClosedShell(t *testing.T) {
	sh, err := Weld(tetrahedron(), 0)
	require.NoError(t, err)
	assert.Len(t, sh.Vertices, 4)
	assert.Len(t, sh.Faces, 4)
	assert.True(t, sh.Closed())
	assert.InDelta(t, 1.0/6, sh.Volume(), 1e-12)
	assert.Equal(t, r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}, sh.Bounds())

	sh.Flip()
	assert.True(t, sh.Closed())
	assert.InDelta(t, -1.0/6, sh.Volume(), 1e-12)
}

func TestWeldOpenShell(t *testing.T) {
	tris := tetrahedron()[:3]
	sh, err := Weld(tris, 1e-6)
	require.NoError(t, err)
	assert.False(t, sh.Closed())

	// Nearby corners are merged.
	tris = tetrahedron()
	tris[3][0] = r3.Add(tris[3][0], r3.Vec{X: 1e-9})
	sh, err = Weld(tris, 1e-6)
	require.NoError(t, err)
	assert.True(t, sh.Closed())

	_, err = Weld(nil, 0)
	assert.Error(t, err)
}

func TestMesh(t *testing.T) {
	m := NewMesh(tetrahedron())
	assert.Equal(t, 4, m.TriangleCount())
	assert.Equal(t, 12, m.VertexCount())
	assert.False(t, m.IsEmpty())
	// First face o, y, x is wound toward -Z.
	assert.Equal(t, []float32{0, 0, -1}, m.Normals[:3])
	assert.Equal(t, tetrahedron()[3], m.Triangle(3))
	sh, err := Weld(m.Triangles(), 0)
	require.NoError(t, err)
	assert.True(t, sh.Closed())
	assert.True(t, (&Mesh{}).IsEmpty())
}
