package thread

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/kernel"
	"github.com/soypat/partkit/kernel/sdfx"
	"github.com/soypat/partkit/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type stubSolid string

func (stubSolid) Bounds() r3.Box { return r3.Box{} }

// stubKernel records sweeps and answers validity checks from a script.
type stubKernel struct {
	valid      []bool
	sewErr     error
	sweepPanic bool

	section *sketch.Wire
	path    curve.Path
	mode    kernel.SweepMode
	sewn    int
}

var _ kernel.Kernel = (*stubKernel)(nil)

func (k *stubKernel) Sweep(section *sketch.Wire, path curve.Path, mode kernel.SweepMode) (kernel.Solid, error) {
	if k.sweepPanic {
		panic("stub: sweep exploded")
	}
	k.section, k.path, k.mode = section, path, mode
	return stubSolid("swept"), nil
}

func (k *stubKernel) IsValid(s kernel.Solid) bool {
	if len(k.valid) == 0 {
		return false
	}
	v := k.valid[0]
	k.valid = k.valid[1:]
	return v
}

func (k *stubKernel) Sew(s kernel.Solid) (*kernel.Shell, error) {
	k.sewn++
	if k.sewErr != nil {
		return nil, k.sewErr
	}
	return &kernel.Shell{}, nil
}

func (k *stubKernel) SolidFromShell(sh *kernel.Shell) (kernel.Solid, error) {
	return stubSolid("repaired"), nil
}

func (k *stubKernel) Union(a, b kernel.Solid) kernel.Solid {
	return stubSolid(string(a.(stubSolid)) + "|" + string(b.(stubSolid)))
}

func (k *stubKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return stubSolid(string(a.(stubSolid)) + "-" + string(b.(stubSolid)))
}

func (k *stubKernel) Transform(s kernel.Solid, m frame.Matrix) kernel.Solid {
	return stubSolid("placed(" + string(s.(stubSolid)) + ")")
}

func (k *stubKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) { return &kernel.Mesh{}, nil }

// polyline is a variant accepting only the common parameters.
type polyline struct {
	Config
	pts []r2.Vec
	err error
}

func (p *polyline) SetParam(key, value string) (bool, error) { return false, nil }

func (p *polyline) Profile() (*sketch.Wire, error) {
	if p.err != nil {
		return nil, p.err
	}
	return sketch.New(frame.XZ()).Polyline(p.pts...).Wire()
}

func examplePolyline() *polyline {
	return &polyline{
		Config: DefaultConfig(),
		pts: []r2.Vec{
			{X: 2, Y: 0}, {X: 3, Y: 0.5}, {X: 3, Y: 1}, {X: 2, Y: 1.5}, {X: 2, Y: 2},
		},
	}
}

func TestMakeValid(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := &stubKernel{valid: []bool{true}}
	th := Thread{Provider: examplePolyline()}
	res, err := th.Make(k)
	require.NoError(t, err)
	assert.Equal(t, Result{Solid: stubSolid("swept"), Valid: true, Lead: 2}, res)
	assert.Zero(t, k.sewn)

	assert.Equal(t, kernel.SweepFrenet, k.mode)
	assert.True(t, k.section.Closed())
	helix, ok := k.path.(*curve.Helix)
	require.True(t, ok)
	assert.Equal(t, 2.0, helix.Pitch())
	assert.Equal(t, 10.0, helix.Height())
	assert.Equal(t, 1.0, helix.Radius())
	assert.True(t, helix.Cylindrical())
	assert.False(t, helix.LeftHand())
}

func TestMakeLeftHandInner(t *testing.T) {
	p := examplePolyline()
	p.LeftHand = true
	p.Inner = true
	p.Length = 4
	k := &stubKernel{valid: []bool{true}}
	res, err := (&Thread{Provider: p}).Make(k)
	require.NoError(t, err)
	assert.True(t, res.LeftHand)
	assert.True(t, res.Inner)
	helix := k.path.(*curve.Helix)
	assert.True(t, helix.LeftHand())
	assert.Equal(t, 4.0, helix.Height())
	// Left hand sections turn counter clockwise with profile height.
	assert.Greater(t, k.section.Segments()[0].End().Y, 0.0)

	assert.Equal(t, stubSolid("host-swept"), res.ApplyTo(k, stubSolid("host")))
	res.Inner = false
	assert.Equal(t, stubSolid("host|swept"), res.ApplyTo(k, stubSolid("host")))
	assert.Equal(t, stubSolid("host"), Result{}.ApplyTo(k, stubSolid("host")))

	placed := res.Place(k, frame.Identity())
	assert.Equal(t, stubSolid("placed(swept)"), placed.Solid)
	assert.Equal(t, stubSolid("swept"), res.Solid)
}

func TestMakeRepair(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := &stubKernel{valid: []bool{false, true}}
	res, err := (&Thread{Provider: examplePolyline()}).Make(k)
	require.NoError(t, err)
	assert.Equal(t, 1, k.sewn)
	assert.Equal(t, stubSolid("repaired"), res.Solid)
	assert.True(t, res.Repaired)
	assert.True(t, res.Valid)

	// Repair that does not produce a valid solid is still reported.
	k = &stubKernel{valid: []bool{false, false}}
	res, err = (&Thread{Provider: examplePolyline()}).Make(k)
	require.NoError(t, err)
	assert.True(t, res.Repaired)
	assert.False(t, res.Valid)
}

func TestMakeRepairFails(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := &stubKernel{valid: []bool{false}, sewErr: errors.New("stub: cannot sew")}
	res, err := (&Thread{Provider: examplePolyline()}).Make(k)
	require.NoError(t, err)
	assert.Equal(t, stubSolid("swept"), res.Solid)
	assert.False(t, res.Valid)
	assert.False(t, res.Repaired)
}

func TestMakeErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := (&Thread{}).Make(&stubKernel{})
	assert.ErrorIs(t, err, ErrNoProfile)

	errProfile := errors.New("no profile today")
	p := examplePolyline()
	p.err = errProfile
	_, err = (&Thread{Provider: p}).Make(&stubKernel{})
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StageProfile, be.Stage)
	assert.ErrorIs(t, err, errProfile)

	_, err = (&Thread{Provider: examplePolyline(), Resolution: PerSegment(1)}).Make(&stubKernel{})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StageCrossSection, be.Stage)

	p = examplePolyline()
	p.Length = -1
	_, err = (&Thread{Provider: p}).Make(&stubKernel{})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StagePath, be.Stage)
	assert.ErrorIs(t, err, curve.ErrInvalidHelix)

	res, err := (&Thread{Provider: examplePolyline()}).Make(&stubKernel{sweepPanic: true})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StageSweep, be.Stage)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "sweep exploded")
	assert.NotEmpty(t, se.Stack())
	assert.Nil(t, res.Solid)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "cross section", StageCrossSection.String())
	assert.Equal(t, "validate", StageValidate.String())
	assert.Equal(t, "Stage(9)", Stage(9).String())
	err := &BuildError{Stage: StageSweep, Err: kernel.ErrOpenSection}
	assert.Equal(t, "thread: sweep: kernel: sweep section is not closed", err.Error())
}

// assertTriangularShape checks the default triangular thread of length 3.
// Solids rebuilt from a mesh are only checked away from the surface.
func assertTriangularShape(t *testing.T, res Result) {
	t.Helper()
	s, ok := sdfx.SDF(res.Solid)
	require.True(t, ok)
	eval := func(x, y, z float64) float64 {
		return s.Evaluate(v3.Vec{X: x, Y: y, Z: z})
	}
	tol := 1e-9
	if res.Repaired {
		tol = 0.5
	}
	bb := res.Solid.Bounds()
	assert.InDelta(t, 3, bb.Max.X, math.Max(tol, 0.05))
	assert.InDelta(t, 0, bb.Min.Z, tol)
	assert.InDelta(t, 3, bb.Max.Z, tol)

	// Inside the core and outside the thread.
	assert.Less(t, eval(0, 0, 1.5), 0.0)
	assert.Less(t, eval(1.5, 0, 1.5), 0.0)
	assert.Greater(t, eval(4, 0, 1.5), 0.0)
	assert.Greater(t, eval(0, 0, 4), 0.0)
	if res.Repaired {
		return
	}
	assert.Less(t, eval(2.3, 0, 1.5), 0.0)
	assert.Greater(t, eval(3.2, 0, 1.5), 0.0)
	// The crest sits at the profile height of the tip, half a pitch up.
	assert.Less(t, eval(2.9, 0, 0.5), 0.0)
	assert.Greater(t, eval(2.9, 0, 1.0), 0.0)
	assert.Less(t, eval(0, 2.9, 0.75), 0.0)
	assert.Greater(t, eval(0, -2.9, 0.75), 0.0)
}

func TestMakeSDFX(t *testing.T) {
	if testing.Short() {
		t.Skip("meshes the thread")
	}
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tri := NewTriangular()
	tri.Length = 3
	k := sdfx.New(sdfx.WithValidationCells(16), sdfx.WithMeshCells(16))
	res, err := (&Thread{Provider: tri}).Make(k)
	require.NoError(t, err)
	require.NotNil(t, res.Solid)
	assert.InDelta(t, 1, res.Lead, 1e-12)
	assertTriangularShape(t, res)
}

// rejectingKernel is an sdfx kernel failing the first validity check so
// Make goes through repair.
type rejectingKernel struct {
	*sdfx.Kernel
	checks, sewn int
}

func (k *rejectingKernel) IsValid(s kernel.Solid) bool {
	k.checks++
	if k.checks == 1 {
		return false
	}
	return k.Kernel.IsValid(s)
}

func (k *rejectingKernel) Sew(s kernel.Solid) (*kernel.Shell, error) {
	k.sewn++
	return k.Kernel.Sew(s)
}

func TestMakeSDFXRepair(t *testing.T) {
	if testing.Short() {
		t.Skip("meshes the thread")
	}
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tri := NewTriangular()
	tri.Length = 3
	k := &rejectingKernel{Kernel: sdfx.New(sdfx.WithValidationCells(16), sdfx.WithMeshCells(24))}
	res, err := (&Thread{Provider: tri}).Make(k)
	require.NoError(t, err)
	require.NotNil(t, res.Solid)
	assert.Equal(t, 1, k.sewn)
	if res.Repaired {
		assert.Equal(t, 2, k.checks)
	} else {
		// The sewn shell was open, the swept solid is kept.
		assert.False(t, res.Valid)
	}
	assertTriangularShape(t, res)
}
