// Package thread builds helical thread solids from 2D thread profiles.
//
// A thread is described by its profile: a wire on the XZ plane giving the
// radius (X) of the thread surface along one lead of height (Z). The
// profile is converted to an equivalent cross section on the XY plane
// which is then swept along a helix by a kernel.Kernel. Variants such as
// Triangular, ISO262 and BallScrew provide profiles and are available by
// name through the registry.
package thread

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/npillmayer/schuko/tracing"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/kernel"
	"github.com/soypat/partkit/sketch"
)

func tracer() tracing.Trace {
	return tracing.Select("partkit.thread")
}

// ErrNoProfile is returned by Make for a Thread without a ProfileProvider.
var ErrNoProfile = errors.New("thread: no profile provider")

// ProfileProvider supplies the profile and parameters of a thread.
type ProfileProvider interface {
	// Profile returns one lead of the thread profile drawn on the XZ plane.
	Profile() (*sketch.Wire, error)
	Parameters() Config
}

// Thread builds the solid of the profile supplied by Provider.
type Thread struct {
	Provider ProfileProvider
	// Resolution of the cross section. The zero value is DefaultResolution.
	Resolution Resolution
}

// Stage is a step of the thread building pipeline.
type Stage int

const (
	StageProfile Stage = iota
	StageCrossSection
	StagePath
	StageSweep
	StageValidate
)

func (s Stage) String() string {
	switch s {
	case StageProfile:
		return "profile"
	case StageCrossSection:
		return "cross section"
	case StagePath:
		return "path"
	case StageSweep:
		return "sweep"
	case StageValidate:
		return "validate"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// BuildError is returned by Make when a stage fails.
type BuildError struct {
	Stage Stage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("thread: %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ShapeError holds a panic raised by a kernel during Make.
type ShapeError struct {
	panicObj any
	stack    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v", e.panicObj)
}

// Stack returns the stack trace captured when the panic was recovered.
func (e *ShapeError) Stack() string { return e.stack }

// Result is a built thread. Geometry that failed validation is still
// returned with Valid set to false.
type Result struct {
	Solid kernel.Solid
	// Valid is set if the solid passed the kernel validity check,
	// possibly after repair.
	Valid bool
	// Repaired is set if the swept solid was rebuilt from a sewn shell.
	Repaired bool
	Inner    bool
	LeftHand bool
	Lead     float64
}

// Make builds the thread solid with kernel k. The steps are:
//   - build the profile and convert it to a cross section;
//   - build a unit radius helix rising one lead per turn;
//   - sweep the cross section along the helix with a Frenet frame;
//   - validate the solid and, if it is invalid, sew it into a shell and
//     rebuild a solid from the shell.
//
// A failed repair is not an error, the unrepaired solid is returned.
func (t *Thread) Make(k kernel.Kernel) (res Result, err error) {
	if t.Provider == nil {
		return Result{}, &BuildError{Stage: StageProfile, Err: ErrNoProfile}
	}
	stage := StageProfile
	defer func() {
		if a := recover(); a != nil {
			res = Result{}
			err = &BuildError{Stage: stage, Err: &ShapeError{
				panicObj: a,
				stack:    string(debug.Stack()),
			}}
		}
	}()
	cfg := t.Provider.Parameters()
	profile, err := t.Provider.Profile()
	if err != nil {
		return Result{}, &BuildError{Stage: stage, Err: err}
	}

	stage = StageCrossSection
	resolution := t.Resolution
	if resolution.IsZero() {
		resolution = DefaultResolution
	}
	section, err := CrossSection(profile, resolution, cfg.LeftHand)
	if err != nil {
		return Result{}, &BuildError{Stage: stage, Err: err}
	}

	stage = StagePath
	lead := Lead(profile)
	path, err := HelicalPath(lead, cfg.Length, 1, 0, cfg.LeftHand)
	if err != nil {
		return Result{}, &BuildError{Stage: stage, Err: err}
	}

	stage = StageSweep
	solid, err := k.Sweep(section, path, kernel.SweepFrenet)
	if err != nil {
		return Result{}, &BuildError{Stage: stage, Err: err}
	}

	stage = StageValidate
	result := Result{
		Solid:    solid,
		Inner:    cfg.Inner,
		LeftHand: cfg.LeftHand,
		Lead:     lead,
	}
	if k.IsValid(solid) {
		result.Valid = true
		return result, nil
	}
	tracer().Infof("thread: swept solid is not valid, repairing")
	repaired, err := repair(k, solid)
	if err != nil {
		tracer().Errorf("thread: repair failed, returning invalid solid: %v", err)
		return result, nil
	}
	result.Solid = repaired
	result.Repaired = true
	result.Valid = k.IsValid(repaired)
	return result, nil
}

func repair(k kernel.Kernel, s kernel.Solid) (kernel.Solid, error) {
	shell, err := k.Sew(s)
	if err != nil {
		return nil, err
	}
	return k.SolidFromShell(shell)
}

// ApplyTo adds the thread to host, or cuts it from host for inner threads.
func (r Result) ApplyTo(k kernel.Kernel, host kernel.Solid) kernel.Solid {
	if r.Solid == nil {
		return host
	}
	if r.Inner {
		return k.Difference(host, r.Solid)
	}
	return k.Union(host, r.Solid)
}

// Place returns r with its solid moved from the local frame of cs
// to world coordinates.
func (r Result) Place(k kernel.Kernel, cs frame.CoordSystem) Result {
	if r.Solid != nil {
		r.Solid = k.Transform(r.Solid, cs.LocalToWorld())
	}
	return r
}
