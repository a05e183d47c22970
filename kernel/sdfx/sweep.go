package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/partkit/curve"
	"github.com/soypat/partkit/kernel"
	"github.com/soypat/partkit/sketch"
)

// Sweep moves a closed section lying on the XY plane along a cylindrical
// helix about the Z axis.
//
// In Frenet mode the frame of a Z axis helix turns about Z at a constant
// rate while rising, so the sweep is the screw motion that rotates the
// section by 2π per pitch of height. The helix radius only places the
// rail, it does not change the swept solid.
func (k *Kernel) Sweep(section *sketch.Wire, path curve.Path, mode kernel.SweepMode) (kernel.Solid, error) {
	if section == nil {
		return nil, fmt.Errorf("sdfx: nil sweep section")
	}
	if !section.Closed() {
		return nil, kernel.ErrOpenSection
	}
	helix, ok := path.(*curve.Helix)
	if !ok {
		return nil, fmt.Errorf("%w: %T", kernel.ErrUnsupportedPath, path)
	}
	if !helix.Cylindrical() {
		return nil, fmt.Errorf("%w: tapered helix", kernel.ErrUnsupportedPath)
	}
	if mode != kernel.SweepFrenet {
		return nil, fmt.Errorf("%w: %v sweep along helix", kernel.ErrUnsupportedPath, mode)
	}
	poly, err := k.sectionPolygon(section)
	if err != nil {
		return nil, err
	}
	s, err := newScrewSDF3(poly, helix.Pitch(), helix.Height(), helix.LeftHand())
	if err != nil {
		return nil, err
	}
	tracer().Debugf("sdfx: sweep section of %d vertices, pitch=%g height=%g lefthand=%t",
		len(poly), helix.Pitch(), helix.Height(), helix.LeftHand())
	return wrap(s), nil
}

// sectionPolygon flattens the section into world XY coordinates.
func (k *Kernel) sectionPolygon(section *sketch.Wire) ([]v2.Vec, error) {
	local := section.Polygon(k.flattenTol)
	if len(local) < 3 {
		return nil, fmt.Errorf("sdfx: section flattens to %d vertices", len(local))
	}
	bb := section.Bounds()
	if math.Abs(bb.Max.Z-bb.Min.Z) > curve.Tolerance || math.Abs(bb.Min.Z) > curve.Tolerance {
		return nil, fmt.Errorf("%w: section does not lie on the XY plane", kernel.ErrUnsupportedPath)
	}
	plane := section.Plane()
	poly := make([]v2.Vec, len(local))
	for i, p := range local {
		w := plane.ToWorld(p)
		poly[i] = v2.Vec{X: w.X, Y: w.Y}
	}
	return poly, nil
}

// screwSDF3 is a 2D section twisted about Z by omega radians per unit height.
type screwSDF3 struct {
	section sdf.SDF2
	omega   float64
	height  float64
	// lipschitz is the largest stretch of the twist, used to keep
	// distances conservative away from the axis.
	lipschitz float64
	bb        sdf.Box3
}

func newScrewSDF3(poly []v2.Vec, pitch, height float64, lefthand bool) (*screwSDF3, error) {
	section, err := sdf.Polygon2D(poly)
	if err != nil {
		return nil, err
	}
	omega := 2 * math.Pi / pitch
	if lefthand {
		omega = -omega
	}
	// The max-radius of the section is the radius of the swept solid.
	var r float64
	for _, p := range poly {
		r = math.Max(r, math.Hypot(p.X, p.Y))
	}
	return &screwSDF3{
		section:   section,
		omega:     omega,
		height:    height,
		lipschitz: math.Hypot(1, omega*r),
		bb: sdf.Box3{
			Min: v3.Vec{X: -r, Y: -r, Z: 0},
			Max: v3.Vec{X: r, Y: r, Z: height},
		},
	}, nil
}

// Evaluate returns the minimum distance to the swept section.
func (s *screwSDF3) Evaluate(p v3.Vec) float64 {
	// map the 3d point back to the xy space of the section
	sin, cos := math.Sincos(-s.omega * p.Z)
	q := v2.Vec{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	d0 := s.section.Evaluate(q) / s.lipschitz
	// create a region for the sweep height
	d1 := math.Max(-p.Z, p.Z-s.height)
	// return the intersection
	return math.Max(d0, d1)
}

// BoundingBox returns the bounding box of the swept solid.
func (s *screwSDF3) BoundingBox() sdf.Box3 {
	return s.bb
}
