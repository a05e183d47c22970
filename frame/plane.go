package frame

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is a construction plane as exchanged with a modeling kernel:
// an origin, the direction of the local x axis and the plane normal.
// The local y axis is Normal × XDir.
type Plane struct {
	Origin r3.Vec
	XDir   r3.Vec
	Normal r3.Vec
}

var namedPlanes = map[string]Plane{
	"XY":     {XDir: r3.Vec{X: 1}, Normal: r3.Vec{Z: 1}},
	"YZ":     {XDir: r3.Vec{Y: 1}, Normal: r3.Vec{X: 1}},
	"ZX":     {XDir: r3.Vec{Z: 1}, Normal: r3.Vec{Y: 1}},
	"XZ":     {XDir: r3.Vec{X: 1}, Normal: r3.Vec{Y: -1}},
	"YX":     {XDir: r3.Vec{Y: 1}, Normal: r3.Vec{Z: -1}},
	"ZY":     {XDir: r3.Vec{Z: 1}, Normal: r3.Vec{X: -1}},
	"front":  {XDir: r3.Vec{X: 1}, Normal: r3.Vec{Z: 1}},
	"back":   {XDir: r3.Vec{X: -1}, Normal: r3.Vec{Z: -1}},
	"left":   {XDir: r3.Vec{Z: 1}, Normal: r3.Vec{X: -1}},
	"right":  {XDir: r3.Vec{Z: -1}, Normal: r3.Vec{X: 1}},
	"top":    {XDir: r3.Vec{X: 1}, Normal: r3.Vec{Y: 1}},
	"bottom": {XDir: r3.Vec{X: 1}, Normal: r3.Vec{Y: -1}},
}

// NamedPlane returns the named construction plane placed at origin.
func NamedPlane(name string, origin r3.Vec) (Plane, error) {
	p, ok := namedPlanes[name]
	if !ok {
		return Plane{}, fmt.Errorf("frame: unknown plane %q, want one of %v", name, PlaneNames())
	}
	p.Origin = origin
	return p, nil
}

// PlaneNames returns the sorted names accepted by NamedPlane.
func PlaneNames() []string {
	names := make([]string, 0, len(namedPlanes))
	for name := range namedPlanes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// XY returns the plane through the origin spanned by +X and +Y.
func XY() Plane { return namedPlanes["XY"] }

// XZ returns the plane through the origin whose local x is world +X
// and whose local y is world +Z.
func XZ() Plane { return namedPlanes["XZ"] }

// YDir returns the local y direction of the plane.
func (p Plane) YDir() r3.Vec {
	return r3.Cross(p.Normal, p.XDir)
}

// ToWorld maps the local plane coordinate v to world coordinates.
func (p Plane) ToWorld(v r2.Vec) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(v.X, p.XDir), r3.Scale(v.Y, p.YDir())))
}

// ToLocal projects the world point v onto the plane and returns its
// local coordinates.
func (p Plane) ToLocal(v r3.Vec) r2.Vec {
	d := r3.Sub(v, p.Origin)
	return r2.Vec{X: r3.Dot(d, p.XDir), Y: r3.Dot(d, p.YDir())}
}
