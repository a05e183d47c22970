package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/internal/d3"
)

// matrixSDF3 evaluates an SDF3 placed by an arbitrary invertible matrix.
// Distances are only bounds when the matrix shears or scales.
type matrixSDF3 struct {
	s   sdf.SDF3
	inv frame.Matrix
	bb  sdf.Box3
}

func newMatrixSDF3(s sdf.SDF3, m frame.Matrix) (*matrixSDF3, error) {
	inv, err := m.Inv()
	if err != nil {
		return nil, err
	}
	bb := s.BoundingBox()
	corners := d3.Box{Min: toR3(bb.Min), Max: toR3(bb.Max)}.Vertices()
	for i := range corners {
		corners[i] = m.Transform(corners[i])
	}
	return &matrixSDF3{
		s:   s,
		inv: inv,
		bb:  sdf.Box3{Min: toV3(corners.Min()), Max: toV3(corners.Max())},
	}, nil
}

func (t *matrixSDF3) Evaluate(p v3.Vec) float64 {
	q := t.inv.Transform(toR3(p))
	d := t.s.Evaluate(toV3(q))
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

func (t *matrixSDF3) BoundingBox() sdf.Box3 {
	return t.bb
}
