package thread

import (
	"fmt"
	"strconv"

	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/sketch"
	"gonum.org/v1/gonum/spatial/r2"
)

// BallScrew is a thread with a semicircular rail for balls of BallRadius
// cut into a cylinder of Radius.
type BallScrew struct {
	Config
	BallRadius float64
}

var _ Variant = (*BallScrew)(nil)

// NewBallScrew returns a BallScrew thread with default parameters.
func NewBallScrew() *BallScrew {
	return &BallScrew{Config: DefaultConfig(), BallRadius: 0.25}
}

func (t *BallScrew) SetParam(key, value string) (ok bool, err error) {
	if key != "ball_radius" {
		return false, nil
	}
	t.BallRadius, err = strconv.ParseFloat(value, 64)
	return true, err
}

// Profile draws the profile downward from the top of the first rail,
// each start one pitch below the last.
func (t *BallScrew) Profile() (*sketch.Wire, error) {
	r, br, p := t.Radius, t.BallRadius, t.Pitch
	if !(br > 0) || br >= r {
		return nil, fmt.Errorf("thread: ball radius %g for screw radius %g", br, r)
	}
	b := sketch.New(frame.XZ()).MoveTo(r, p-br)
	for i := 0; i < t.StartCount; i++ {
		z := -float64(i) * p
		// cylindrical face
		if 2*br < p {
			b.LineTo(r, z+br)
		}
		// rail for balls
		b.ThreePointArc(r2.Vec{X: r - br, Y: z}, r2.Vec{X: r, Y: z - br})
	}
	return b.Wire()
}
