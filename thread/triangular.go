package thread

import (
	"fmt"
	"strconv"

	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/sketch"
	"gonum.org/v1/gonum/spatial/r2"
)

// Triangular is a sawtooth thread rising from RadiusCore to Radius and
// back over one pitch.
type Triangular struct {
	Config
	RadiusCore float64
}

var _ Variant = (*Triangular)(nil) // Compile time check of interface implementation.

// NewTriangular returns a Triangular thread with default parameters.
func NewTriangular() *Triangular {
	return &Triangular{Config: DefaultConfig(), RadiusCore: 2.5}
}

func (t *Triangular) SetParam(key, value string) (ok bool, err error) {
	if key != "radius_core" {
		return false, nil
	}
	t.RadiusCore, err = strconv.ParseFloat(value, 64)
	return true, err
}

func (t *Triangular) Profile() (*sketch.Wire, error) {
	if !(t.RadiusCore > 0) || t.RadiusCore == t.Radius {
		return nil, fmt.Errorf("thread: triangular core radius %g for radius %g", t.RadiusCore, t.Radius)
	}
	p := t.Pitch
	pts := []r2.Vec{{X: t.RadiusCore, Y: 0}}
	for i := 0; i < t.StartCount; i++ {
		z := float64(i) * p
		pts = append(pts,
			r2.Vec{X: t.Radius, Y: z + p/2},
			r2.Vec{X: t.RadiusCore, Y: z + p},
		)
	}
	return sketch.New(frame.XZ()).Polyline(pts...).Wire()
}
