package thread

import (
	"fmt"
	"math"
	"strconv"

	"github.com/soypat/partkit/frame"
	"github.com/soypat/partkit/sketch"
	"gonum.org/v1/gonum/spatial/r2"
)

// ISO262 is the ISO 262 metric thread profile. Radius is the major
// radius. The crest of inner threads and the root of outer threads are
// rounded with an undercut arc whose depth is scaled by UndercutRatio.
type ISO262 struct {
	Config
	UndercutRatio float64
}

var _ Variant = (*ISO262)(nil)

// NewISO262 returns an ISO262 thread with default parameters.
func NewISO262() *ISO262 {
	return &ISO262{Config: DefaultConfig(), UndercutRatio: 0.5}
}

func (t *ISO262) SetParam(key, value string) (ok bool, err error) {
	if key != "undercut_ratio" {
		return false, nil
	}
	t.UndercutRatio, err = strconv.ParseFloat(value, 64)
	return true, err
}

// undercut returns the depth of the rounding arc fitted to a flat of
// width pitch/div.
func (t *ISO262) undercut(div float64) float64 {
	const theta = math.Pi / 6
	cutRadius := (t.Pitch / div) / math.Cos(theta)
	centerUnderMajor := (t.Pitch / div) * math.Tan(theta)
	return t.UndercutRatio * (cutRadius - centerUnderMajor)
}

func (t *ISO262) Profile() (*sketch.Wire, error) {
	p := t.Pitch
	// height of the sawtooth, truncated to make the trapezoidal thread
	h := p * math.Cos(math.Pi/6)
	rMaj := t.Radius
	rMin := rMaj - 5./8.*h
	if !(rMin > 0) {
		return nil, fmt.Errorf("thread: iso262 pitch %g too coarse for radius %g", p, rMaj)
	}
	b := sketch.New(frame.XZ()).MoveTo(rMin, 0)
	for i := 0; i < t.StartCount; i++ {
		z := float64(i) * p
		// rising edge
		b.LineTo(rMaj, z+5./16.*p)
		// peak
		if t.Inner {
			b.ThreePointArc(r2.Vec{X: rMaj + t.undercut(16), Y: z + 6./16.*p}, r2.Vec{X: rMaj, Y: z + 7./16.*p})
		} else {
			b.LineTo(rMaj, z+7./16.*p)
		}
		// falling edge
		b.LineTo(rMin, z+12./16.*p)
		// valley
		if t.Inner {
			b.LineTo(rMin, z+p)
		} else {
			b.ThreePointArc(r2.Vec{X: rMin - t.undercut(8), Y: z + 14./16.*p}, r2.Vec{X: rMin, Y: z + p})
		}
	}
	return b.Wire()
}
