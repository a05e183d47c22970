package thread

import (
	"github.com/soypat/partkit/curve"
)

// HelicalPath returns the sweep rail of a thread, a helix about the Z
// axis starting at (radius, 0, 0) that rises pitch per turn up to length.
// A non zero angle in degrees tapers the helix into a cone.
//
// The rail only orients a Frenet sweep, so its radius does not change the
// swept solid. Make uses a unit radius.
func HelicalPath(pitch, length, radius, angle float64, lefthand bool) (*curve.Helix, error) {
	h, err := curve.NewHelix(pitch, length, radius, angle, lefthand)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("thread: helical path pitch=%g length=%g turns=%.3g lefthand=%t",
		pitch, length, h.Turns(), lefthand)
	return h, nil
}
