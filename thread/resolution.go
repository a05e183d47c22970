package thread

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidResolution is returned for a Resolution that neither sets a
// positive vertex budget nor a valid per segment count list.
var ErrInvalidResolution = errors.New("thread: invalid resolution")

// Resolution selects how many vertices approximate each curved profile
// segment in the cross section. The zero value is invalid, see
// DefaultResolution.
type Resolution struct {
	total      int
	perSegment []int
}

// DefaultResolution spreads 20 vertices over the profile.
var DefaultResolution = Vertices(20)

// Vertices spreads n vertices along the profile, weighted by segment length.
func Vertices(n int) Resolution {
	return Resolution{total: n}
}

// PerSegment sets the vertex count of each profile segment. There must
// be exactly one count per segment.
func PerSegment(counts ...int) Resolution {
	if counts == nil {
		counts = []int{}
	}
	return Resolution{perSegment: slices.Clone(counts)}
}

// IsZero reports whether r is the zero Resolution.
func (r Resolution) IsZero() bool { return r.total == 0 && r.perSegment == nil }

func (r Resolution) String() string {
	if r.perSegment != nil {
		return fmt.Sprintf("PerSegment%v", r.perSegment)
	}
	return fmt.Sprintf("Vertices(%d)", r.total)
}

// Counts returns the vertex count of segments with the given lengths.
// For a vertex budget B the count of segment i is
//
//	ceil(round(L_i/L, 7) * B)
//
// where rounding to 7 decimals keeps floating point noise from adding
// a vertex. The sum of counts exceeds B by at most the segment count.
func (r Resolution) Counts(lengths []float64) ([]int, error) {
	if r.perSegment != nil {
		if len(r.perSegment) != len(lengths) {
			return nil, &ResolutionMismatchError{Got: len(r.perSegment), Want: len(lengths)}
		}
		for _, c := range r.perSegment {
			if c < 0 {
				return nil, fmt.Errorf("%w: negative vertex count %d", ErrInvalidResolution, c)
			}
		}
		return slices.Clone(r.perSegment), nil
	}
	if r.total <= 0 {
		return nil, fmt.Errorf("%w: vertex budget %d", ErrInvalidResolution, r.total)
	}
	total := floats.Sum(lengths)
	if !(total > 0) {
		return nil, fmt.Errorf("%w: profile has no length", ErrInvalidResolution)
	}
	counts := make([]int, len(lengths))
	for i, l := range lengths {
		frac := math.Round(l/total*1e7) / 1e7
		counts[i] = int(math.Ceil(frac * float64(r.total)))
	}
	return counts, nil
}

// ResolutionMismatchError is returned when a per segment Resolution does
// not have one count per profile segment.
type ResolutionMismatchError struct {
	Got, Want int
}

func (e *ResolutionMismatchError) Error() string {
	return fmt.Sprintf("thread: resolution has %d vertex counts for %d profile segments", e.Got, e.Want)
}
