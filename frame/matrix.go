package frame

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSingular is returned when inverting a matrix with a (near) zero determinant.
var ErrSingular = errors.New("frame: singular matrix")

// Matrix is a 4x4 homogeneous affine transform stored in row-major order.
// The zero value of Matrix is the identity transform.
type Matrix struct {
	// The identity is subtracted from the stored elements so that
	// the zero value represents the identity. Identity can then
	// be checked with
	//  if m == (Matrix{})
	d [16]float64
}

var identityDiag = [4]int{0, 5, 10, 15}

// NewMatrix returns a Matrix populated with 16 values given in
// row-major form. If a is nil NewMatrix returns the zero matrix,
// which maps every point to the origin.
func NewMatrix(a []float64) Matrix {
	var m Matrix
	if a == nil {
		for _, i := range identityDiag {
			m.d[i] = -1
		}
		return m
	}
	if len(a) != 16 {
		panic("frame: Matrix is initialized with 16 values")
	}
	copy(m.d[:], a)
	for _, i := range identityDiag {
		m.d[i]--
	}
	return m
}

// IdentityMatrix returns the identity Matrix.
func IdentityMatrix() Matrix { return Matrix{} }

// Translation returns a Matrix that translates by v.
func Translation(v r3.Vec) Matrix {
	var m Matrix
	m.d[3], m.d[7], m.d[11] = v.X, v.Y, v.Z
	return m
}

// RotationX returns a rotation of angle radians about the X axis.
func RotationX(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return NewMatrix([]float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// RotationY returns a rotation of angle radians about the Y axis.
func RotationY(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return NewMatrix([]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// RotationZ returns a rotation of angle radians about the Z axis.
func RotationZ(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return NewMatrix([]float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Basis returns the affine Matrix whose columns are x, y, z and origin.
// It maps local coordinates of that basis into world coordinates.
func Basis(origin, x, y, z r3.Vec) Matrix {
	return NewMatrix([]float64{
		x.X, y.X, z.X, origin.X,
		x.Y, y.Y, z.Y, origin.Y,
		x.Z, y.Z, z.Z, origin.Z,
		0, 0, 0, 1,
	})
}

// At returns the element at row i and column j.
func (m Matrix) At(i, j int) float64 {
	if i < 0 || i > 3 || j < 0 || j > 3 {
		panic("frame: Matrix index out of range")
	}
	v := m.d[4*i+j]
	if i == j {
		v++
	}
	return v
}

// Elems returns a copy of the Matrix data in row major storage format.
func (m Matrix) Elems() [16]float64 {
	e := m.d
	for _, i := range identityDiag {
		e[i]++
	}
	return e
}

// Transform applies the Matrix to the point v and returns the result.
// The homogeneous coordinate is divided out.
func (m Matrix) Transform(v r3.Vec) r3.Vec {
	if m == (Matrix{}) {
		return v
	}
	e := m.Elems()
	w := 1 / (e[12]*v.X + e[13]*v.Y + e[14]*v.Z + e[15])
	return r3.Vec{
		X: (e[0]*v.X + e[1]*v.Y + e[2]*v.Z + e[3]) * w,
		Y: (e[4]*v.X + e[5]*v.Y + e[6]*v.Z + e[7]) * w,
		Z: (e[8]*v.X + e[9]*v.Y + e[10]*v.Z + e[11]) * w,
	}
}

// TransformDir applies the linear part of the Matrix to the direction v.
// Translation does not affect directions.
func (m Matrix) TransformDir(v r3.Vec) r3.Vec {
	e := m.Elems()
	return r3.Vec{
		X: e[0]*v.X + e[1]*v.Y + e[2]*v.Z,
		Y: e[4]*v.X + e[5]*v.Y + e[6]*v.Z,
		Z: e[8]*v.X + e[9]*v.Y + e[10]*v.Z,
	}
}

// Mul multiplies the Matrices m and b and returns the result.
// The result applies b first and then m.
func (m Matrix) Mul(b Matrix) Matrix {
	if m == (Matrix{}) {
		return b
	}
	if b == (Matrix{}) {
		return m
	}
	x, y := m.Elems(), b.Elems()
	var r [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += x[4*i+k] * y[4*k+j]
			}
			r[4*i+j] = sum
		}
	}
	return NewMatrix(r[:])
}

func (m Matrix) dense() *mat.Dense {
	e := m.Elems()
	return mat.NewDense(4, 4, e[:])
}

// Det returns the determinant of the Matrix.
func (m Matrix) Det() float64 {
	if m == (Matrix{}) {
		return 1
	}
	return mat.Det(m.dense())
}

// Inv returns the inverse of the Matrix such that
// m.Inv().Mul(m) is the identity Matrix.
func (m Matrix) Inv() (Matrix, error) {
	if m == (Matrix{}) {
		return m, nil
	}
	src := m.dense()
	if math.Abs(mat.Det(src)) < 1e-14 {
		return Matrix{}, ErrSingular
	}
	var inv mat.Dense
	if err := inv.Inverse(src); err != nil {
		return Matrix{}, fmt.Errorf("frame: inverting matrix: %w", err)
	}
	return NewMatrix(inv.RawMatrix().Data), nil
}

// Transpose returns the transpose of the Matrix.
func (m Matrix) Transpose() Matrix {
	var t Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			t.d[4*j+i] = m.d[4*i+j]
		}
	}
	return t
}

// Equal tests the equality of the Matrices to within a tolerance.
func (m Matrix) Equal(b Matrix, tol float64) bool {
	for i := range m.d {
		if math.Abs(m.d[i]-b.d[i]) > tol {
			return false
		}
	}
	return true
}

func (m Matrix) String() string {
	e := m.Elems()
	return fmt.Sprintf("[%g %g %g %g; %g %g %g %g; %g %g %g %g; %g %g %g %g]",
		e[0], e[1], e[2], e[3], e[4], e[5], e[6], e[7],
		e[8], e[9], e[10], e[11], e[12], e[13], e[14], e[15])
}
