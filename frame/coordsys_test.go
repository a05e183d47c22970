package frame

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewValidation(t *testing.T) {
	for _, test := range []struct {
		name      string
		x, normal r3.Vec
		err       error
	}{
		{"zero x", r3.Vec{}, r3.Vec{Z: 1}, ErrZeroDirection},
		{"zero normal", r3.Vec{X: 1}, r3.Vec{}, ErrZeroDirection},
		{"skewed", r3.Vec{X: 1, Z: 0.1}, r3.Vec{Z: 1}, ErrNotOrthogonal},
		{"unnormalized", r3.Vec{X: 3}, r3.Vec{Y: -5}, nil},
	} {
		_, err := New(r3.Vec{}, test.x, test.normal)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.err)
		}
	}
	c := MustNew(r3.Vec{}, r3.Vec{X: 3}, r3.Vec{Y: -5})
	assert.Equal(t, r3.Vec{X: 1}, c.XDir())
	assert.Equal(t, r3.Vec{Y: -1}, c.ZDir())
}

func TestPlaneRoundTrip(t *testing.T) {
	for _, name := range PlaneNames() {
		p, err := NamedPlane(name, r3.Vec{X: 1, Y: 2, Z: 3})
		require.NoError(t, err)
		c, err := FromPlane(p)
		require.NoError(t, err, name)
		got := c.Plane()
		assert.InDeltaf(t, 0, r3.Norm(r3.Sub(got.Origin, p.Origin)), tol, "%s origin", name)
		assert.InDeltaf(t, 0, r3.Norm(r3.Sub(got.XDir, p.XDir)), tol, "%s xDir", name)
		assert.InDeltaf(t, 0, r3.Norm(r3.Sub(got.Normal, p.Normal)), tol, "%s normal", name)
	}
	_, err := NamedPlane("diagonal", r3.Vec{})
	assert.Error(t, err)
}

func TestXZLocalYIsWorldZ(t *testing.T) {
	p := XZ()
	assert.Equal(t, r3.Vec{Z: 1}, p.YDir())
	c, err := FromPlane(p)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 1}, c.YDir())
}

func TestFromMatrixRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		c := Random(rng, 10)
		got, err := FromMatrix(c.LocalToWorld())
		require.NoError(t, err)
		if !got.Equal(c, tol) {
			t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, c)
		}
		if !c.WorldToLocal().Mul(c.LocalToWorld()).Equal(Matrix{}, tol) {
			t.Fatalf("WorldToLocal is not the inverse of LocalToWorld for %v", c)
		}
		p := r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		back := c.ToLocal(c.ToWorld(p))
		assert.InDelta(t, 0, r3.Norm(r3.Sub(back, p)), tol)
	}
}

func TestFromMatrixDiscardsScale(t *testing.T) {
	scale := NewMatrix([]float64{
		2, 0, 0, 1,
		0, 3, 0, 2,
		0, 0, 4, 3,
		0, 0, 0, 1,
	})
	c, err := FromMatrix(scale)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, c.Origin())
	assert.Equal(t, r3.Vec{X: 1}, c.XDir())
	assert.Equal(t, r3.Vec{Z: 1}, c.ZDir())

	_, err = FromMatrix(NewMatrix(nil))
	assert.ErrorIs(t, err, ErrNotAffine)
	flat := NewMatrix([]float64{
		0, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	_, err = FromMatrix(flat)
	assert.ErrorIs(t, err, ErrZeroDirection)
}

func TestComposeIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	id := Identity()
	for i := 0; i < 50; i++ {
		a := Random(rng, 5)
		if got := a.Compose(id); !got.Equal(a, tol) {
			t.Fatalf("A+I = %v, want %v", got, a)
		}
		if got := id.Compose(a); !got.Equal(a, tol) {
			t.Fatalf("I+A = %v, want %v", got, a)
		}
	}
}

func TestComposeAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		a, b, c := Random(rng, 5), Random(rng, 5), Random(rng, 5)
		left := a.Compose(b).Compose(c)
		right := a.Compose(b.Compose(c))
		if !left.Equal(right, 1e-8) {
			t.Fatalf("(A+B)+C = %v\n A+(B+C) = %v", left, right)
		}
	}
}

func TestComposeLocalOffset(t *testing.T) {
	// b sits one unit along a's local x, which points along world +Y.
	a := MustNew(r3.Vec{Z: 5}, r3.Vec{Y: 1}, r3.Vec{Z: 1})
	b := MustNew(r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	got := a.Compose(b)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got.Origin(), r3.Vec{Y: 1, Z: 5})), tol)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got.XDir(), r3.Vec{Y: 1})), tol)
}

func TestAddTypeError(t *testing.T) {
	a := Identity()
	b := MustNew(r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	got, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, got.Equal(b, tol))
	got, err = a.Add(&b)
	require.NoError(t, err)
	assert.True(t, got.Equal(b, tol))

	_, err = a.Add(3.0)
	var cerr *CompositionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "frame.CoordSystem", cerr.Left)
	assert.Equal(t, "float64", cerr.Right)
	assert.Contains(t, err.Error(), "float64")

	var nilcs *CoordSystem
	_, err = a.Add(nilcs)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "*frame.CoordSystem", cerr.Right)
}

func TestAddZeroValue(t *testing.T) {
	_, err := Identity().Add(CoordSystem{})
	assert.ErrorIs(t, err, ErrZeroDirection)
	_, err = Identity().Add(&CoordSystem{})
	assert.ErrorIs(t, err, ErrZeroDirection)
	_, err = CoordSystem{}.Add(Identity())
	assert.ErrorIs(t, err, ErrZeroDirection)
}

func TestRotated(t *testing.T) {
	c := Identity().Rotated(0, 0, 90)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(c.XDir(), r3.Vec{Y: 1})), tol)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(c.ZDir(), r3.Vec{Z: 1})), tol)
	c = Identity().Rotated(90, 0, 0)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(c.ZDir(), r3.Vec{Y: -1})), tol)
}

func TestEqualString(t *testing.T) {
	a := MustNew(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	b := MustNew(r3.Vec{X: 1, Y: 2, Z: 3 + 1e-12}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	assert.True(t, a.Equal(b, 1e-9))
	assert.False(t, a.Equal(Identity(), 1e-9))
	assert.Equal(t, "CoordSystem(origin={1 2 3}, xDir={1 0 0}, normal={0 0 1})", a.String())
}
