package membership

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func mustTrapezoid(t *testing.T, l, f1, f2, u float64) *Trapezoid {
	t.Helper()
	tr, err := NewTrapezoid(l, f1, f2, u)
	require.NoError(t, err)
	return tr
}

func TestTrapezoidConcreteValues(t *testing.T) {
	tr := mustTrapezoid(t, 0, 1, 2, 3)

	cases := map[float64]float64{
		-1:  0,
		0:   0,
		0.5: 0.5,
		1:   1,
		1.5: 1,
		2:   1,
		2.5: 0.5,
		3:   0,
		4:   0,
	}
	for x, want := range cases {
		assert.InDelta(t, want, tr.Evaluate(x), tolerance, "x=%g", x)
	}
}

func TestTrapezoidVertices(t *testing.T) {
	bounds := [][4]float64{
		{0, 1, 2, 3},
		{-100, -20, 0, 3},
		{-100, -21, 2, 400},
		{0, 0.1, 200, 200.1},
		{-0.1, 0, 0.1, 1},
		{0.2, 0.4, 0.6, 0.8},
	}
	for _, b := range bounds {
		tr := mustTrapezoid(t, b[0], b[1], b[2], b[3])
		assert.Equal(t, 0.0, tr.Evaluate(b[0]), "lower of %v", b)
		assert.Equal(t, 1.0, tr.Evaluate(b[1]), "minFull of %v", b)
		assert.Equal(t, 1.0, tr.Evaluate(b[2]), "maxFull of %v", b)
		assert.Equal(t, 0.0, tr.Evaluate(b[3]), "upper of %v", b)
		assert.InDelta(t, 0.5, tr.Evaluate((b[0]+b[1])/2), tolerance, "ascending midpoint of %v", b)
		assert.InDelta(t, 0.5, tr.Evaluate((b[2]+b[3])/2), tolerance, "descending midpoint of %v", b)
		assert.Equal(t, 0.0, tr.Evaluate(b[0]-1))
		assert.Equal(t, 0.0, tr.Evaluate(b[3]+1))
		assert.Equal(t, 0.0, tr.Evaluate(math.Inf(-1)))
		assert.Equal(t, 0.0, tr.Evaluate(math.Inf(1)))
	}
}

func TestTrapezoidMonotonicRamps(t *testing.T) {
	tr := mustTrapezoid(t, -3, 1, 2, 10)

	prev := -1.0
	for _, x := range Linspace(-3, 1, 200) {
		v := tr.Evaluate(x)
		assert.GreaterOrEqual(t, v, prev, "ascending ramp at %g", x)
		prev = v
	}
	prev = 2.0
	for _, x := range Linspace(2, 10, 200) {
		v := tr.Evaluate(x)
		assert.LessOrEqual(t, v, prev, "descending ramp at %g", x)
		prev = v
	}
}

func TestTrapezoidRejectsInvalidBoundaries(t *testing.T) {
	inf := math.Inf(1)
	bad := [][4]float64{
		{0, -1, 2, 3},
		{0, 1, -1, 3},
		{0, 1, 2, -1},
		{0, 1, 0.5, 3},
		{0, 1, 2, 0.5},
		{0, 1, 2, 1.5},
		{0, 0, 0, 0},
		{-inf, 0, 1, 2},
		{-1, 0, 1, inf},
		{-inf, -inf, inf, inf},
		{-inf, 0, 1, inf},
		{inf, inf, inf, inf},
		{-inf, -inf, -inf, 1},
		{math.NaN(), 0, 1, 2},
	}
	for _, b := range bad {
		_, err := NewTrapezoid(b[0], b[1], b[2], b[3])
		assert.ErrorIs(t, err, ErrInvalidBoundary, "bounds %v", b)
	}
}

func TestTrapezoidWithInfiniteSides(t *testing.T) {
	left := mustTrapezoid(t, math.Inf(-1), math.Inf(-1), 1, 2)
	assert.Equal(t, 1.0, left.Evaluate(math.Inf(-1)))
	assert.Equal(t, 1.0, left.Evaluate(-1e300))
	assert.InDelta(t, 0.5, left.Evaluate(1.5), tolerance)
	assert.Equal(t, 0.0, left.Evaluate(math.Inf(1)))

	right := mustTrapezoid(t, 1, 2, math.Inf(1), math.Inf(1))
	assert.Equal(t, 0.0, right.Evaluate(math.Inf(-1)))
	assert.InDelta(t, 0.5, right.Evaluate(1.5), tolerance)
	assert.Equal(t, 1.0, right.Evaluate(1e300))
	assert.Equal(t, 1.0, right.Evaluate(math.Inf(1)))
}

func TestTriangular(t *testing.T) {
	triangles := [][3]float64{
		{0.2, 0.5, 0.8},
		{-1, 0, 1},
		{-100, 0, 100},
		{-0.1, 0, 0.1},
		{-1, -0.95, 1},
		{-1, -0.95, 100},
		{-1, 0.95, 1},
		{-1000, -999, -998},
		{998, 999, 1000},
	}
	for _, v := range triangles {
		left, top, right := v[0], v[1], v[2]
		tri, err := NewTriangular(left, top, right)
		require.NoError(t, err)

		assert.Equal(t, 0.0, tri.Evaluate(left-1))
		assert.Equal(t, 0.0, tri.Evaluate(left))
		assert.InDelta(t, 0.5, tri.Evaluate((left+top)/2), tolerance)
		assert.Equal(t, 1.0, tri.Evaluate(top))
		assert.InDelta(t, 0.5, tri.Evaluate((top+right)/2), tolerance)
		assert.Equal(t, 0.0, tri.Evaluate(right))
		assert.Equal(t, 0.0, tri.Evaluate(right+1))
		assert.Equal(t, top, tri.Top())

		for _, x := range []float64{-1e6, -100, -50, -10, -2, -0.25, 0, 0.5, 1, 10, 20, 1000} {
			var want float64
			switch {
			case x < left:
				want = 0
			case x < top:
				want = (x - left) / (top - left)
			case x < right:
				want = (right - x) / (right - top)
			}
			assert.InDelta(t, want, tri.Evaluate(x), tolerance, "triangle %v at %g", v, x)
		}
	}
}

func TestTriangularRejectsInvalidVertices(t *testing.T) {
	bad := [][3]float64{
		{0, -1, 2},
		{0, 1, 0},
		{0, 0, 0},
		{-1, -1, 2},
		{0, 1, 1},
		{math.Inf(-1), 0, 1},
	}
	for _, v := range bad {
		_, err := NewTriangular(v[0], v[1], v[2])
		assert.ErrorIs(t, err, ErrInvalidBoundary, "vertices %v", v)
	}
}

func TestInfiniteTrapezoidConcreteValues(t *testing.T) {
	f, err := NewInfiniteTrapezoid(0.5, 0.75, Left)
	require.NoError(t, err)

	assert.Equal(t, 1.0, f.Evaluate(0))
	assert.InDelta(t, 0.5, f.Evaluate(0.625), tolerance)
	assert.Equal(t, 0.0, f.Evaluate(1))
	assert.Equal(t, Left, f.Side())
}

func TestInfiniteTrapezoidShape(t *testing.T) {
	pairs := [][2]float64{
		{0, 1}, {0, 0.1}, {-1, 0}, {-1, 0.9}, {-1, 1},
		{-1000, -100}, {-1000, 1}, {0, 100}, {0, 1000},
	}
	for _, side := range []Side{Left, Right} {
		for _, p := range pairs {
			lv, rv := p[0], p[1]
			f, err := NewInfiniteTrapezoid(lv, rv, side)
			require.NoError(t, err)

			for _, x := range []float64{-1e6, -100, -50, -10, -2, -0.25, 0, 0.5, 1, 10, 20, 1000, lv, rv, (lv + rv) / 2} {
				var want float64
				if side == Left {
					switch {
					case x <= lv:
						want = 1
					case x < rv:
						want = (rv - x) / (rv - lv)
					}
				} else {
					switch {
					case x >= rv:
						want = 1
					case x > lv:
						want = (x - lv) / (rv - lv)
					}
				}
				assert.InDelta(t, want, f.Evaluate(x), tolerance, "%s shoulder %v at %g", side, p, x)
			}

			if side == Left {
				assert.Equal(t, 1.0, f.Evaluate(math.Inf(-1)))
				assert.Equal(t, 0.0, f.Evaluate(math.Inf(1)))
			} else {
				assert.Equal(t, 0.0, f.Evaluate(math.Inf(-1)))
				assert.Equal(t, 1.0, f.Evaluate(math.Inf(1)))
			}

			l, r := f.Vertices()
			assert.Equal(t, lv, l)
			assert.Equal(t, rv, r)
		}
	}
}

func TestInfiniteTrapezoidRejectsInvalidVertices(t *testing.T) {
	_, err := NewInfiniteTrapezoid(1, 1, Left)
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	_, err = NewInfiniteTrapezoid(2, 1, Right)
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	_, err = NewInfiniteTrapezoid(math.Inf(-1), 1, Left)
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	_, err = NewInfiniteTrapezoid(0, 1, Side(7))
	assert.ErrorIs(t, err, ErrInvalidBoundary)
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("left")
	require.NoError(t, err)
	assert.Equal(t, Left, s)

	s, err = ParseSide(" Right ")
	require.NoError(t, err)
	assert.Equal(t, Right, s)

	_, err = ParseSide("up")
	assert.ErrorIs(t, err, ErrInvalidBoundary)
}

func TestNaNInputHasNoMembership(t *testing.T) {
	tr := mustTrapezoid(t, 0, 1, 2, 3)
	assert.Equal(t, 0.0, tr.Evaluate(math.NaN()))
}
