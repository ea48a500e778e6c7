package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 7, 1))
	assert.Nil(t, Linspace(0, 1, 0))

	xs := Linspace(-1, 0.3, 7)
	assert.Equal(t, 0.3, xs[len(xs)-1])
}

func TestPartitionCoversRange(t *testing.T) {
	for n := 2; n <= 9; n++ {
		functions, err := Partition(0, 10, n)
		require.NoError(t, err)
		require.Len(t, functions, n)

		assert.IsType(t, &InfiniteTrapezoid{}, functions[0])
		assert.IsType(t, &InfiniteTrapezoid{}, functions[n-1])

		for _, x := range Linspace(0, 10, 101) {
			sum := 0.0
			for _, f := range functions {
				sum += f.Evaluate(x)
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "n=%d x=%g", n, x)
		}

		for i, c := range Linspace(0, 10, n) {
			assert.InDelta(t, 1.0, functions[i].Evaluate(c), 1e-9, "granule %d peaks at its center", i)
		}
	}
}

func TestPartitionRejectsBadArguments(t *testing.T) {
	_, err := Partition(0, 10, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidGranularity)

	_, err = Partition(10, 0, 3)
	assert.ErrorIs(t, err, internalerr.ErrInvalidDomain)
}

func TestSample(t *testing.T) {
	tri, err := NewTriangular(0, 1, 2)
	require.NoError(t, err)

	points := Sample(tri, 0, 2, 5)
	want := []Point{{0, 0}, {0.5, 0.5}, {1, 1}, {1.5, 0.5}, {2, 0}}
	require.Len(t, points, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, points[i].X, 1e-12)
		assert.InDelta(t, want[i].Y, points[i].Y, 1e-12)
	}
}
