package membership

import (
	"fmt"
	"math"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

// Point is a single sample of a membership curve.
type Point struct {
	X float64
	Y float64
}

// Linspace returns n evenly spaced values over [min, max], endpoints included.
// The last value is max exactly.
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = min
		return out
	}
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

// Sample evaluates f at n evenly spaced points over [min, max].
func Sample(f Function, min, max float64, n int) []Point {
	xs := Linspace(min, max, n)
	points := make([]Point, len(xs))
	for i, x := range xs {
		points[i] = Point{X: x, Y: f.Evaluate(x)}
	}
	return points
}

// Partition covers [min, max] with n evenly spaced granules: a left
// shoulder, n-2 triangles and a right shoulder. Neighbouring granules
// cross at 0.5 and the degrees sum to 1 everywhere inside the range.
func Partition(min, max float64, n int) ([]Function, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) || min >= max {
		return nil, fmt.Errorf("%w: [%g, %g]", internalerr.ErrInvalidDomain, min, max)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 granules, got %d", internalerr.ErrInvalidGranularity, n)
	}

	centers := Linspace(min, max, n)
	functions := make([]Function, 0, n)

	first, err := NewInfiniteTrapezoid(centers[0], centers[1], Left)
	if err != nil {
		return nil, err
	}
	functions = append(functions, first)

	for i := 1; i < n-1; i++ {
		tri, err := NewTriangular(centers[i-1], centers[i], centers[i+1])
		if err != nil {
			return nil, err
		}
		functions = append(functions, tri)
	}

	last, err := NewInfiniteTrapezoid(centers[n-2], centers[n-1], Right)
	if err != nil {
		return nil, err
	}
	return append(functions, last), nil
}
