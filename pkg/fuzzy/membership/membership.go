// Package membership implements fuzzy membership functions.
//
// A membership function maps a crisp input onto a membership degree in
// [0, 1]. All functions here are piecewise linear and built from four
// boundaries: a lower boundary where the ascending slope starts, a plateau
// of full membership, and an upper boundary where the descending slope ends.
//
//	        minFull ______ maxFull
//	               /      \
//	              /        \
//	_____________/          \_____________
//	        lower            upper
//
// Functions are validated on construction and immutable afterwards, so a
// single value can be shared freely between goroutines.
package membership

import (
	"fmt"
	"math"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

// ErrInvalidBoundary is returned when function boundaries are malformed.
var ErrInvalidBoundary = internalerr.ErrInvalidBoundary

// Function maps a crisp value onto a membership degree in [0, 1].
// Evaluate accepts the whole extended real line, including ±Inf.
type Function interface {
	Evaluate(x float64) float64
}

// Trapezoid is the general piecewise linear membership function.
// Either the lower or the upper pair of boundaries may be infinite,
// turning the plateau into a half-line.
type Trapezoid struct {
	lower   float64
	minFull float64
	maxFull float64
	upper   float64
}

// NewTrapezoid validates the boundaries and returns a trapezoid function.
func NewTrapezoid(lower, minFull, maxFull, upper float64) (*Trapezoid, error) {
	if err := validateBoundaries(lower, minFull, maxFull, upper); err != nil {
		return nil, err
	}
	return &Trapezoid{
		lower:   lower,
		minFull: minFull,
		maxFull: maxFull,
		upper:   upper,
	}, nil
}

func validateBoundaries(lower, minFull, maxFull, upper float64) error {
	for _, v := range [...]float64{lower, minFull, maxFull, upper} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN boundary", ErrInvalidBoundary)
		}
	}

	if minFull > maxFull {
		return fmt.Errorf("%w: plateau start %g above plateau end %g", ErrInvalidBoundary, minFull, maxFull)
	}
	if math.IsInf(minFull, 1) || math.IsInf(maxFull, -1) {
		return fmt.Errorf("%w: plateau [%g, %g] points away from the line", ErrInvalidBoundary, minFull, maxFull)
	}

	switch {
	case math.IsInf(lower, -1):
		if !math.IsInf(minFull, -1) {
			return fmt.Errorf("%w: infinite lower boundary needs infinite plateau start, got %g", ErrInvalidBoundary, minFull)
		}
	case math.IsInf(lower, 1):
		return fmt.Errorf("%w: lower boundary is +Inf", ErrInvalidBoundary)
	case lower >= minFull:
		return fmt.Errorf("%w: lower boundary %g not below plateau start %g", ErrInvalidBoundary, lower, minFull)
	}

	switch {
	case math.IsInf(upper, 1):
		if !math.IsInf(maxFull, 1) {
			return fmt.Errorf("%w: infinite upper boundary needs infinite plateau end, got %g", ErrInvalidBoundary, maxFull)
		}
	case math.IsInf(upper, -1):
		return fmt.Errorf("%w: upper boundary is -Inf", ErrInvalidBoundary)
	case maxFull >= upper:
		return fmt.Errorf("%w: plateau end %g not below upper boundary %g", ErrInvalidBoundary, maxFull, upper)
	}

	if math.IsInf(lower, -1) && math.IsInf(upper, 1) {
		return fmt.Errorf("%w: only one side may be unbounded", ErrInvalidBoundary)
	}
	return nil
}

// Evaluate returns the membership degree of x. When lower is -Inf the
// plateau reaches -Inf, so Evaluate(-Inf) is 1 rather than 0.
func (t *Trapezoid) Evaluate(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	// With lower = minFull = -Inf this branch is unreachable and the
	// plateau extends down to -Inf.
	if x < t.minFull {
		if x <= t.lower {
			return 0
		}
		return (x - t.lower) / (t.minFull - t.lower)
	}
	if x < t.maxFull {
		return 1
	}
	if math.IsInf(t.upper, 1) {
		return 1
	}
	if x <= t.upper {
		return (t.upper - x) / (t.upper - t.maxFull)
	}
	return 0
}

// Lower returns the boundary where the ascending slope starts.
func (t *Trapezoid) Lower() float64 { return t.lower }

// MinFull returns the start of the full-membership plateau.
func (t *Trapezoid) MinFull() float64 { return t.minFull }

// MaxFull returns the end of the full-membership plateau.
func (t *Trapezoid) MaxFull() float64 { return t.maxFull }

// Upper returns the boundary where the descending slope ends.
func (t *Trapezoid) Upper() float64 { return t.upper }

// Bounds returns lower, minFull, maxFull and upper in order.
func (t *Trapezoid) Bounds() [4]float64 {
	return [4]float64{t.lower, t.minFull, t.maxFull, t.upper}
}

func (t *Trapezoid) String() string {
	return fmt.Sprintf("trapezoid(%g, %g, %g, %g)", t.lower, t.minFull, t.maxFull, t.upper)
}

// Triangular is a trapezoid whose plateau collapses into a single apex.
type Triangular struct {
	Trapezoid
}

// NewTriangular returns a triangle rising from left to top and falling to right.
func NewTriangular(left, top, right float64) (*Triangular, error) {
	for _, v := range [...]float64{left, top, right} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: triangle vertices must be finite", ErrInvalidBoundary)
		}
	}
	if left >= top || top >= right {
		return nil, fmt.Errorf("%w: triangle vertices %g, %g, %g not strictly increasing", ErrInvalidBoundary, left, top, right)
	}
	return &Triangular{Trapezoid{lower: left, minFull: top, maxFull: top, upper: right}}, nil
}

// Top returns the apex of the triangle.
func (t *Triangular) Top() float64 { return t.minFull }

func (t *Triangular) String() string {
	return fmt.Sprintf("triangular(%g, %g, %g)", t.lower, t.minFull, t.upper)
}
