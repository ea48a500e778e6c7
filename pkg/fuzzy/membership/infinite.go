package membership

import (
	"fmt"
	"math"
	"strings"
)

// Side names the unbounded plateau of an InfiniteTrapezoid.
type Side int

const (
	// Left keeps full membership for every input below the left vertex.
	Left Side = iota
	// Right keeps full membership for every input above the right vertex.
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide converts "left" or "right" into a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: unknown infinite side %q", ErrInvalidBoundary, s)
}

// InfiniteTrapezoid is a shoulder function: a single finite slope between
// two vertices with the plateau running off to infinity on one side.
type InfiniteTrapezoid struct {
	Trapezoid
	side Side
}

// NewInfiniteTrapezoid builds a shoulder between two finite vertices.
func NewInfiniteTrapezoid(leftVertex, rightVertex float64, side Side) (*InfiniteTrapezoid, error) {
	if math.IsNaN(leftVertex) || math.IsInf(leftVertex, 0) || math.IsNaN(rightVertex) || math.IsInf(rightVertex, 0) {
		return nil, fmt.Errorf("%w: shoulder vertices must be finite", ErrInvalidBoundary)
	}
	if leftVertex >= rightVertex {
		return nil, fmt.Errorf("%w: left vertex %g not below right vertex %g", ErrInvalidBoundary, leftVertex, rightVertex)
	}

	var t Trapezoid
	switch side {
	case Left:
		t = Trapezoid{lower: math.Inf(-1), minFull: math.Inf(-1), maxFull: leftVertex, upper: rightVertex}
	case Right:
		t = Trapezoid{lower: leftVertex, minFull: rightVertex, maxFull: math.Inf(1), upper: math.Inf(1)}
	default:
		return nil, fmt.Errorf("%w: unknown infinite side %v", ErrInvalidBoundary, side)
	}
	return &InfiniteTrapezoid{Trapezoid: t, side: side}, nil
}

// Evaluate folds the unbounded plateau onto its finite vertex before
// applying the trapezoid formula, so no infinite arithmetic reaches a slope.
func (t *InfiniteTrapezoid) Evaluate(x float64) float64 {
	if t.side == Left {
		x = math.Max(x, t.maxFull)
	} else {
		x = math.Min(x, t.minFull)
	}
	return t.Trapezoid.Evaluate(x)
}

// Side reports which side of the function is unbounded.
func (t *InfiniteTrapezoid) Side() Side { return t.side }

// Vertices returns the two finite vertices of the slope.
func (t *InfiniteTrapezoid) Vertices() (left, right float64) {
	if t.side == Left {
		return t.maxFull, t.upper
	}
	return t.lower, t.minFull
}

func (t *InfiniteTrapezoid) String() string {
	l, r := t.Vertices()
	return fmt.Sprintf("infinite(%g, %g, %s)", l, r, t.side)
}
