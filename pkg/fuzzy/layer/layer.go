// Package layer aggregates the granules of one fuzzy variable and reduces
// them to a crisp point.
//
// A variable's domain, e.g. temperature over [0, 40], is granulated into a
// handful of membership functions (low, moderate, high). Each granule is
// paired with a predicate whose value on the current inputs clips the
// granule's function (Mamdani min). The clipped shapes are merged with max
// and the centre of mass of the merged region is the defuzzified output.
package layer

import (
	"fmt"
	"math"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

// DefaultSamplings is the number of quantization points used when the
// caller passes a non-positive count.
const DefaultSamplings = 100

var (
	// ErrArityMismatch is returned when functions and predicates differ in length.
	ErrArityMismatch = internalerr.ErrArityMismatch
	// ErrInvalidDomain is returned for empty, reversed or infinite ranges.
	ErrInvalidDomain = internalerr.ErrInvalidDomain
)

// Predicate yields the cut-off of a granule for named inputs.
// Both *rule.Rule and operator.Node satisfy it.
type Predicate interface {
	EvaluateInputs(in operator.Inputs) (float64, error)
}

// Range is the closed extent of a variable's domain.
type Range struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (r Range) Width() float64 { return r.Max - r.Min }

// Midpoint returns the centre of the range.
func (r Range) Midpoint() float64 { return (r.Min + r.Max) / 2 }

// Validate reports whether the range is finite and non-empty.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%w: [%g, %g] must be finite", ErrInvalidDomain, r.Min, r.Max)
	}
	if r.Min >= r.Max {
		return fmt.Errorf("%w: min %g not below max %g", ErrInvalidDomain, r.Min, r.Max)
	}
	return nil
}

// Granule is one named fuzzy subset of the domain together with the
// predicate that activates it.
type Granule struct {
	Label     string
	Function  membership.Function
	Predicate Predicate
}

// Layer is an immutable set of granules spanning one variable.
type Layer struct {
	name     string
	granules []Granule
	domain   Range
}

// Option configures a Layer.
type Option func(*Layer) error

// WithName sets the variable name used in logs and plots.
func WithName(name string) Option {
	return func(l *Layer) error {
		l.name = name
		return nil
	}
}

// WithLabels names the granules in order.
func WithLabels(labels ...string) Option {
	return func(l *Layer) error {
		if len(labels) != len(l.granules) {
			return fmt.Errorf("%w: %d labels for %d granules", ErrArityMismatch, len(labels), len(l.granules))
		}
		for i, label := range labels {
			l.granules[i].Label = label
		}
		return nil
	}
}

// New pairs functions[i] with predicates[i] over domain.
func New(functions []membership.Function, predicates []Predicate, domain Range, opts ...Option) (*Layer, error) {
	if len(functions) != len(predicates) {
		return nil, fmt.Errorf("%w: %d functions, %d predicates", ErrArityMismatch, len(functions), len(predicates))
	}
	granules := make([]Granule, len(functions))
	for i := range functions {
		granules[i] = Granule{Function: functions[i], Predicate: predicates[i]}
	}
	return FromGranules(granules, domain, opts...)
}

// FromGranules builds a layer from already paired granules.
func FromGranules(granules []Granule, domain Range, opts ...Option) (*Layer, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	for i, g := range granules {
		if g.Function == nil || g.Predicate == nil {
			return nil, fmt.Errorf("%w: granule %d lacks a function or predicate", ErrArityMismatch, i)
		}
	}

	l := &Layer{
		granules: make([]Granule, len(granules)),
		domain:   domain,
	}
	copy(l.granules, granules)

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Name returns the variable name, possibly empty.
func (l *Layer) Name() string { return l.name }

// Domain returns the variable's range.
func (l *Layer) Domain() Range { return l.domain }

// Len returns the number of granules.
func (l *Layer) Len() int { return len(l.granules) }

// Granules returns a copy of the granules.
func (l *Layer) Granules() []Granule {
	out := make([]Granule, len(l.granules))
	copy(out, l.granules)
	return out
}

// CutOffs evaluates every predicate on in.
func (l *Layer) CutOffs(in operator.Inputs) ([]float64, error) {
	cutOffs := make([]float64, len(l.granules))
	for i, g := range l.granules {
		v, err := g.Predicate.EvaluateInputs(in)
		if err != nil {
			if g.Label != "" {
				return nil, fmt.Errorf("granule %q: %w", g.Label, err)
			}
			return nil, fmt.Errorf("granule %d: %w", i, err)
		}
		cutOffs[i] = v
	}
	return cutOffs, nil
}

// Aggregate samples the merged fuzzy region at samplings points spread over
// the domain, endpoints included. It also returns the per-granule cut-offs.
func (l *Layer) Aggregate(in operator.Inputs, samplings int) ([]membership.Point, []float64, error) {
	if samplings <= 0 {
		samplings = DefaultSamplings
	}
	cutOffs, err := l.CutOffs(in)
	if err != nil {
		return nil, nil, err
	}

	space := membership.Linspace(l.domain.Min, l.domain.Max, samplings)
	points := make([]membership.Point, len(space))
	for j, x := range space {
		points[j].X = x
	}

	for i, g := range l.granules {
		cut := cutOffs[i]
		if cut == 0 {
			// Clipped to zero everywhere; the function need not be evaluated.
			continue
		}
		for j := range points {
			v := math.Min(g.Function.Evaluate(points[j].X), cut)
			if v > points[j].Y {
				points[j].Y = v
			}
		}
	}
	return points, cutOffs, nil
}
