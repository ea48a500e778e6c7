package layer

import (
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

// Centroid is the defuzzified representative point of a layer.
type Centroid struct {
	X float64
	Y float64
	// Area is the quantized area under the aggregated region.
	Area float64
	// CutOffs holds the activation of every granule, in layer order.
	CutOffs []float64
	// Fallback is set when nothing was activated and X is the domain midpoint.
	Fallback bool
}

// EstimateCenterOfMass reduces the aggregated region to a point with a
// quantized integral. Each of the samplings points contributes a strip of
// width (max-min)/samplings.
//
// X is the first moment divided by the area. Y sums half the squared strip
// areas over the area; it tracks the height of the region rather than its
// geometric centroid and should be treated as provisional.
//
// When no granule is active anywhere the result is the domain midpoint with
// Y = 0. A missing input propagates as an error.
func (l *Layer) EstimateCenterOfMass(in operator.Inputs, samplings int) (Centroid, error) {
	if samplings <= 0 {
		samplings = DefaultSamplings
	}
	points, cutOffs, err := l.Aggregate(in, samplings)
	if err != nil {
		return Centroid{}, err
	}
	return l.CenterOfMass(points, cutOffs), nil
}

// CenterOfMass reduces points returned by Aggregate without evaluating the
// predicates again. The strip width is derived from len(points).
func (l *Layer) CenterOfMass(points []membership.Point, cutOffs []float64) Centroid {
	if len(points) == 0 {
		return Centroid{X: l.domain.Midpoint(), CutOffs: cutOffs, Fallback: true}
	}
	delta := l.domain.Width() / float64(len(points))

	var area, xMoment, yMoment float64
	for _, p := range points {
		subArea := p.Y * delta
		area += subArea
		xMoment += subArea * p.X
		yMoment += subArea * subArea / 2
	}

	if area > 0 {
		return Centroid{
			X:       xMoment / area,
			Y:       yMoment / area,
			Area:    area,
			CutOffs: cutOffs,
		}
	}
	return Centroid{
		X:        l.domain.Midpoint(),
		Y:        0,
		CutOffs:  cutOffs,
		Fallback: true,
	}
}
