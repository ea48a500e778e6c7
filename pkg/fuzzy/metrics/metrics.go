// Package metrics exposes Prometheus collectors for defuzzification runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics contains the estimation collectors
type Metrics struct {
	EstimatesTotal   *prometheus.CounterVec
	EstimateDuration *prometheus.HistogramVec
	FallbacksTotal   *prometheus.CounterVec
	LastCentroid     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EstimatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuzzy",
				Subsystem: "layer",
				Name:      "estimates_total",
				Help:      "Total number of centre of mass estimations",
			},
			[]string{"layer", "status"},
		),

		EstimateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fuzzy",
				Subsystem: "layer",
				Name:      "estimate_duration_seconds",
				Help:      "Centre of mass estimation duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"layer"},
		),

		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuzzy",
				Subsystem: "layer",
				Name:      "fallbacks_total",
				Help:      "Estimations where no granule was active and the domain midpoint was returned",
			},
			[]string{"layer"},
		),

		LastCentroid: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fuzzy",
				Subsystem: "layer",
				Name:      "last_centroid",
				Help:      "Most recent defuzzified x coordinate",
			},
			[]string{"layer"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.EstimatesTotal, m.EstimateDuration, m.FallbacksTotal, m.LastCentroid} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveEstimate records one successful estimation
func (m *Metrics) ObserveEstimate(layer string, x float64, fallback bool, took time.Duration) {
	if m == nil {
		return
	}
	m.EstimatesTotal.WithLabelValues(layer, StatusOK).Inc()
	m.EstimateDuration.WithLabelValues(layer).Observe(took.Seconds())
	m.LastCentroid.WithLabelValues(layer).Set(x)
	if fallback {
		m.FallbacksTotal.WithLabelValues(layer).Inc()
	}
}

// ObserveError records one failed estimation
func (m *Metrics) ObserveError(layer string) {
	if m == nil {
		return
	}
	m.EstimatesTotal.WithLabelValues(layer, StatusError).Inc()
}
