// Package fuzzy is the engine facade over a configured fuzzy system.
//
// The membership, operator, rule and layer packages hold the numeric core.
// Engine wires a built config.Model to persistence, logging and metrics:
// every call to Estimate defuzzifies one layer for a set of named inputs,
// tags the result with a ULID and records it in the store.
package fuzzy

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/fuzzy/pkg/fuzzy/config"
	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/layer"
	"github.com/cognicore/fuzzy/pkg/fuzzy/metrics"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
)

// ErrUnknownLayer is returned when Estimate names a layer the model lacks.
var ErrUnknownLayer = internalerr.ErrUnknownLayer

// Engine is the main fuzzy system facade
type Engine struct {
	model     *config.Model
	store     store.Store
	logger    *zap.Logger
	metrics   *metrics.Metrics
	samplings int
	now       func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine
type Options struct {
	Model   *config.Model
	Store   store.Store // optional; estimates are not persisted without one
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Samplings overrides the model's sampling count when positive
	Samplings int
	// Now overrides the clock, for tests
	Now func() time.Time
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("%w: engine needs a model", internalerr.ErrInvalidConfig)
	}

	e := &Engine{
		model:     opts.Model,
		store:     opts.Store,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		samplings: opts.Samplings,
		now:       opts.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.samplings <= 0 {
		e.samplings = opts.Model.Samplings
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Close cleanly shuts down the engine and its store
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Model returns the underlying model
func (e *Engine) Model() *config.Model { return e.model }

// Layers returns the layer names in definition order
func (e *Engine) Layers() []string { return e.model.LayerNames() }

// Layer returns the named layer
func (e *Engine) Layer(name string) (*layer.Layer, bool) { return e.model.Layer(name) }

// Estimate is the outcome of defuzzifying one layer
type Estimate struct {
	ID        string
	System    string
	Layer     string
	Inputs    map[string]float64
	Samplings int
	X         float64
	Y         float64
	Area      float64
	Fallback  bool
	CutOffs   map[string]float64
	CreatedAt time.Time
}

// Estimate computes the centre of mass of layerName for in and records it
func (e *Engine) Estimate(ctx context.Context, layerName string, in operator.Inputs) (Estimate, error) {
	l, ok := e.Layer(layerName)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: %q", ErrUnknownLayer, layerName)
	}
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}

	start := time.Now()
	c, err := l.EstimateCenterOfMass(in, e.samplings)
	if err != nil {
		e.metrics.ObserveError(layerName)
		e.logger.Warn("estimate failed", zap.String("layer", layerName), zap.Error(err))
		return Estimate{}, err
	}
	took := time.Since(start)
	e.metrics.ObserveEstimate(layerName, c.X, c.Fallback, took)

	est := Estimate{
		ID:        e.newID(),
		System:    e.model.Name,
		Layer:     layerName,
		Inputs:    copyInputs(in),
		Samplings: e.samplings,
		X:         c.X,
		Y:         c.Y,
		Area:      c.Area,
		Fallback:  c.Fallback,
		CutOffs:   labelCutOffs(l, c.CutOffs),
		CreatedAt: e.now().UTC(),
	}

	e.logger.Debug("estimated centre of mass",
		zap.String("id", est.ID),
		zap.String("layer", layerName),
		zap.Float64("x", est.X),
		zap.Float64("y", est.Y),
		zap.Bool("fallback", est.Fallback),
		zap.Duration("took", took),
	)

	if e.store != nil {
		if err := e.store.SaveEstimate(ctx, toRecord(est)); err != nil {
			return est, fmt.Errorf("save estimate %s: %w", est.ID, err)
		}
	}
	return est, nil
}

// EstimateAll estimates every layer independently, in model order
func (e *Engine) EstimateAll(ctx context.Context, in operator.Inputs) ([]Estimate, error) {
	names := e.Layers()
	out := make([]Estimate, 0, len(names))
	for _, name := range names {
		est, err := e.Estimate(ctx, name, in)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		out = append(out, est)
	}
	return out, nil
}

// Membership returns the degree of every granule of an input variable at x
func (e *Engine) Membership(input string, x float64) (map[string]float64, error) {
	in, ok := e.model.Input(input)
	if !ok {
		return nil, fmt.Errorf("%w: input %q", internalerr.ErrNotFound, input)
	}
	return in.Degrees(x), nil
}

// History returns recorded estimates for a layer, newest first
func (e *Engine) History(ctx context.Context, layerName string, limit int) ([]Estimate, error) {
	if e.store == nil {
		return nil, internalerr.ErrStoreUnavailable
	}
	records, err := e.store.ListEstimates(ctx, layerName, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Estimate, len(records))
	for i, r := range records {
		out[i] = fromRecord(r)
	}
	return out, nil
}

func (e *Engine) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

func labelCutOffs(l *layer.Layer, cutOffs []float64) map[string]float64 {
	out := make(map[string]float64, len(cutOffs))
	for i, g := range l.Granules() {
		label := g.Label
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		out[label] = cutOffs[i]
	}
	return out
}

func copyInputs(in operator.Inputs) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toRecord(e Estimate) store.Estimate {
	return store.Estimate(e)
}

func fromRecord(r store.Estimate) Estimate {
	return Estimate(r)
}

// SortedLabels returns the keys of a cut-off map in lexical order
func SortedLabels(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
