package config

import (
	"fmt"
	"sort"

	"github.com/cognicore/fuzzy/pkg/fuzzy/grades"
	"github.com/cognicore/fuzzy/pkg/fuzzy/layer"
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
	"github.com/cognicore/fuzzy/pkg/fuzzy/rule"
)

// Input is a built input variable
type Input struct {
	Name      string
	Domain    layer.Range
	Labels    []string
	Functions []membership.Function
}

// Function returns the membership function registered under label
func (in *Input) Function(label string) (membership.Function, bool) {
	for i, l := range in.Labels {
		if l == label {
			return in.Functions[i], true
		}
	}
	return nil, false
}

// Degrees evaluates every granule at x
func (in *Input) Degrees(x float64) map[string]float64 {
	out := make(map[string]float64, len(in.Labels))
	for i, l := range in.Labels {
		out[l] = in.Functions[i].Evaluate(x)
	}
	return out
}

// Model is a system with every function, predicate and layer constructed
type Model struct {
	Name      string
	Samplings int
	Inputs    []*Input
	Layers    []*layer.Layer
	Rules     []*rule.Rule

	inputs map[string]*Input
	layers map[string]*layer.Layer
}

// Input looks up an input variable by name
func (m *Model) Input(name string) (*Input, bool) {
	in, ok := m.inputs[name]
	return in, ok
}

// Layer looks up a layer by name
func (m *Model) Layer(name string) (*layer.Layer, bool) {
	l, ok := m.layers[name]
	return l, ok
}

// LayerNames returns the layer names in definition order
func (m *Model) LayerNames() []string {
	names := make([]string, len(m.Layers))
	for i, l := range m.Layers {
		names[i] = l.Name()
	}
	return names
}

// Build validates the system and constructs its model
func (s *System) Build() (*Model, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%w: system name is required", ErrInvalidConfig)
	}
	if s.Samplings < 0 {
		return nil, fmt.Errorf("%w: samplings must not be negative", ErrInvalidConfig)
	}
	if len(s.Layers) == 0 && len(s.Inputs) == 0 {
		return nil, fmt.Errorf("%w: system %q defines no variables", ErrInvalidConfig, s.Name)
	}

	m := &Model{
		Name:      s.Name,
		Samplings: s.Samplings,
		inputs:    make(map[string]*Input),
		layers:    make(map[string]*layer.Layer),
	}
	if m.Samplings == 0 {
		m.Samplings = layer.DefaultSamplings
	}

	for _, v := range s.Inputs {
		in, err := v.buildInput()
		if err != nil {
			return nil, err
		}
		if _, dup := m.inputs[in.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate input %q", ErrInvalidConfig, in.Name)
		}
		m.inputs[in.Name] = in
		m.Inputs = append(m.Inputs, in)
	}

	for _, v := range s.Layers {
		l, rules, err := v.buildLayer(m.inputs)
		if err != nil {
			return nil, err
		}
		if _, dup := m.layers[l.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate layer %q", ErrInvalidConfig, l.Name())
		}
		m.layers[l.Name()] = l
		m.Layers = append(m.Layers, l)
		m.Rules = append(m.Rules, rules...)
	}

	return m, nil
}

func (v Variable) domain() (layer.Range, error) {
	if v.Name == "" {
		return layer.Range{}, fmt.Errorf("%w: variable without a name", ErrInvalidConfig)
	}
	if len(v.Range) != 2 {
		return layer.Range{}, fmt.Errorf("%w: variable %q: range needs exactly two values", ErrInvalidConfig, v.Name)
	}
	r := layer.Range{Min: v.Range[0], Max: v.Range[1]}
	if err := r.Validate(); err != nil {
		return layer.Range{}, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	return r, nil
}

// granules returns the labels and functions of a variable, either listed
// explicitly or generated from its granularity.
func (v Variable) granules(domain layer.Range) ([]string, []membership.Function, error) {
	if len(v.Granules) == 0 {
		if v.Granularity == 0 {
			return nil, nil, fmt.Errorf("%w: variable %q needs granules or a granularity", ErrInvalidConfig, v.Name)
		}
		functions, err := membership.Partition(domain.Min, domain.Max, v.Granularity)
		if err != nil {
			return nil, nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		labels := v.Labels
		if len(labels) == 0 {
			if labels, err = grades.Default(v.Granularity); err != nil {
				return nil, nil, fmt.Errorf("variable %q: %w", v.Name, err)
			}
		}
		if len(labels) != len(functions) {
			return nil, nil, fmt.Errorf("%w: variable %q has %d labels for %d granules", ErrInvalidConfig, v.Name, len(labels), len(functions))
		}
		return labels, functions, checkUnique(v.Name, labels)
	}

	if v.Granularity != 0 && v.Granularity != len(v.Granules) {
		return nil, nil, fmt.Errorf("%w: variable %q granularity %d does not match %d granules", ErrInvalidConfig, v.Name, v.Granularity, len(v.Granules))
	}

	labels := make([]string, len(v.Granules))
	functions := make([]membership.Function, len(v.Granules))
	for i, g := range v.Granules {
		if g.Label == "" {
			return nil, nil, fmt.Errorf("%w: variable %q granule %d has no label", ErrInvalidConfig, v.Name, i)
		}
		f, err := g.function()
		if err != nil {
			return nil, nil, fmt.Errorf("variable %q granule %q: %w", v.Name, g.Label, err)
		}
		labels[i] = g.Label
		functions[i] = f
	}
	return labels, functions, checkUnique(v.Name, labels)
}

func checkUnique(variable string, labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return fmt.Errorf("%w: variable %q repeats label %q", ErrInvalidConfig, variable, l)
		}
		seen[l] = true
	}
	return nil
}

func (v Variable) buildInput() (*Input, error) {
	domain, err := v.domain()
	if err != nil {
		return nil, err
	}
	if len(v.Rules) > 0 {
		return nil, fmt.Errorf("%w: input %q cannot have rules", ErrInvalidConfig, v.Name)
	}
	for _, g := range v.Granules {
		if g.When != nil {
			return nil, fmt.Errorf("%w: input %q granule %q cannot have a predicate", ErrInvalidConfig, v.Name, g.Label)
		}
	}
	labels, functions, err := v.granules(domain)
	if err != nil {
		return nil, err
	}
	return &Input{Name: v.Name, Domain: domain, Labels: labels, Functions: functions}, nil
}

func (v Variable) buildLayer(inputs map[string]*Input) (*layer.Layer, []*rule.Rule, error) {
	domain, err := v.domain()
	if err != nil {
		return nil, nil, err
	}
	labels, functions, err := v.granules(domain)
	if err != nil {
		return nil, nil, err
	}

	exprs := make([]*Expr, len(labels))
	for i, g := range v.Granules {
		exprs[i] = g.When
	}
	for label, e := range v.Rules {
		i := indexOf(labels, label)
		if i < 0 {
			return nil, nil, fmt.Errorf("%w: layer %q has a rule for unknown granule %q", ErrInvalidConfig, v.Name, label)
		}
		if exprs[i] != nil {
			return nil, nil, fmt.Errorf("%w: layer %q granule %q has two predicates", ErrInvalidConfig, v.Name, label)
		}
		e := e
		exprs[i] = &e
	}

	rules := make([]*rule.Rule, len(labels))
	predicates := make([]layer.Predicate, len(labels))
	for i, e := range exprs {
		if e == nil {
			return nil, nil, fmt.Errorf("%w: layer %q granule %q has no predicate", ErrInvalidConfig, v.Name, labels[i])
		}
		node, err := e.build(inputs)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %q granule %q: %w", v.Name, labels[i], err)
		}
		rules[i] = rule.Named(v.Name+" is "+labels[i], node)
		predicates[i] = rules[i]
	}

	l, err := layer.New(functions, predicates, domain, layer.WithName(v.Name), layer.WithLabels(labels...))
	if err != nil {
		return nil, nil, fmt.Errorf("layer %q: %w", v.Name, err)
	}
	return l, rules, nil
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (g Granule) function() (membership.Function, error) {
	set := 0
	if g.Trapezoid != nil {
		set++
	}
	if g.Triangular != nil {
		set++
	}
	if g.Infinite != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of trapezoid, triangular or infinite is required", ErrInvalidConfig)
	}

	switch {
	case g.Trapezoid != nil:
		if len(g.Trapezoid) != 4 {
			return nil, fmt.Errorf("%w: trapezoid needs 4 values, got %d", ErrInvalidConfig, len(g.Trapezoid))
		}
		b := g.Trapezoid
		t, err := membership.NewTrapezoid(b[0], b[1], b[2], b[3])
		if err != nil {
			return nil, err
		}
		return t, nil
	case g.Triangular != nil:
		if len(g.Triangular) != 3 {
			return nil, fmt.Errorf("%w: triangular needs 3 values, got %d", ErrInvalidConfig, len(g.Triangular))
		}
		b := g.Triangular
		t, err := membership.NewTriangular(b[0], b[1], b[2])
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		side, err := membership.ParseSide(g.Infinite.Side)
		if err != nil {
			return nil, err
		}
		t, err := membership.NewInfiniteTrapezoid(g.Infinite.Left, g.Infinite.Right, side)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// build turns the expression into an operator tree over the inputs.
func (e *Expr) build(inputs map[string]*Input) (operator.Node, error) {
	forms := 0
	if e.Var != "" || e.Is != "" {
		forms++
	}
	if e.And != nil {
		forms++
	}
	if e.Or != nil {
		forms++
	}
	if e.Not != nil {
		forms++
	}
	if forms != 1 {
		return nil, fmt.Errorf("%w: predicate must be exactly one of var/is, and, or, not", ErrInvalidConfig)
	}

	switch {
	case e.Not != nil:
		child, err := e.Not.build(inputs)
		if err != nil {
			return nil, err
		}
		return newOperator(operator.KindNot, child)
	case e.And != nil:
		return buildAll(operator.KindAnd, e.And, inputs)
	case e.Or != nil:
		return buildAll(operator.KindOr, e.Or, inputs)
	}

	in, ok := inputs[e.Var]
	if !ok {
		return nil, fmt.Errorf("%w: unknown input %q (known: %v)", ErrInvalidConfig, e.Var, inputNames(inputs))
	}
	f, ok := in.Function(e.Is)
	if !ok {
		return nil, fmt.Errorf("%w: input %q has no granule %q (known: %v)", ErrInvalidConfig, e.Var, e.Is, in.Labels)
	}
	return operator.IsLabeled(e.Var, e.Is, f), nil
}

func buildAll(kind operator.Kind, exprs []Expr, inputs map[string]*Input) (operator.Node, error) {
	children := make([]operator.Node, len(exprs))
	for i := range exprs {
		c, err := exprs[i].build(inputs)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return newOperator(kind, children...)
}

func newOperator(kind operator.Kind, children ...operator.Node) (operator.Node, error) {
	op, err := operator.New(kind, children...)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func inputNames(inputs map[string]*Input) []string {
	names := make([]string, 0, len(inputs))
	for n := range inputs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
