// Package operator combines membership functions into operator trees.
//
// Fuzzy sets support the same basic operations as classical sets: the
// intersection becomes a t-norm (And), the union an s-norm (Or) and the
// complement a strong negation (Not). Operators own their children and can
// be nested to any depth, so a rule such as
//
//	humidity is high AND NOT temperature is hot
//
// is a small tree of Terms under And and Not.
//
// Every node supports two evaluation contracts. Evaluate feeds one crisp
// value to every leaf, which is what plotting a composed curve needs.
// EvaluateInputs lets each Term read its own named variable from Inputs.
package operator

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
)

var (
	// ErrArityMismatch is returned when an operator gets the wrong number of children.
	ErrArityMismatch = internalerr.ErrArityMismatch
	// ErrMissingInput is returned when a Term's variable is absent from Inputs.
	ErrMissingInput = internalerr.ErrMissingInput
	// ErrInvalidOperator is returned for unknown operator kinds.
	ErrInvalidOperator = internalerr.ErrInvalidOperator
)

// Inputs holds crisp values keyed by variable name.
type Inputs map[string]float64

// Node is anything that can sit in an operator tree.
type Node interface {
	// Evaluate returns the membership degree for a single crisp value.
	Evaluate(x float64) float64
	// EvaluateInputs returns the membership degree for named inputs.
	EvaluateInputs(in Inputs) (float64, error)
}

// Kind selects the operation applied by an Operator.
type Kind int

const (
	// KindAnd is the minimum t-norm.
	KindAnd Kind = iota
	// KindOr is the maximum s-norm.
	KindOr
	// KindNot is the strong negation 1 - x.
	KindNot
)

func (k Kind) String() string {
	switch k {
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	case KindNot:
		return "NOT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts and, or and not in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return KindAnd, nil
	case "or":
		return KindOr, nil
	case "not":
		return KindNot, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}

// Operator applies a t-norm, s-norm or negation to its children.
type Operator struct {
	kind     Kind
	children []Node
}

// New validates arity and returns an operator over children.
// Not takes exactly one child, And and Or at least one.
func New(kind Kind, children ...Node) (*Operator, error) {
	switch kind {
	case KindNot:
		if len(children) != 1 {
			return nil, fmt.Errorf("%w: NOT takes exactly one operand, got %d", ErrArityMismatch, len(children))
		}
	case KindAnd, KindOr:
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one operand", ErrArityMismatch, kind)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperator, kind)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: operand %d of %s is nil", ErrArityMismatch, i, kind)
		}
	}

	owned := make([]Node, len(children))
	copy(owned, children)
	return &Operator{kind: kind, children: owned}, nil
}

func mustNew(kind Kind, children ...Node) *Operator {
	op, err := New(kind, children...)
	if err != nil {
		panic(err)
	}
	return op
}

// And returns the t-norm of children. It panics when called without children.
func And(children ...Node) *Operator { return mustNew(KindAnd, children...) }

// Or returns the s-norm of children. It panics when called without children.
func Or(children ...Node) *Operator { return mustNew(KindOr, children...) }

// Not returns the strong negation of child.
func Not(child Node) *Operator { return mustNew(KindNot, child) }

// Kind reports the operation.
func (o *Operator) Kind() Kind { return o.kind }

// Children returns a copy of the operands.
func (o *Operator) Children() []Node {
	out := make([]Node, len(o.children))
	copy(out, o.children)
	return out
}

// Evaluate applies the operator to every child evaluated at x.
func (o *Operator) Evaluate(x float64) float64 {
	v, _ := o.combine(func(n Node) (float64, error) {
		return n.Evaluate(x), nil
	})
	return v
}

// EvaluateInputs applies the operator to every child evaluated on in.
func (o *Operator) EvaluateInputs(in Inputs) (float64, error) {
	return o.combine(func(n Node) (float64, error) {
		return n.EvaluateInputs(in)
	})
}

// combine folds children left to right. And stops at the first exact 0 and
// Or at the first exact 1; the result is the same as the full min or max.
func (o *Operator) combine(eval func(Node) (float64, error)) (float64, error) {
	switch o.kind {
	case KindNot:
		v, err := eval(o.children[0])
		if err != nil {
			return 0, err
		}
		return 1 - v, nil

	case KindAnd:
		result := 1.0
		for _, c := range o.children {
			v, err := eval(c)
			if err != nil {
				return 0, err
			}
			if v == 0 {
				return 0, nil
			}
			result = math.Min(result, v)
		}
		return result, nil

	default:
		result := 0.0
		for _, c := range o.children {
			v, err := eval(c)
			if err != nil {
				return 0, err
			}
			if v == 1 {
				return 1, nil
			}
			result = math.Max(result, v)
		}
		return result, nil
	}
}

func (o *Operator) String() string {
	if o.kind == KindNot {
		return "NOT " + group(o.children[0])
	}
	parts := make([]string, len(o.children))
	for i, c := range o.children {
		parts[i] = group(c)
	}
	return strings.Join(parts, " "+o.kind.String()+" ")
}

func group(n Node) string {
	if op, ok := n.(*Operator); ok && op.kind != KindNot && len(op.children) > 1 {
		return "(" + op.String() + ")"
	}
	return fmt.Sprint(n)
}

// Term is a tree leaf: a membership function bound to a variable name.
type Term struct {
	variable string
	label    string
	function membership.Function
}

// Is binds f to the named variable.
func Is(variable string, f membership.Function) *Term {
	return &Term{variable: variable, function: f}
}

// IsLabeled binds f to the named variable and records the granule label
// for display.
func IsLabeled(variable, label string, f membership.Function) *Term {
	return &Term{variable: variable, label: label, function: f}
}

// Of wraps f for scalar evaluation only. Named evaluation of an unbound
// term reports ErrMissingInput.
func Of(f membership.Function) *Term {
	return &Term{function: f}
}

// Variable returns the input name the term reads.
func (t *Term) Variable() string { return t.variable }

// Function returns the wrapped membership function.
func (t *Term) Function() membership.Function { return t.function }

// Evaluate passes x straight to the membership function.
func (t *Term) Evaluate(x float64) float64 {
	return t.function.Evaluate(x)
}

// EvaluateInputs looks up the term's variable and evaluates it.
func (t *Term) EvaluateInputs(in Inputs) (float64, error) {
	if t.variable == "" {
		return 0, fmt.Errorf("%w: term %v is not bound to a variable", ErrMissingInput, t.function)
	}
	x, ok := in[t.variable]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingInput, t.variable)
	}
	return t.function.Evaluate(x), nil
}

func (t *Term) String() string {
	target := t.label
	if target == "" {
		target = fmt.Sprint(t.function)
	}
	if t.variable == "" {
		return target
	}
	return t.variable + " is " + target
}
