// Package rule implements fuzzy IF-THEN rules.
//
// A rule owns the antecedent of a statement such as
//
//	IF temperature is low AND NOT pressure is high THEN fan is fast
//
// as an operator tree. Evaluating the rule against named inputs yields the
// activation (cut-off) used to clip the consequent membership function.
package rule

import (
	"fmt"
	"sync"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

// ErrMissingInput is returned when the antecedent reads an absent variable.
var ErrMissingInput = internalerr.ErrMissingInput

// Rule binds an antecedent to its most recent activation.
type Rule struct {
	name      string
	operation operator.Node

	mu         sync.RWMutex
	activation float64
	evaluated  bool
}

// New creates an unnamed rule over operation.
func New(operation operator.Node) *Rule {
	return &Rule{operation: operation}
}

// Named creates a rule with a display name, e.g. "fan is fast".
func Named(name string, operation operator.Node) *Rule {
	return &Rule{name: name, operation: operation}
}

// EvaluateInputs computes the activation for in and caches it.
// On error the cached activation is left untouched.
func (r *Rule) EvaluateInputs(in operator.Inputs) (float64, error) {
	v, err := r.operation.EvaluateInputs(in)
	if err != nil {
		if r.name != "" {
			return 0, fmt.Errorf("rule %q: %w", r.name, err)
		}
		return 0, err
	}

	r.mu.Lock()
	r.activation = v
	r.evaluated = true
	r.mu.Unlock()
	return v, nil
}

// Activation returns the last computed cut-off. The boolean is false until
// the rule has been evaluated successfully at least once.
func (r *Rule) Activation() (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activation, r.evaluated
}

// Name returns the display name, which may be empty.
func (r *Rule) Name() string { return r.name }

// Operation returns the antecedent tree.
func (r *Rule) Operation() operator.Node { return r.operation }

func (r *Rule) String() string {
	if r.name == "" {
		return fmt.Sprintf("IF %v", r.operation)
	}
	return fmt.Sprintf("IF %v THEN %s", r.operation, r.name)
}
