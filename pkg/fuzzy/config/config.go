package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

// ErrInvalidConfig is returned for structurally invalid system files.
var ErrInvalidConfig = internalerr.ErrInvalidConfig

// System represents a fuzzy system definition
type System struct {
	Name      string     `yaml:"name"`
	Samplings int        `yaml:"samplings,omitempty"`
	Inputs    []Variable `yaml:"inputs"`
	Layers    []Variable `yaml:"layers,omitempty"`

	// Raw holds the document the system was parsed from
	Raw string `yaml:"-"`
}

// Variable describes one granulated domain. Inputs are read by predicates,
// layers are defuzzified.
type Variable struct {
	Name  string    `yaml:"name"`
	Range []float64 `yaml:"range"`

	// Granularity auto-partitions the range when Granules is empty
	Granularity int      `yaml:"granularity,omitempty"`
	Labels      []string `yaml:"labels,omitempty"`

	Granules []Granule `yaml:"granules,omitempty"`

	// Rules maps granule labels to their predicates (layers only)
	Rules map[string]Expr `yaml:"rules,omitempty"`
}

// Granule is one membership function. Exactly one shape must be set.
type Granule struct {
	Label      string    `yaml:"label"`
	Trapezoid  []float64 `yaml:"trapezoid,omitempty"`
	Triangular []float64 `yaml:"triangular,omitempty"`
	Infinite   *Shoulder `yaml:"infinite,omitempty"`
	When       *Expr     `yaml:"when,omitempty"`
}

// Shoulder is an infinite trapezoid
type Shoulder struct {
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
	Side  string  `yaml:"side"`
}

// Expr is a predicate tree. A leaf sets Var and Is; an inner node sets
// exactly one of And, Or and Not.
type Expr struct {
	Var string `yaml:"var,omitempty"`
	Is  string `yaml:"is,omitempty"`

	And []Expr `yaml:"and,omitempty"`
	Or  []Expr `yaml:"or,omitempty"`
	Not *Expr  `yaml:"not,omitempty"`
}

// LoadSystem loads a system definition from a YAML file
func LoadSystem(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSystem(data)
}

// ParseSystem decodes a system definition. Unknown keys are rejected.
func ParseSystem(data []byte) (*System, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sys System
	if err := dec.Decode(&sys); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sys.Raw = string(data)
	return &sys, nil
}

// Marshal renders the system back to YAML
func (s *System) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
