package store

import (
	"context"
	"time"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = internalerr.ErrNotFound

// Store is the persistence interface for estimates and system definitions
type Store interface {
	Close() error

	// Estimates
	SaveEstimate(ctx context.Context, e Estimate) error
	GetEstimate(ctx context.Context, id string) (Estimate, error)
	ListEstimates(ctx context.Context, layer string, limit int) ([]Estimate, error)

	// System definitions, stored as the raw YAML they were loaded from
	SaveSystem(ctx context.Context, name, definition string) error
	GetSystem(ctx context.Context, name string) (string, error)
}

// Estimate is a recorded defuzzification result
type Estimate struct {
	ID        string // ULID, sortable by creation time
	System    string
	Layer     string
	Inputs    map[string]float64
	Samplings int
	X         float64
	Y         float64
	Area      float64
	Fallback  bool
	CutOffs   map[string]float64 // granule label -> activation
	CreatedAt time.Time
}
