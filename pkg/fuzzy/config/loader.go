package config

import (
	"context"
	"fmt"

	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
	"github.com/cognicore/fuzzy/pkg/fuzzy/store/sqlite"
)

// Loader loads a system file and opens its store
type Loader struct {
	SystemPath string
	StorePath  string
}

// Components holds all loaded configuration components
type Components struct {
	System *System
	Model  *Model
	Store  store.Store
}

// Load reads the system file, builds its model and opens the store.
// Without a StorePath Components.Store is nil and nothing is recorded.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	if l.SystemPath == "" {
		return nil, fmt.Errorf("%w: system path is required", ErrInvalidConfig)
	}

	sys, err := LoadSystem(l.SystemPath)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	model, err := sys.Build()
	if err != nil {
		return nil, fmt.Errorf("build system: %w", err)
	}

	comp := &Components{System: sys, Model: model}

	if l.StorePath == "" {
		return comp, nil
	}

	st, err := sqlite.Open(ctx, l.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	comp.Store = st

	if err := comp.Store.SaveSystem(ctx, sys.Name, sys.Raw); err != nil {
		comp.Store.Close()
		return nil, fmt.Errorf("save system: %w", err)
	}

	return comp, nil
}
