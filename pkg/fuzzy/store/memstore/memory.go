package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	estimates map[string]store.Estimate
	systems   map[string]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		estimates: make(map[string]store.Estimate),
		systems:   make(map[string]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveEstimate inserts or replaces an estimate, keyed by ID.
func (s *Store) SaveEstimate(ctx context.Context, e store.Estimate) error {
	if e.ID == "" {
		return fmt.Errorf("save estimate: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[e.ID] = copyEstimate(e)
	return nil
}

// GetEstimate returns an estimate by ID.
func (s *Store) GetEstimate(ctx context.Context, id string) (store.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.estimates[id]
	if !ok {
		return store.Estimate{}, fmt.Errorf("estimate %s: %w", id, store.ErrNotFound)
	}
	return copyEstimate(e), nil
}

// ListEstimates returns the newest estimates first. An empty layer matches
// every layer.
func (s *Store) ListEstimates(ctx context.Context, layer string, limit int) ([]store.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	var results []store.Estimate
	for _, e := range s.estimates {
		if layer != "" && e.Layer != layer {
			continue
		}
		results = append(results, copyEstimate(e))
	}

	// ULIDs sort lexically by creation time.
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID > results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SaveSystem stores a system definition under name.
func (s *Store) SaveSystem(ctx context.Context, name, definition string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[name] = definition
	return nil
}

// GetSystem returns the definition stored under name.
func (s *Store) GetSystem(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.systems[name]
	if !ok {
		return "", fmt.Errorf("system %s: %w", name, store.ErrNotFound)
	}
	return def, nil
}

func copyEstimate(e store.Estimate) store.Estimate {
	out := e
	out.Inputs = copyMap(e.Inputs)
	out.CutOffs = copyMap(e.CutOffs)
	return out
}

func copyMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
