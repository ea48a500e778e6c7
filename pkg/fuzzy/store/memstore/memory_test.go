package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
)

var _ store.Store = (*Store)(nil)

func TestSaveAndGetEstimate(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := store.Estimate{
		ID:        "01HZX0000000000000000000A1",
		System:    "hvac",
		Layer:     "fan",
		Inputs:    map[string]float64{"temperature": 30},
		Samplings: 100,
		X:         71.5,
		Y:         0.01,
		Area:      12.5,
		CutOffs:   map[string]float64{"slow": 0, "fast": 1},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveEstimate(ctx, e))

	got, err := s.GetEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	// Mutating the returned copy must not leak into the store.
	got.Inputs["temperature"] = -1
	again, err := s.GetEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, again.Inputs["temperature"])
}

func TestGetEstimateNotFound(t *testing.T) {
	_, err := New().GetEstimate(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveEstimateRequiresID(t *testing.T) {
	err := New().SaveEstimate(context.Background(), store.Estimate{Layer: "fan"})
	assert.Error(t, err)
}

func TestListEstimatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	ids := []string{"01A", "01C", "01B", "01D"}
	layers := []string{"fan", "fan", "valve", "fan"}
	for i := range ids {
		require.NoError(t, s.SaveEstimate(ctx, store.Estimate{ID: ids[i], Layer: layers[i]}))
	}

	fan, err := s.ListEstimates(ctx, "fan", 10)
	require.NoError(t, err)
	require.Len(t, fan, 3)
	assert.Equal(t, "01D", fan[0].ID)
	assert.Equal(t, "01C", fan[1].ID)
	assert.Equal(t, "01A", fan[2].ID)

	all, err := s.ListEstimates(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01D", all[0].ID)
	assert.Equal(t, "01C", all[1].ID)
}

func TestSystems(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetSystem(ctx, "hvac")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveSystem(ctx, "hvac", "name: hvac\n"))
	require.NoError(t, s.SaveSystem(ctx, "hvac", "name: hvac\nsamplings: 10\n"))

	def, err := s.GetSystem(ctx, "hvac")
	require.NoError(t, err)
	assert.Equal(t, "name: hvac\nsamplings: 10\n", def)
}
