package sqlite

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/fuzzy/pkg/fuzzy/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteIntegrationBasic tests basic estimate round trips
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	e := store.Estimate{
		ID:        "01J00000000000000000000001",
		System:    "hvac",
		Layer:     "fan",
		Inputs:    map[string]float64{"temperature": 30, "humidity": 55.5},
		Samplings: 200,
		X:         71.25,
		Y:         0.0125,
		Area:      18.75,
		CutOffs:   map[string]float64{"slow": 0, "fast": 0.75},
		CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC),
	}
	require.NoError(t, st.SaveEstimate(ctx, e))

	got, err := st.GetEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.System, got.System)
	assert.Equal(t, e.Layer, got.Layer)
	assert.Equal(t, e.Inputs, got.Inputs)
	assert.Equal(t, e.Samplings, got.Samplings)
	assert.Equal(t, e.X, got.X)
	assert.Equal(t, e.Y, got.Y)
	assert.Equal(t, e.Area, got.Area)
	assert.False(t, got.Fallback)
	assert.Equal(t, e.CutOffs, got.CutOffs)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	// Saving under the same ID replaces the row.
	e.X = 10
	e.Fallback = true
	require.NoError(t, st.SaveEstimate(ctx, e))
	got, err = st.GetEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.X)
	assert.True(t, got.Fallback)
}

func TestSQLiteInfiniteInputs(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	e := store.Estimate{
		ID:     "01J00000000000000000000002",
		Layer:  "fan",
		Inputs: map[string]float64{"low": math.Inf(-1), "high": math.Inf(1)},
	}
	require.NoError(t, st.SaveEstimate(ctx, e))

	got, err := st.GetEstimate(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Inputs["low"], -1))
	assert.True(t, math.IsInf(got.Inputs["high"], 1))
	assert.Nil(t, got.CutOffs)
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.GetEstimate(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.GetSystem(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Error(t, st.SaveEstimate(ctx, store.Estimate{Layer: "fan"}))
}

func TestSQLiteListEstimates(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	for i := 0; i < 6; i++ {
		layer := "fan"
		if i%3 == 2 {
			layer = "valve"
		}
		require.NoError(t, st.SaveEstimate(ctx, store.Estimate{
			ID:    fmt.Sprintf("01J0000000000000000000000%d", i),
			Layer: layer,
			X:     float64(i),
		}))
	}

	fan, err := st.ListEstimates(ctx, "fan", 10)
	require.NoError(t, err)
	require.Len(t, fan, 4)
	assert.Equal(t, 4.0, fan[0].X)
	assert.Equal(t, 0.0, fan[3].X)

	all, err := st.ListEstimates(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 5.0, all[0].X)

	none, err := st.ListEstimates(ctx, "pump", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestSQLiteConcurrentWrites tests that parallel writers do not lose rows
func TestSQLiteConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- st.SaveEstimate(ctx, store.Estimate{
				ID:    fmt.Sprintf("01J000000000000000000000%02d", i),
				Layer: "fan",
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !isBusy(err) {
			t.Fatalf("SaveEstimate: %v", err)
		}
	}

	list, err := st.ListEstimates(ctx, "fan", 100)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func isBusy(err error) bool {
	return strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked")
}
