package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	for _, id := range []string{"run-a", "run-b", "run-c"} {
		beginTestRun(t, s, id)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"run-c", "run-b", "run-a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-c", limited[0].ID)
}

func TestListRuns_Empty(t *testing.T) {
	runs, err := createTestStore(t).ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}

func TestReadResults_SuiteOrder(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-a")
	beginTestRun(t, s, "run-b")

	// written out of order, as parallel cases finish
	for _, r := range []Result{
		{ID: "z", RunID: "run-a", Position: 2, Name: "third", Program: "p.asm"},
		{ID: "y", RunID: "run-a", Position: 0, Name: "first", Program: "p.asm"},
		{ID: "x", RunID: "run-a", Position: 1, Name: "second", Program: "p.asm"},
		{ID: "w", RunID: "run-b", Position: 0, Name: "other run", Program: "p.asm"},
	} {
		require.NoError(t, s.WriteResult(ctx, r))
	}

	got, err := s.ReadResults(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, "third", got[2].Name)
}

func TestReadResults_UnknownRun(t *testing.T) {
	got, err := createTestStore(t).ReadResults(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
