package trace

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{
		Token:     "run-1",
		Grammar:   "digits",
		Input:     "123",
		OK:        true,
		ParsedLen: 3,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestStoreWriteRunIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{Token: "run-1", Grammar: "g", Input: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.WriteRun(ctx, run))

	dup := run
	dup.Input = "changed"
	require.NoError(t, s.WriteRun(ctx, dup), "duplicate tokens are ignored, not errors")

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Input, "the first write wins")
}

func TestStoreStepsOrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, Run{Token: "run-1", Grammar: "g", Input: "", CreatedAt: time.Now().UTC()}))
	require.NoError(t, s.WriteSteps(ctx, []Step{
		{RunToken: "run-1", Seq: 2, Head: "second"},
		{RunToken: "run-1", Seq: 1, Head: "first"},
		{RunToken: "run-1", Seq: 3, Head: "third"},
	}))

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "first", steps[0].Head)
	assert.Equal(t, "second", steps[1].Head)
	assert.Equal(t, "third", steps[2].Head)
}

func TestStoreReadRunsOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.WriteRun(ctx, Run{Token: "b", Grammar: "g", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.WriteRun(ctx, Run{Token: "a", Grammar: "g", CreatedAt: base}))

	runs, err := s.ReadRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].Token)
	assert.Equal(t, "b", runs[1].Token)
}

func TestStoreReadMissingRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReadRun(context.Background(), "nope")
	assert.ErrorContains(t, err, "run not found")
}

func TestStoreReadEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runs, err := s.ReadRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	steps, err := s.ReadSteps(ctx, "absent")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}
