package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphtalk/graphtalk/trace"
)

// seedTraceDB writes two runs with a few steps each.
func seedTraceDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	st, err := trace.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.WriteRun(ctx, trace.Run{
		Token: "run-1", Grammar: "digits", Input: "123",
		OK: true, ParsedLen: 3, CreatedAt: base,
	}))
	require.NoError(t, st.WriteSteps(ctx, []trace.Step{
		{RunToken: "run-1", Seq: 1, Current: "{digits}", Head: "new"},
		{RunToken: "run-1", Seq: 2, Current: "'start'", Head: "next", Result: "true"},
	}))

	require.NoError(t, st.WriteRun(ctx, trace.Run{
		Token: "run-2", Grammar: "digits", Input: "12x",
		OK: false, ParsedLen: 2, CreatedAt: base.Add(time.Minute),
	}))

	return dbPath
}

func TestTraceListsRuns(t *testing.T) {
	dbPath := seedTraceDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "2 run(s)")
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "accepted")
	assert.Contains(t, output, "run-2")
	assert.Contains(t, output, "rejected")
}

func TestTraceListsRunsJSON(t *testing.T) {
	dbPath := seedTraceDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result RunListResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Runs, 2)
	// Listing is chronological
	assert.Equal(t, "run-1", result.Runs[0].Token)
	assert.Equal(t, "run-2", result.Runs[1].Token)
}

func TestTraceShowsSteps(t *testing.T) {
	dbPath := seedTraceDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "run-1"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Run: run-1")
	assert.Contains(t, output, `Input: "123"`)
	assert.Contains(t, output, "accepted (3 character(s) parsed)")
	assert.Contains(t, output, "[1] {digits} <- new")
	assert.Contains(t, output, "[2] 'start' <- next")
	assert.Contains(t, output, "returned: true")
}

func TestTraceShowUnknownRun(t *testing.T) {
	dbPath := seedTraceDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "run-9"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}

func TestTraceEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := trace.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs recorded.")
}
