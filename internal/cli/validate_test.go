package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validGrammarCUE = `
package test

grammar: digits: {
	root: "start"
	notion: {
		start: "complex"
		end: {}
	}
	relation: [
		{subject: "start", object: "end", kind: "parse", regex: #"\d+"#},
	]
}
`

// writeGrammarDir creates a temp directory holding one grammar file.
func writeGrammarDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "grammar.cue"), []byte(src), 0644)
	require.NoError(t, err)
	return dir
}

func TestValidateValidGrammar(t *testing.T) {
	dir := writeGrammarDir(t, validGrammarCUE)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "1 definition(s) valid")
	assert.Contains(t, output, "digits")
}

func TestValidateValidGrammarJSON(t *testing.T) {
	dir := writeGrammarDir(t, validGrammarCUE)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, buf.String(), "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestValidateInvalidGrammar(t *testing.T) {
	// Relation points at a notion that is never declared
	dir := writeGrammarDir(t, `
package test

grammar: broken: {
	root: "start"
	notion: {
		start: "complex"
	}
	relation: [
		{subject: "start", object: "missing", kind: "parse", text: "a"},
	]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, buf.String(), "Validation failed")
	assert.Contains(t, buf.String(), "missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	// Two broken definitions in one file; both must be reported
	dir := writeGrammarDir(t, `
package test

grammar: first: {
	notion: {start: "complex"}
	relation: []
}
grammar: second: {
	root: "gone"
	notion: {start: "complex"}
	relation: []
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)

	data, err2 := json.Marshal(resp.Data)
	require.NoError(t, err2)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 2)
}

func TestValidateVerboseLogsToStderr(t *testing.T) {
	dir := writeGrammarDir(t, validGrammarCUE)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Verbose: true}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	// JSON on stdout must stay parseable
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, errOut.String(), "CUE file(s)")
}
