package grammar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUEDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
	return dir
}

func TestLoadDefinitions(t *testing.T) {
	dir := writeCUEDir(t, map[string]string{
		"digits.cue": `
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
`,
		"letters.cue": `
package test

grammar: letters: {
	root: "start"
	notion: {
		start: "complex"
		end: {}
	}
	relation: [
		{subject: "start", object: "end", kind: "parse", text: "ab"},
	]
}
`,
	})

	result, errs := LoadDefinitions(dir, LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Definitions, 2)

	digits := result.Definition("digits")
	require.NotNil(t, digits)
	assert.Equal(t, "start", digits.Root)
	require.Len(t, digits.Relations, 1)
	assert.Equal(t, `\d+`, digits.Relations[0].Condition.Regex)

	assert.NotNil(t, result.Definition("letters"))
	assert.Nil(t, result.Definition("words"))
}

func TestLoadDefinitionsMissingDirectory(t *testing.T) {
	result, errs := LoadDefinitions("/nonexistent/grammars", LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	loadErr := errs[0].(*LoadError)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDefinitionsEmptyDirectory(t *testing.T) {
	result, errs := LoadDefinitions(t.TempDir(), LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	loadErr := errs[0].(*LoadError)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadDefinitionsFileIsNotADirectory(t *testing.T) {
	dir := writeCUEDir(t, map[string]string{"grammar.cue": "grammar: {}"})
	path := filepath.Join(dir, "grammar.cue")

	result, errs := LoadDefinitions(path, LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	loadErr := errs[0].(*LoadError)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not a directory")
}

func TestLoadDefinitionsCollectAll(t *testing.T) {
	// Two invalid definitions and a valid one; collect-all reports both
	// problems and still returns the good definition.
	dir := writeCUEDir(t, map[string]string{
		"grammars.cue": `
package test

grammar: good: {
	root: "start"
	notion: {
		start: "complex"
		end: {}
	}
	relation: [
		{subject: "start", object: "end", kind: "parse", text: "a"},
	]
}
grammar: norootdef: {
	notion: {start: "complex"}
	relation: []
}
grammar: badendpoint: {
	root: "start"
	notion: {start: "complex"}
	relation: [
		{subject: "start", object: "missing", kind: "next"},
	]
}
`,
	})

	result, errs := LoadDefinitions(dir, LoadModeCollectAll)
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, len(errs), 2)
	require.Len(t, result.Definitions, 1)
	assert.Equal(t, "good", result.Definitions[0].Name)

	for _, err := range errs {
		loadErr := err.(*LoadError)
		assert.Equal(t, ErrCodeInvalid, loadErr.Code)
	}
}

func TestLoadDefinitionsFailFastStopsEarly(t *testing.T) {
	dir := writeCUEDir(t, map[string]string{
		"grammars.cue": `
package test

grammar: alpha: {
	notion: {start: "complex"}
	relation: []
}
grammar: beta: {
	notion: {start: "complex"}
	relation: []
}
`,
	})

	_, errs := LoadDefinitions(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
}

func TestLoadDefinitionsNoGrammarField(t *testing.T) {
	dir := writeCUEDir(t, map[string]string{
		"other.cue": `
package test

config: {retries: 3}`,
	})

	result, errs := LoadDefinitions(dir, LoadModeFailFast)
	require.NotNil(t, result)
	require.Len(t, errs, 1)

	loadErr := errs[0].(*LoadError)
	assert.Equal(t, ErrCodeGeneric, loadErr.Code)
	assert.Contains(t, loadErr.Message, "no grammar definitions")
}

func TestFindCUEFilesIgnoresOtherExtensions(t *testing.T) {
	dir := writeCUEDir(t, map[string]string{
		"grammar.cue": "grammar: {}",
		"notes.txt":   "not a grammar",
	})

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "grammar.cue", filepath.Base(files[0]))
}
