package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a scenario run: the scenario name
// plus each case's observed outcome. Field order is fixed by the struct
// definitions so serialization stays deterministic.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	Grammar  string       `json:"grammar"`
	Cases    []CaseResult `json:"cases"`
}

// RunWithGolden executes a scenario, fails the test on expectation
// mismatches, and compares the outcome snapshot against the golden file
// at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("running scenario: %v", err)
	}
	for _, f := range result.Failures {
		t.Errorf("scenario %s: %s", scenario.Name, f)
	}

	data, err := marshalSnapshot(result)
	if err != nil {
		t.Fatalf("marshaling snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}

// marshalSnapshot renders the snapshot as indented JSON with HTML
// escaping off, so golden files stay readable diffs.
func marshalSnapshot(result *Result) ([]byte, error) {
	snapshot := Snapshot{
		Scenario: result.Scenario,
		Grammar:  result.Grammar,
		Cases:    result.Cases,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
