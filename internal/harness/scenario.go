package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test: one grammar, several inputs,
// each with its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Grammar is inline CUE source declaring exactly one definition
	// under the top-level "grammar" field.
	Grammar string `yaml:"grammar"`

	// Inputs are the texts to walk, in order.
	Inputs []InputCase `yaml:"inputs"`
}

// InputCase is one text plus its expected outcome.
type InputCase struct {
	// Text is fed to a fresh parsing process.
	Text string `yaml:"text"`

	// Expect validates the outcome; nil records the outcome without
	// checking it.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected end of a walk.
type ExpectClause struct {
	// OK is whether the walk must succeed.
	OK bool `yaml:"ok"`

	// ParsedLength is the expected consumed length. Negative means
	// unchecked, so failures don't have to spell out partial consumption.
	ParsedLength int `yaml:"parsed_length"`

	// LastParsed is the expected final chunk; empty means unchecked.
	LastParsed string `yaml:"last_parsed,omitempty"`
}

// UnmarshalYAML defaults ParsedLength to -1 (unchecked) so scenarios
// only state what they care about.
func (e *ExpectClause) UnmarshalYAML(value *yaml.Node) error {
	type plain ExpectClause
	p := plain{ParsedLength: -1}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = ExpectClause(p)
	return nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by filename
// for deterministic ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks the scenario's required fields.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Grammar == "" {
		return fmt.Errorf("scenario %q: grammar is required", s.Name)
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("scenario %q: at least one input is required", s.Name)
	}
	return nil
}
