package harness

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/graphtalk/graphtalk/grammar"
	"github.com/graphtalk/graphtalk/graph"
	"github.com/graphtalk/graphtalk/process"
)

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	Grammar  string
	Cases    []CaseResult
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// CaseResult is the observed outcome of walking one input.
type CaseResult struct {
	Text         string `json:"text"`
	OK           bool   `json:"ok"`
	ParsedLength int    `json:"parsed_length"`
	LastParsed   string `json:"last_parsed,omitempty"`
}

// Run executes a scenario: compile the grammar, build the graph once,
// then walk every input through a fresh parsing process. Expectation
// mismatches are collected as failures rather than returned as errors;
// errors mean the scenario itself is broken.
func Run(scenario *Scenario) (*Result, error) {
	def, err := compileGrammar(scenario.Grammar)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	g, err := grammar.Build(def)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	result := &Result{Scenario: scenario.Name, Grammar: def.Name}
	for i, input := range scenario.Inputs {
		cr := walk(g, input.Text)
		result.Cases = append(result.Cases, cr)

		if input.Expect == nil {
			continue
		}
		exp := input.Expect
		if cr.OK != exp.OK {
			result.Failures = append(result.Failures,
				fmt.Sprintf("inputs[%d] %q: ok = %v, want %v", i, input.Text, cr.OK, exp.OK))
		}
		if exp.ParsedLength >= 0 && cr.ParsedLength != exp.ParsedLength {
			result.Failures = append(result.Failures,
				fmt.Sprintf("inputs[%d] %q: parsed_length = %d, want %d", i, input.Text, cr.ParsedLength, exp.ParsedLength))
		}
		if exp.LastParsed != "" && cr.LastParsed != exp.LastParsed {
			result.Failures = append(result.Failures,
				fmt.Sprintf("inputs[%d] %q: last_parsed = %q, want %q", i, input.Text, cr.LastParsed, exp.LastParsed))
		}
	}
	return result, nil
}

// walk runs one text through a fresh process so cases cannot leak state
// into each other.
func walk(g *graph.Graph, text string) CaseResult {
	pp := process.NewParsingProcess()
	ok, parsed := pp.Parse(g.Root(), text, nil)
	return CaseResult{
		Text:         text,
		OK:           ok,
		ParsedLength: parsed,
		LastParsed:   pp.LastParsed(),
	}
}

// compileGrammar compiles inline CUE source holding exactly one
// definition under the top-level "grammar" field.
func compileGrammar(src string) (*grammar.Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling grammar: %w", err)
	}

	grammarsVal := v.LookupPath(cue.ParsePath("grammar"))
	if !grammarsVal.Exists() {
		return nil, fmt.Errorf("grammar source has no top-level grammar field")
	}
	iter, err := grammarsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating grammars: %w", err)
	}
	if !iter.Next() {
		return nil, fmt.Errorf("grammar source declares no definitions")
	}
	def, err := grammar.CompileDefinition(iter.Value())
	if err != nil {
		return nil, err
	}
	if iter.Next() {
		return nil, fmt.Errorf("scenario grammars must declare exactly one definition")
	}
	return def, nil
}
