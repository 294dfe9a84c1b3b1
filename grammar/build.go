package grammar

import (
	"fmt"
	"regexp"

	"github.com/graphtalk/graphtalk/graph"
)

// BuildError reports why a definition could not be turned into a graph.
type BuildError struct {
	Definition string
	Field      string
	Message    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %q: %s: %s", e.Definition, e.Field, e.Message)
}

// Build turns a validated definition into an executable graph. The
// returned graph has its root set to the definition's root notion.
// Definitions that fail Validate are rejected with the first violation.
func Build(def *Definition) (*graph.Graph, error) {
	if errs := def.Validate(); len(errs) > 0 {
		return nil, &BuildError{Definition: def.Name, Field: errs[0].Field, Message: errs[0].Message}
	}

	g := graph.NewGraph(nil)

	nodes := make(map[string]graph.NotionNode, len(def.Notions))
	selects := make(map[string]*graph.SelectiveNotion)
	for _, n := range def.Notions {
		switch n.Kind {
		case "complex":
			nodes[n.Name] = graph.NewComplexNotion(n.Name, g)
		case "select":
			sel := graph.NewSelectiveNotion(n.Name, g)
			nodes[n.Name] = sel
			selects[n.Name] = sel
		default:
			nodes[n.Name] = graph.NewNotion(n.Name, g)
		}
	}

	for i, r := range def.Relations {
		subject, object := nodes[r.Subject], nodes[r.Object]
		edge, err := buildRelation(g, subject, object, &r)
		if err != nil {
			return nil, &BuildError{
				Definition: def.Name,
				Field:      fmt.Sprintf("relations[%d]", i),
				Message:    err.Error(),
			}
		}
		if r.Default {
			selects[r.Subject].SetDefault(edge)
		}
	}

	if err := g.SetRoot(nodes[def.Root]); err != nil {
		return nil, &BuildError{Definition: def.Name, Field: "root", Message: err.Error()}
	}
	return g, nil
}

func buildRelation(g *graph.Graph, subject, object graph.NotionNode, r *RelationDef) (graph.GraphEdge, error) {
	switch r.Kind {
	case "parse":
		cond, err := matchCondition(r.Condition)
		if err != nil {
			return nil, err
		}
		rel := graph.NewParsingRelation(subject, object, cond, r.IgnoreCase, g)
		rel.Optional = r.Optional
		rel.CheckOnly = r.CheckOnly
		return rel, nil

	case "loop":
		return graph.NewLoopRelation(subject, object, loopCondition(r.Condition), g), nil

	default: // "next" or empty
		var cond any
		if r.Condition != nil {
			c, err := matchCondition(r.Condition)
			if err != nil {
				return nil, err
			}
			cond = c
		}
		return graph.NewNextRelation(subject, object, cond, r.IgnoreCase, g), nil
	}
}

// matchCondition resolves a text/regex condition to the value the
// relation constructors expect.
func matchCondition(c *ConditionDef) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("missing condition")
	}
	if c.Regex != "" {
		re, err := regexp.Compile(c.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression: %v", err)
		}
		return re, nil
	}
	if c.Text != "" {
		return c.Text, nil
	}
	return nil, fmt.Errorf("missing condition")
}

// loopCondition resolves the iteration bounds. Validate guarantees
// exactly one group is set.
func loopCondition(c *ConditionDef) any {
	switch {
	case c.Times != nil:
		return *c.Times
	case c.Wildcard != "":
		return c.Wildcard
	default:
		var lo, hi any
		if c.Min != nil {
			lo = *c.Min
		}
		if c.Max != nil {
			hi = *c.Max
		}
		return []any{lo, hi}
	}
}
