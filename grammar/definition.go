package grammar

import (
	"fmt"
	"regexp"
)

// Notion kinds accepted in definitions.
var ValidNotionKinds = map[string]bool{
	"notion":  true,
	"complex": true,
	"select":  true,
}

// Relation kinds accepted in definitions.
var ValidRelationKinds = map[string]bool{
	"next":  true,
	"parse": true,
	"loop":  true,
}

// Definition is the declarative form of a graph: named notions plus the
// relations wiring them, with one notion marked as the root.
type Definition struct {
	Name      string        `json:"name"`
	Root      string        `json:"root"`
	Notions   []NotionDef   `json:"notions"`
	Relations []RelationDef `json:"relations"`
}

// NotionDef declares one node. Kind defaults to "notion".
type NotionDef struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// RelationDef declares one edge from Subject to Object.
type RelationDef struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Kind    string `json:"kind"`

	Condition *ConditionDef `json:"condition,omitempty"`

	// Parse options.
	IgnoreCase bool `json:"ignoreCase,omitempty"`
	Optional   bool `json:"optional,omitempty"`
	CheckOnly  bool `json:"checkOnly,omitempty"`

	// Default marks the fallback case of a select subject.
	Default bool `json:"default,omitempty"`
}

// ConditionDef is the declarative condition of a relation. Exactly one
// of its groups applies: Text/Regex gate parse and next relations,
// Times/Min/Max/Wildcard shape loops.
type ConditionDef struct {
	Text  string `json:"text,omitempty"`
	Regex string `json:"regex,omitempty"`

	Times    *int   `json:"times,omitempty"`
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
	Wildcard string `json:"wildcard,omitempty"`
}

// ValidationError reports one rule violation with the field path that
// broke it.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the definition against structural rules. Returns all
// errors, not fail-fast.
func (d *Definition) Validate() []ValidationError {
	var errs []ValidationError

	if d.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if len(d.Notions) == 0 {
		errs = append(errs, ValidationError{Field: "notions", Message: "at least one notion is required"})
	}

	names := make(map[string]string, len(d.Notions))
	for i, n := range d.Notions {
		field := fmt.Sprintf("notions[%d]", i)
		if n.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "notion name is required"})
			continue
		}
		if _, dup := names[n.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate notion name: %q", n.Name),
			})
		}
		kind := n.Kind
		if kind == "" {
			kind = "notion"
		}
		if !ValidNotionKinds[kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("invalid kind %q, must be one of: notion, complex, select", n.Kind),
			})
		}
		names[n.Name] = kind
	}

	if d.Root == "" {
		errs = append(errs, ValidationError{Field: "root", Message: "root is required"})
	} else if _, ok := names[d.Root]; !ok && len(names) > 0 {
		errs = append(errs, ValidationError{
			Field:   "root",
			Message: fmt.Sprintf("root names an undefined notion: %q", d.Root),
		})
	}

	for i, r := range d.Relations {
		field := fmt.Sprintf("relations[%d]", i)

		for _, end := range []struct{ field, name string }{
			{field + ".subject", r.Subject},
			{field + ".object", r.Object},
		} {
			if end.name == "" {
				errs = append(errs, ValidationError{Field: end.field, Message: "notion name is required"})
			} else if _, ok := names[end.name]; !ok {
				errs = append(errs, ValidationError{
					Field:   end.field,
					Message: fmt.Sprintf("undefined notion: %q", end.name),
				})
			}
		}

		kind := r.Kind
		if kind == "" {
			kind = "next"
		}
		if !ValidRelationKinds[kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("invalid kind %q, must be one of: next, parse, loop", r.Kind),
			})
			continue
		}

		switch kind {
		case "parse":
			if r.Condition == nil || (r.Condition.Text == "" && r.Condition.Regex == "") {
				errs = append(errs, ValidationError{
					Field:   field + ".condition",
					Message: "parse relations need a text or regex condition",
				})
			}
		case "loop":
			if err := validateLoopCondition(field, r.Condition); err != nil {
				errs = append(errs, *err)
			}
		}
		if r.Condition != nil {
			errs = append(errs, validateConditionShape(field+".condition", kind, r.Condition)...)
		}

		if r.Default && names[r.Subject] != "select" {
			errs = append(errs, ValidationError{
				Field:   field + ".default",
				Message: "default applies only to relations of a select notion",
			})
		}
	}

	return errs
}

func validateLoopCondition(field string, c *ConditionDef) *ValidationError {
	if c == nil {
		return &ValidationError{
			Field:   field + ".condition",
			Message: "loop relations need times, min/max or a wildcard",
		}
	}
	set := 0
	if c.Times != nil {
		set++
	}
	if c.Min != nil || c.Max != nil {
		set++
	}
	if c.Wildcard != "" {
		set++
	}
	if set == 0 {
		return &ValidationError{
			Field:   field + ".condition",
			Message: "loop relations need times, min/max or a wildcard",
		}
	}
	if set > 1 {
		return &ValidationError{
			Field:   field + ".condition",
			Message: "times, min/max and wildcard are mutually exclusive",
		}
	}
	if c.Wildcard != "" && c.Wildcard != "*" && c.Wildcard != "?" && c.Wildcard != "+" {
		return &ValidationError{
			Field:   field + ".condition.wildcard",
			Message: fmt.Sprintf("invalid wildcard %q, must be *, ? or +", c.Wildcard),
		}
	}
	return nil
}

func validateConditionShape(field, kind string, c *ConditionDef) []ValidationError {
	var errs []ValidationError
	if c.Text != "" && c.Regex != "" {
		errs = append(errs, ValidationError{Field: field, Message: "text and regex are mutually exclusive"})
	}
	if c.Regex != "" {
		if _, err := regexp.Compile(c.Regex); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".regex",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}
	if kind != "loop" && (c.Times != nil || c.Min != nil || c.Max != nil || c.Wildcard != "") {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("iteration bounds apply only to loop relations, not %q", kind),
		})
	}
	return errs
}
