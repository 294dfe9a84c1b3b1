package grammar

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// CompileError reports a problem turning a CUE value into a definition,
// with the CUE position when one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileDefinition parses a CUE value into a Definition. The value is
// the grammar struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`grammar: digits: { ... }`)
//	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("grammar.digits")))
//
// The definition's name comes from the struct label. Compilation only
// converts; call Validate on the result for the structural rules.
func CompileDefinition(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "grammar", Message: err.Error(), Pos: v.Pos()}
	}

	def := &Definition{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Name = labels[len(labels)-1].String()
	}

	rootVal := v.LookupPath(cue.ParsePath("root"))
	if rootVal.Exists() {
		root, err := rootVal.String()
		if err != nil {
			return nil, &CompileError{Field: "root", Message: "root must be a string", Pos: rootVal.Pos()}
		}
		def.Root = root
	}

	notions, err := compileNotions(v)
	if err != nil {
		return nil, err
	}
	def.Notions = notions

	relations, err := compileRelations(v)
	if err != nil {
		return nil, err
	}
	def.Relations = relations

	return def, nil
}

// compileNotions reads the notion map. Each entry may be a bare kind
// string or a struct with a kind field; a missing kind means "notion".
func compileNotions(v cue.Value) ([]NotionDef, error) {
	notionsVal := v.LookupPath(cue.ParsePath("notion"))
	if !notionsVal.Exists() {
		return nil, nil
	}
	iter, err := notionsVal.Fields()
	if err != nil {
		return nil, &CompileError{Field: "notion", Message: err.Error(), Pos: notionsVal.Pos()}
	}

	var out []NotionDef
	for iter.Next() {
		name := iter.Label()
		entry := iter.Value()

		n := NotionDef{Name: name}
		if kind, err := entry.String(); err == nil {
			n.Kind = kind
		} else {
			kindVal := entry.LookupPath(cue.ParsePath("kind"))
			if kindVal.Exists() {
				kind, err := kindVal.String()
				if err != nil {
					return nil, &CompileError{
						Field:   "notion." + name + ".kind",
						Message: "kind must be a string",
						Pos:     kindVal.Pos(),
					}
				}
				n.Kind = kind
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func compileRelations(v cue.Value) ([]RelationDef, error) {
	relationsVal := v.LookupPath(cue.ParsePath("relation"))
	if !relationsVal.Exists() {
		return nil, nil
	}
	iter, err := relationsVal.List()
	if err != nil {
		return nil, &CompileError{Field: "relation", Message: "relation must be a list", Pos: relationsVal.Pos()}
	}

	var out []RelationDef
	for i := 0; iter.Next(); i++ {
		rel, err := compileRelation(iter.Value(), fmt.Sprintf("relation[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, *rel)
	}
	return out, nil
}

func compileRelation(v cue.Value, field string) (*RelationDef, error) {
	rel := &RelationDef{}

	var err error
	if rel.Subject, err = stringField(v, "subject"); err != nil {
		return nil, &CompileError{Field: field + ".subject", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.Object, err = stringField(v, "object"); err != nil {
		return nil, &CompileError{Field: field + ".object", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.Kind, err = stringField(v, "kind"); err != nil {
		return nil, &CompileError{Field: field + ".kind", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.IgnoreCase, err = boolField(v, "ignoreCase"); err != nil {
		return nil, &CompileError{Field: field + ".ignoreCase", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.Optional, err = boolField(v, "optional"); err != nil {
		return nil, &CompileError{Field: field + ".optional", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.CheckOnly, err = boolField(v, "checkOnly"); err != nil {
		return nil, &CompileError{Field: field + ".checkOnly", Message: err.Error(), Pos: v.Pos()}
	}
	if rel.Default, err = boolField(v, "default"); err != nil {
		return nil, &CompileError{Field: field + ".default", Message: err.Error(), Pos: v.Pos()}
	}

	cond, err := compileCondition(v, field)
	if err != nil {
		return nil, err
	}
	rel.Condition = cond
	return rel, nil
}

// compileCondition gathers the condition fields. They live flat on the
// relation struct, which keeps simple grammars terse:
//
//	{subject: "root", object: "digit", kind: "parse", regex: #"\d+"#}
func compileCondition(v cue.Value, field string) (*ConditionDef, error) {
	cond := &ConditionDef{}
	present := false

	var err error
	if cond.Text, err = stringField(v, "text"); err != nil {
		return nil, &CompileError{Field: field + ".text", Message: err.Error(), Pos: v.Pos()}
	}
	if cond.Regex, err = stringField(v, "regex"); err != nil {
		return nil, &CompileError{Field: field + ".regex", Message: err.Error(), Pos: v.Pos()}
	}
	if cond.Wildcard, err = stringField(v, "wildcard"); err != nil {
		return nil, &CompileError{Field: field + ".wildcard", Message: err.Error(), Pos: v.Pos()}
	}
	present = cond.Text != "" || cond.Regex != "" || cond.Wildcard != ""

	for _, num := range []struct {
		name string
		dst  **int
	}{
		{"times", &cond.Times},
		{"min", &cond.Min},
		{"max", &cond.Max},
	} {
		val := v.LookupPath(cue.ParsePath(num.name))
		if !val.Exists() {
			continue
		}
		n, err := val.Int64()
		if err != nil {
			return nil, &CompileError{
				Field:   field + "." + num.name,
				Message: "must be an integer",
				Pos:     val.Pos(),
			}
		}
		i := int(n)
		*num.dst = &i
		present = true
	}

	if !present {
		return nil, nil
	}
	return cond, nil
}

func stringField(v cue.Value, name string) (string, error) {
	val := v.LookupPath(cue.ParsePath(name))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", fmt.Errorf("must be a string")
	}
	return s, nil
}

func boolField(v cue.Value, name string) (bool, error) {
	val := v.LookupPath(cue.ParsePath(name))
	if !val.Exists() {
		return false, nil
	}
	b, err := val.Bool()
	if err != nil {
		return false, fmt.Errorf("must be a bool")
	}
	return b, nil
}
