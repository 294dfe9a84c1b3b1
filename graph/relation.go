package graph

import "fmt"

// Relation is the base of every edge: a subject, an object, and the
// property-change notifications that keep both endpoints' bookkeeping
// consistent. Endpoint reassignment notifies the old endpoint before
// the new one, so a ComplexNotion never sees a relation twice.
type Relation struct {
	Element
	subject any
	object  any
}

// NewRelation builds a bare relation. Concrete behavior comes from the
// typed relations (NextRelation and friends); a bare relation answers
// nothing.
func NewRelation(subject, object, owner any) *Relation {
	r := &Relation{}
	r.initRelation(r, subject, object, owner)
	return r
}

func (r *Relation) initRelation(self any, subject, object, owner any) {
	r.bind(self)
	r.SetOwner(owner)
	r.SetSubject(subject)
	r.SetObject(object)
}

// Subject returns the edge's source.
func (r *Relation) Subject() any { return r.subject }

// SetSubject repoints the source through the property-change protocol.
func (r *Relation) SetSubject(v any) {
	r.ChangeProperty("subject", r.subject, v, func() { r.subject = v })
}

// Object returns the edge's target.
func (r *Relation) Object() any { return r.object }

// SetObject repoints the target through the property-change protocol.
func (r *Relation) SetObject(v any) {
	r.ChangeProperty("object", r.object, v, func() { r.object = v })
}

func (r *Relation) String() string {
	return fmt.Sprintf("<%v - %v>", describe(r.subject), describe(r.object))
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "?"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
