package graph

// Builder assembles a graph by chaining. It keeps a cursor on the last
// element added: adding a node to a dangling relation sets the
// relation's object, adding a relation under a complex notion sets the
// relation's subject. Structural misuse panics with a *StructureError;
// building is programmer territory, not input handling.
type Builder struct {
	graph   *Graph
	current any
}

// NewBuilder starts building. target may be nil (a fresh unnamed
// graph), a root name (a fresh graph rooted at a ComplexNotion), or an
// existing *Graph.
func NewBuilder(target any) *Builder {
	b := &Builder{}
	switch t := target.(type) {
	case nil:
		b.graph = NewGraph(nil)
	case string:
		b.graph = NewNamedGraph(t, nil)
		b.current = b.graph.Root()
	case *Graph:
		b.graph = t
		b.current = t.Root()
	default:
		panic(&StructureError{Op: "build", Element: target, Reason: "unsupported build target"})
	}
	return b
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *Graph { return b.graph }

// Current returns the cursor element.
func (b *Builder) Current() any { return b.current }

// Attach inserts a prebuilt element at the cursor and moves the cursor
// to it.
func (b *Builder) Attach(element any) *Builder {
	switch el := element.(type) {
	case GraphEdge:
		host, ok := b.current.(complexHost)
		if !ok {
			panic(&StructureError{Op: "attach", Element: element, Reason: "relation needs a complex notion cursor"})
		}
		if el.Subject() == nil {
			el.SetSubject(host)
		}
	case GraphNode:
		if rel, ok := b.current.(GraphEdge); ok && rel.Object() == nil {
			rel.SetObject(el)
		}
	default:
		panic(&StructureError{Op: "attach", Element: element, Reason: "not a graph element"})
	}
	b.current = element
	return b
}

type complexHost interface {
	NotionNode
	Relations() []GraphEdge
}

// Notion adds a plain named notion.
func (b *Builder) Notion(name string) *Builder {
	return b.Attach(NewNotion(name, b.graph))
}

// Complex adds a ComplexNotion.
func (b *Builder) Complex(name string) *Builder {
	return b.Attach(NewComplexNotion(name, b.graph))
}

// Select adds a SelectiveNotion.
func (b *Builder) Select(name string) *Builder {
	return b.Attach(NewSelectiveNotion(name, b.graph))
}

// Act adds an ActionNotion running action.
func (b *Builder) Act(name string, action any) *Builder {
	return b.Attach(NewActionNotion(name, action, b.graph))
}

// NextRel adds a NextRelation from the cursor; object may be nil and
// filled in by the next node added.
func (b *Builder) NextRel(condition, object any, ignoreCase bool) *Builder {
	return b.Attach(NewNextRelation(nil, object, condition, ignoreCase, b.graph))
}

// ActRel adds an ActionRelation from the cursor.
func (b *Builder) ActRel(action, object any) *Builder {
	return b.Attach(NewActionRelation(nil, object, action, b.graph))
}

// ParseRel adds a ParsingRelation from the cursor.
func (b *Builder) ParseRel(condition, object any, ignoreCase, optional bool) *Builder {
	rel := NewParsingRelation(nil, object, condition, ignoreCase, b.graph)
	rel.Optional = optional
	return b.Attach(rel)
}

// LoopRel adds a LoopRelation from the cursor.
func (b *Builder) LoopRel(condition, object any) *Builder {
	return b.Attach(NewLoopRelation(nil, object, condition, b.graph))
}

// CheckOnly marks the cursor parsing relation as non-consuming.
func (b *Builder) CheckOnly(v bool) *Builder {
	rel, ok := b.current.(*ParsingRelation)
	if !ok {
		panic(&StructureError{Op: "check only", Element: b.current, Reason: "cursor is not a parsing relation"})
	}
	rel.CheckOnly = v
	return b
}

// Default marks the cursor relation as its selective subject's default.
func (b *Builder) Default() *Builder {
	rel, ok := b.current.(GraphEdge)
	if !ok {
		panic(&StructureError{Op: "default", Element: b.current, Reason: "cursor is not a relation"})
	}
	sel, ok := rel.Subject().(*SelectiveNotion)
	if !ok {
		panic(&StructureError{Op: "default", Element: b.current, Reason: "subject is not a selective notion"})
	}
	sel.SetDefault(rel)
	return b
}

// SubGraph nests a fresh graph rooted at name under the cursor, moving
// the cursor to the new root.
func (b *Builder) SubGraph(name string) *Builder {
	sub := NewNamedGraph(name, b.graph)
	if rel, ok := b.current.(GraphEdge); ok && rel.Object() == nil {
		rel.SetObject(sub)
	}
	b.graph = sub
	b.current = sub.Root()
	return b
}

// Pop moves the cursor up to the nearest enclosing complex notion:
// from a relation to its subject, from a node through its incoming
// relation. Panics when there is nowhere to go.
func (b *Builder) Pop() *Builder {
	cur := b.current
	for cur != nil {
		if rel, ok := cur.(GraphEdge); ok {
			cur = rel.Subject()
		} else if node, ok := cur.(GraphNode); ok {
			cur = incomingSubject(b.graph, node)
		} else {
			break
		}
		if host, ok := cur.(complexHost); ok {
			b.current = host
			return b
		}
	}
	panic(&StructureError{Op: "pop", Element: b.current, Reason: "no enclosing complex notion"})
}

// At moves the cursor to an arbitrary element.
func (b *Builder) At(element any) *Builder {
	b.current = element
	return b
}

func incomingSubject(g *Graph, node GraphNode) any {
	rel := g.FindRelation(EdgeCriteria{Object: node})
	if rel == nil {
		return nil
	}
	return rel.Subject()
}
