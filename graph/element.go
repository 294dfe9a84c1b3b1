package graph

import "github.com/graphtalk/graphtalk/dispatch"

// Property-change notifications. When an element's structural property
// changes, the interested party (old owner, new owner, the notion a
// relation points at) receives a "set_<property>" message carrying the
// sender and both values in the context.
const (
	KeyOldValue = "old-value"
	KeyNewValue = "new-value"
)

const setPrefix = "set_"

// GraphNode is anything that can sit at the end of a relation: a Notion
// of any kind, or a whole sub-Graph standing in for its root.
type GraphNode interface {
	dispatch.Abstract
	Name() string
	Owner() any
}

// NotionNode is a GraphNode that really is a notion. Graph roots must be
// notions, not nested graphs.
type NotionNode interface {
	GraphNode
	notionMarker()
}

// GraphEdge is a directed, possibly conditional connection between a
// subject and an object.
type GraphEdge interface {
	dispatch.Abstract
	Subject() any
	SetSubject(v any)
	Object() any
	SetObject(v any)
	Owner() any
}

// Element is the shared base of notions, relations and graphs: a
// Handler plus an owner and the property-change protocol.
type Element struct {
	dispatch.Handler
	owner any

	// canForward is the overridable gate used by OnForward
	// registrations; subtypes that suppress forwarding mid-state
	// (SelectiveNotion) replace it.
	canForward  func(m *dispatch.Message, c *dispatch.Context) any
	canBackward func(m *dispatch.Message, c *dispatch.Context) any

	forwardConds  []*dispatch.Condition
	backwardConds []*dispatch.Condition
}

func (e *Element) bind(self any) {
	e.Bind(self)
	e.canForward = func(m *dispatch.Message, _ *dispatch.Context) any { return IsForward(m) }
	e.canBackward = func(m *dispatch.Message, _ *dispatch.Context) any { return IsBackward(m) }
}

// Owner returns the element's owner, usually a *Graph.
func (e *Element) Owner() any { return e.owner }

// SetOwner reassigns the element, notifying old and new owner.
func (e *Element) SetOwner(v any) {
	e.ChangeProperty("owner", e.owner, v, func() { e.owner = v })
}

// ChangeProperty implements the attach/detach protocol: if the value is
// unchanged nothing happens; otherwise the old value is notified (when
// it can answer), the assignment runs, and the new value is notified.
// Reports whether the property actually changed.
func (e *Element) ChangeProperty(name string, old, new any, assign func()) bool {
	if dispatch.Equal(old, new) {
		return false
	}

	msg := dispatch.NewMessage(setPrefix + name)
	ctx := dispatch.NewContext()
	ctx.Set(dispatch.KeySender, e.Self())
	ctx.Set(KeyOldValue, old)
	ctx.Set(KeyNewValue, new)

	if a, ok := old.(dispatch.Abstract); ok {
		a.Answer(msg, ctx)
	}
	assign()
	if a, ok := new.(dispatch.Abstract); ok {
		a.Answer(msg, ctx)
	}
	return true
}

// OnForward registers event to run when the element is asked to move
// forward. The gate is read through the overridable canForward seam.
func (e *Element) OnForward(event any) {
	cond := dispatch.NewCondition(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return e.canForward(m, c)
	}))
	e.forwardConds = append(e.forwardConds, cond)
	e.OnAccess(cond, dispatch.NewEvent(event))
}

// OffForward removes every forward registration.
func (e *Element) OffForward() {
	for _, c := range e.forwardConds {
		e.OffCondition(c)
	}
	e.forwardConds = nil
}

// OnBackward and OffBackward mirror the forward pair for rewinding
// walks.
func (e *Element) OnBackward(event any) {
	cond := dispatch.NewCondition(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return e.canBackward(m, c)
	}))
	e.backwardConds = append(e.backwardConds, cond)
	e.OnAccess(cond, dispatch.NewEvent(event))
}

func (e *Element) OffBackward() {
	for _, c := range e.backwardConds {
		e.OffCondition(c)
	}
	e.backwardConds = nil
}

// IsForward reports whether the message head asks the element to move
// on.
func IsForward(m *dispatch.Message) bool {
	return m != nil && !m.IsEmpty() && dispatch.IsForwardToken(m.Head())
}

// IsBackward reports whether the message head rewinds: an explicit
// "previous" or one of the interrupt tokens.
func IsBackward(m *dispatch.Message) bool {
	return m != nil && !m.IsEmpty() && dispatch.IsBackwardToken(m.Head())
}
