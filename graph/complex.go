package graph

import "github.com/graphtalk/graphtalk/dispatch"

// ComplexNotion owns outgoing relations. When asked to move forward it
// replies with its single relation, or with the whole list when there
// is more than one. Membership is maintained from relation subject
// notifications, never by direct mutation.
type ComplexNotion struct {
	Notion
	relations []GraphEdge

	// Seams overridden by SelectiveNotion.
	forwardFn  func(m *dispatch.Message, c *dispatch.Context) any
	relationFn func(c *dispatch.Context) any
}

// NewComplexNotion creates an empty complex notion.
func NewComplexNotion(name string, owner any) *ComplexNotion {
	n := &ComplexNotion{}
	n.initComplex(n, name, owner)
	return n
}

func (n *ComplexNotion) initComplex(self any, name string, owner any) {
	n.initNotion(self, name, owner)
	n.forwardFn = n.doForward
	n.relationFn = n.doRelation

	n.On(setPrefix+"subject", dispatch.ContextFunc(func(c *dispatch.Context) any {
		return n.relationFn(c)
	}))
	n.OnForward(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return n.forwardFn(m, c)
	}))
}

// Relations returns the owned relations in attachment order. The slice
// is shared; callers must not modify it.
func (n *ComplexNotion) Relations() []GraphEdge { return n.relations }

// doRelation reacts to a relation's subject change: detach when the
// notion was the old subject, attach when it is the new one.
func (n *ComplexNotion) doRelation(c *dispatch.Context) any {
	rel, ok := c.Get(dispatch.KeySender).(GraphEdge)
	if !ok {
		return nil
	}
	if dispatch.Equal(c.Get(KeyOldValue), n.Self()) {
		if i := indexOfEdge(n.relations, rel); i >= 0 {
			n.relations = append(n.relations[:i], n.relations[i+1:]...)
			return true
		}
		return nil
	}
	if dispatch.Equal(c.Get(KeyNewValue), n.Self()) && indexOfEdge(n.relations, rel) < 0 {
		n.relations = append(n.relations, rel)
		return true
	}
	return nil
}

func (n *ComplexNotion) doForward(m *dispatch.Message, _ *dispatch.Context) any {
	switch len(n.relations) {
	case 0:
		return nil
	case 1:
		return n.relations[0]
	default:
		out := make([]any, len(n.relations))
		for i, r := range n.relations {
			out[i] = r
		}
		return out
	}
}

func indexOfEdge(edges []GraphEdge, rel GraphEdge) int {
	for i, e := range edges {
		if e == rel {
			return i
		}
	}
	return -1
}
