package graph

import (
	"fmt"
	"regexp"

	"github.com/graphtalk/graphtalk/dispatch"
)

// Graph owns notions and relations and answers a forward move with its
// root. Membership is kept consistent from ownership notifications: the
// graph never reaches into elements, elements report their owner
// changes to it.
type Graph struct {
	Element

	root      NotionNode
	notions   []GraphNode
	relations []GraphEdge
}

// NewGraph creates an empty graph, optionally owned by a parent graph.
func NewGraph(owner any) *Graph {
	g := &Graph{}
	g.bind(g)

	g.On(setPrefix+"owner", dispatch.ContextFunc(g.doElement))
	g.OnForward(dispatch.NullaryFunc(func() any {
		if g.root == nil {
			return nil
		}
		return g.root
	}))

	g.SetOwner(owner)
	return g
}

// NewNamedGraph creates a graph rooted at a fresh ComplexNotion with
// the given name.
func NewNamedGraph(name string, owner any) *Graph {
	g := NewGraph(owner)
	root := NewComplexNotion(name, g)
	// The root is brand new and owned here, so this cannot fail.
	_ = g.SetRoot(root)
	return g
}

// Root returns the root notion, nil when unset.
func (g *Graph) Root() NotionNode { return g.root }

// SetRoot installs node as the root. The node must be a notion owned by
// this graph and different from the current root.
func (g *Graph) SetRoot(node NotionNode) error {
	if dispatch.Equal(g.root, node) {
		return &StructureError{Op: "set root", Element: node, Reason: "already the root"}
	}
	if node != nil && !dispatch.Equal(node.Owner(), g.Self()) {
		return &StructureError{Op: "set root", Element: node, Reason: "not owned by this graph"}
	}
	var old any
	if g.root != nil {
		old = g.root
	}
	var next any
	if node != nil {
		next = node
	}
	g.ChangeProperty("root", old, next, func() { g.root = node })
	return nil
}

// Name returns the root's name; a rootless graph has none.
func (g *Graph) Name() string {
	if g.root == nil {
		return ""
	}
	return g.root.Name()
}

// SetName renames the root.
func (g *Graph) SetName(name string) {
	if g.root != nil {
		g.root.(interface{ SetName(string) }).SetName(name)
	}
}

// Notions returns all owned nodes in attachment order.
func (g *Graph) Notions() []GraphNode { return g.notions }

// Relations returns all owned edges in attachment order.
func (g *Graph) Relations() []GraphEdge { return g.relations }

// FindNotions returns the owned nodes matching criteria, which may be
// an exact name, a *regexp.Regexp matched against the start of the
// name, or a func(GraphNode) int returning a rank (negative for no
// match). Regex and callable matches return only the best-ranked nodes.
func (g *Graph) FindNotions(criteria any) []GraphNode {
	rank := nodeRanker(criteria)
	if rank == nil {
		return nil
	}
	return searchBest(g.notions, rank)
}

// FindNotion returns the first match of FindNotions, nil when none.
func (g *Graph) FindNotion(criteria any) GraphNode {
	found := g.FindNotions(criteria)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// EdgeCriteria matches relations by endpoint. A nil field matches
// anything; relations matching both endpoints outrank ones matching a
// single endpoint.
type EdgeCriteria struct {
	Subject any
	Object  any
}

// FindRelations returns the owned edges matching criteria: an
// EdgeCriteria value, or a func(GraphEdge) int rank.
func (g *Graph) FindRelations(criteria any) []GraphEdge {
	rank := edgeRanker(criteria)
	if rank == nil {
		return nil
	}
	return searchBest(g.relations, rank)
}

// FindRelation returns the first match of FindRelations, nil when none.
func (g *Graph) FindRelation(criteria any) GraphEdge {
	found := g.FindRelations(criteria)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// doElement reacts to ownership changes, attaching or detaching the
// sender. A detached root leaves the graph rootless.
func (g *Graph) doElement(c *dispatch.Context) any {
	sender := c.Get(dispatch.KeySender)
	joining := dispatch.Equal(c.Get(KeyNewValue), g.Self())
	leaving := dispatch.Equal(c.Get(KeyOldValue), g.Self())

	switch el := sender.(type) {
	case GraphEdge:
		if leaving {
			if i := indexOfEdge(g.relations, el); i >= 0 {
				g.relations = append(g.relations[:i], g.relations[i+1:]...)
				return true
			}
			return nil
		}
		if joining && indexOfEdge(g.relations, el) < 0 {
			g.relations = append(g.relations, el)
			return true
		}
	case GraphNode:
		if leaving {
			if i := indexOfNode(g.notions, el); i >= 0 {
				g.notions = append(g.notions[:i], g.notions[i+1:]...)
				if g.root != nil && dispatch.Equal(g.root, el) {
					g.root = nil
				}
				return true
			}
			return nil
		}
		if joining && indexOfNode(g.notions, el) < 0 {
			g.notions = append(g.notions, el)
			return true
		}
	}
	return nil
}

func (g *Graph) String() string { return fmt.Sprintf("{%s}", g.Name()) }

func nodeRanker(criteria any) func(GraphNode) int {
	switch crit := criteria.(type) {
	case func(GraphNode) int:
		return crit
	case *regexp.Regexp:
		return func(n GraphNode) int {
			loc := crit.FindStringIndex(n.Name())
			if loc == nil || loc[0] != 0 {
				return dispatch.NoRank
			}
			return loc[1]
		}
	case string:
		return func(n GraphNode) int {
			if n.Name() != crit {
				return dispatch.NoRank
			}
			return len(crit)
		}
	}
	return nil
}

func edgeRanker(criteria any) func(GraphEdge) int {
	switch crit := criteria.(type) {
	case func(GraphEdge) int:
		return crit
	case EdgeCriteria:
		return func(e GraphEdge) int {
			rank := dispatch.NoRank
			if crit.Subject != nil && dispatch.Equal(e.Subject(), crit.Subject) {
				rank++
			}
			if crit.Object != nil && dispatch.Equal(e.Object(), crit.Object) {
				rank++
			}
			return rank
		}
	}
	return nil
}

// searchBest keeps the elements sharing the highest non-negative rank,
// preserving order.
func searchBest[T any](items []T, rank func(T) int) []T {
	best := dispatch.NoRank
	ranks := make([]int, len(items))
	for i, item := range items {
		ranks[i] = rank(item)
		if ranks[i] > best {
			best = ranks[i]
		}
	}
	if best < 0 {
		return nil
	}
	var out []T
	for i, item := range items {
		if ranks[i] == best {
			out = append(out, item)
		}
	}
	return out
}

func indexOfNode(nodes []GraphNode, n GraphNode) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return -1
}
