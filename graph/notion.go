package graph

import "fmt"

// Notion is a named node. On its own it answers nothing; subtypes and
// relations give it behavior.
type Notion struct {
	Element
	name string
}

// NewNotion creates a named notion owned by owner (usually a *Graph,
// may be nil).
func NewNotion(name string, owner any) *Notion {
	n := &Notion{}
	n.initNotion(n, name, owner)
	return n
}

func (n *Notion) initNotion(self any, name string, owner any) {
	n.bind(self)
	n.SetName(name)
	n.SetOwner(owner)
}

// Name returns the notion's name.
func (n *Notion) Name() string { return n.name }

// SetName renames the notion through the property-change protocol, so
// owners watching "set_name" stay consistent.
func (n *Notion) SetName(name string) {
	n.ChangeProperty("name", n.name, name, func() { n.name = name })
}

func (n *Notion) notionMarker() {}

func (n *Notion) String() string { return fmt.Sprintf("%q", n.name) }

// ActionNotion runs a single action when the walk reaches it moving
// forward.
type ActionNotion struct {
	Notion
	action any
}

// NewActionNotion wraps action (a callable shape, an Abstract, or a
// constant reply) as a notion.
func NewActionNotion(name string, action any, owner any) *ActionNotion {
	n := &ActionNotion{}
	n.initNotion(n, name, owner)
	n.SetAction(action)
	return n
}

// Action returns the current action value.
func (n *ActionNotion) Action() any { return n.action }

// SetAction replaces the forward registration with a new action.
func (n *ActionNotion) SetAction(action any) {
	n.OffForward()
	n.action = action
	if action != nil {
		n.OnForward(action)
	}
}
