package graph

import "github.com/graphtalk/graphtalk/dispatch"

// ActionRelation runs an action when passed and then continues to its
// object. The action's result and the object are combined into one
// reply so the process sees both.
type ActionRelation struct {
	Relation
	action *dispatch.Access
}

// NewActionRelation wires subject to object through action (a callable
// shape, an Abstract, or a constant).
func NewActionRelation(subject, object, action any, owner any) *ActionRelation {
	r := &ActionRelation{}
	r.initRelation(r, subject, object, owner)
	r.SetAction(action)
	r.OnForward(dispatch.Func(r.doAct))
	return r
}

// Action returns the raw action value.
func (r *ActionRelation) Action() any { return r.action.Value() }

// SetAction replaces the action.
func (r *ActionRelation) SetAction(action any) {
	r.action = dispatch.AccessOf(action)
}

func (r *ActionRelation) doAct(m *dispatch.Message, c *dispatch.Context) any {
	result := r.action.Call(m, c)

	switch {
	case result != nil && r.Object() != nil:
		return []any{result, r.Object()}
	case result != nil:
		return result
	default:
		return r.Object()
	}
}
