package dispatch

// Event wraps the action run when a condition matches. Optional pre and
// post hooks may veto or replace the outcome: a hook that returns a
// non-nil result short-circuits, and what it returns is reported instead
// of the main action's result.
type Event struct {
	Access

	pre  *Event
	post *Event
}

// NewEvent wraps value (an Abstract, a callable shape, or a constant)
// as an event. An *Event passes through unchanged.
func NewEvent(value any) *Event {
	if e, ok := value.(*Event); ok {
		return e
	}
	return &Event{Access: *NewAccess(value)}
}

// Pre returns the pre hook, nil when unset.
func (e *Event) Pre() *Event { return e.pre }

// SetPre installs value as the pre hook; nil removes it.
func (e *Event) SetPre(value any) {
	if value == nil {
		e.pre = nil
		return
	}
	e.pre = NewEvent(value)
}

// Post returns the post hook, nil when unset.
func (e *Event) Post() *Event { return e.post }

// SetPost installs value as the post hook; nil removes it.
func (e *Event) SetPost(value any) {
	if value == nil {
		e.post = nil
		return
	}
	e.post = NewEvent(value)
}

// Run executes pre hook, action and post hook in order. It returns the
// effective result plus the payload of whichever event produced it, so
// the caller can tell a hook's verdict from the action's.
//
// The main action's result is published to the post hook under
// KeyResult before the hook runs.
func (e *Event) Run(m *Message, c *Context) (result, source any) {
	if e.pre != nil {
		if r, src := e.pre.Run(m, c); r != nil {
			return r, src
		}
	}
	result = e.Call(m, c)
	if e.post != nil {
		c.Set(KeyResult, result)
		if r, src := e.post.Run(m, c); r != nil {
			return r, src
		}
	}
	return result, e.Value()
}
