package process

import "github.com/graphtalk/graphtalk/dispatch"

// stateTable keys arbitrary comparable elements (notions, relations,
// wrapped callables) to their private state values.
type stateTable struct {
	items map[any]any
}

func (t *stateTable) Lookup(key any) (any, bool) {
	v, ok := t.items[key]
	return v, ok
}

func (t *stateTable) Put(key, value any) { t.items[key] = value }

func (t *stateTable) Drop(key any) { delete(t.items, key) }

// StatefulProcess gives each visited element a private state value. The
// state is injected into the shared context under KeyState for the
// duration of the element's query and removed right after, so elements
// read their own state but never each other's. set_state and
// clear_state commands are tracked, which makes state speculative along
// with the context.
type StatefulProcess struct {
	*StackingProcess

	states *stateTable
}

// NewStatefulProcess returns a process with per-element state.
func NewStatefulProcess() *StatefulProcess {
	return newStatefulFrom(newStackingFrom(newSharedFrom(NewProcess())))
}

func newStatefulFrom(s *StackingProcess) *StatefulProcess {
	st := &StatefulProcess{StackingProcess: s, states: &stateTable{items: map[any]any{}}}

	// Wrap the query with state injection. The injection itself is
	// deliberately untracked: it is scaffolding for one query, not a
	// recordable mutation.
	baseQuery := s.queryFn
	s.queryFn = func() any {
		state, ok := st.states.Lookup(st.Current())
		if !ok {
			state = map[string]any{}
		}
		st.ctx.Set(dispatch.KeyState, state)
		result := baseQuery()
		st.ctx.Delete(dispatch.KeyState)
		return result
	}

	baseOnHandle := s.onHandleFn
	s.onHandleFn = func(m *dispatch.Message, c *dispatch.Context) {
		baseOnHandle(m, c)
		clear(st.states.items)
	}

	baseTags := s.tagsFn
	s.tagsFn = func() dispatch.Tags {
		tags := baseTags()
		if len(st.states.items) > 0 {
			tags.Add(TagHasStates)
		}
		return tags
	}

	st.On(dispatch.MessageFunc(func(m *dispatch.Message) any {
		return hasCommandKey(m, dispatch.SetState)
	}), dispatch.NullaryFunc(st.doSetState), TagCurrent, dispatch.SpecDict)

	st.On(dispatch.ClearState, dispatch.NullaryFunc(st.doClearState),
		TagCurrent, TagHasStates, dispatch.SpecString)

	return st
}

// State returns the stored state of an element, nil when none.
func (st *StatefulProcess) State(element any) any {
	v, _ := st.states.Lookup(element)
	return v
}

func (st *StatefulProcess) doSetState() any {
	value := st.popCommand(dispatch.SetState)
	st.setState(st.Current(), value)
	return nil
}

func (st *StatefulProcess) doClearState() any {
	st.Message().Pop()
	st.clearState(st.Current())
	return nil
}

// setState records the assignment through the tracker so speculative
// regions can undo it.
func (st *StatefulProcess) setState(element, value any) {
	kind := OpSet
	if _, ok := st.states.Lookup(element); !ok {
		kind = OpAdd
	}
	st.track(NewDictChange(st.states, kind, element, value))
}

func (st *StatefulProcess) clearState(element any) {
	if _, ok := st.states.Lookup(element); ok {
		st.track(NewDictChange(st.states, OpDelete, element, nil))
	}
}
