package process

import "github.com/graphtalk/graphtalk/dispatch"

// SharedProcess adds the context commands: elements mutate the shared
// context by answering command maps instead of touching it directly, so
// outer layers can observe (and record) every mutation through the
// ctxAdd/ctxSet/ctxDelete seams.
type SharedProcess struct {
	*Process

	ctxAdd    func(key string, value any)
	ctxSet    func(key string, value any)
	ctxDelete func(key string)
}

// NewSharedProcess returns a process understanding add_context,
// update_context and delete_context.
func NewSharedProcess() *SharedProcess {
	return newSharedFrom(NewProcess())
}

func newSharedFrom(p *Process) *SharedProcess {
	sp := &SharedProcess{Process: p}
	sp.ctxAdd = func(key string, value any) { p.ctx.Set(key, value) }
	sp.ctxSet = func(key string, value any) { p.ctx.Set(key, value) }
	sp.ctxDelete = func(key string) { p.ctx.Delete(key) }

	sp.On(dispatch.MessageFunc(func(m *dispatch.Message) any {
		return hasCommandMap(m, dispatch.AddContext)
	}), dispatch.NullaryFunc(sp.doAddContext), dispatch.SpecDict)

	sp.On(dispatch.MessageFunc(func(m *dispatch.Message) any {
		return hasCommandMap(m, dispatch.UpdateContext)
	}), dispatch.NullaryFunc(sp.doUpdateContext), dispatch.SpecDict)

	sp.On(dispatch.MessageFunc(func(m *dispatch.Message) any {
		return hasCommandKey(m, dispatch.DeleteContext)
	}), dispatch.NullaryFunc(sp.doDeleteContext), dispatch.SpecDict)

	return sp
}

// popCommand removes and returns the named entry of the head command
// map, leaving the rest of the map for other commands.
func (sp *SharedProcess) popCommand(name string) any {
	head, _ := sp.Message().Head().(map[string]any)
	value := head[name]
	delete(head, name)
	return value
}

// doAddContext sets only the keys not already present.
func (sp *SharedProcess) doAddContext() any {
	add, _ := sp.popCommand(dispatch.AddContext).(map[string]any)
	for k, v := range add {
		if !sp.ctx.Has(k) {
			sp.ctxAdd(k, v)
		}
	}
	return nil
}

// doUpdateContext overwrites the given keys.
func (sp *SharedProcess) doUpdateContext() any {
	update, _ := sp.popCommand(dispatch.UpdateContext).(map[string]any)
	for k, v := range update {
		sp.ctxSet(k, v)
	}
	return nil
}

// doDeleteContext removes one key or a list of keys; missing keys are
// ignored.
func (sp *SharedProcess) doDeleteContext() any {
	value := sp.popCommand(dispatch.DeleteContext)
	switch keys := value.(type) {
	case string:
		sp.deleteIfPresent(keys)
	case []any:
		for _, k := range keys {
			if name, ok := k.(string); ok {
				sp.deleteIfPresent(name)
			}
		}
	}
	return nil
}

func (sp *SharedProcess) deleteIfPresent(key string) {
	if sp.ctx.Has(key) {
		sp.ctxDelete(key)
	}
}

// hasCommandMap reports whether the head is a command map whose named
// entry is itself a map of values.
func hasCommandMap(m *dispatch.Message, name string) bool {
	head, ok := m.Head().(map[string]any)
	if !ok {
		return false
	}
	_, ok = head[name].(map[string]any)
	return ok
}

// hasCommandKey reports whether the head is a command map carrying the
// named entry, whatever its payload.
func hasCommandKey(m *dispatch.Message, name string) bool {
	head, ok := m.Head().(map[string]any)
	if !ok {
		return false
	}
	_, ok = head[name]
	return ok
}
