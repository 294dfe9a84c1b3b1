package process

import "github.com/graphtalk/graphtalk/dispatch"

// contextTable adapts the process's shared context to the Table
// interface. It reads the context through the process so the same
// table instance stays valid when "new" swaps the context out, which
// keeps consecutive changes mergeable.
type contextTable struct {
	p *Process
}

func (t *contextTable) Lookup(key any) (any, bool) {
	return t.p.ctx.Lookup(key.(string))
}

func (t *contextTable) Put(key, value any) {
	t.p.ctx.Set(key.(string), value)
}

func (t *contextTable) Drop(key any) {
	t.p.ctx.Delete(key.(string))
}

// StackingProcess adds speculative regions. push_context opens a
// region; every context mutation inside it is recorded; pop_context
// rolls the region back exactly, forget_context commits it. Regions
// nest, innermost first.
type StackingProcess struct {
	*SharedProcess

	regions []*ChangeGroup
	table   *contextTable
}

// NewStackingProcess returns a process with transactional context
// regions.
func NewStackingProcess() *StackingProcess {
	return newStackingFrom(newSharedFrom(NewProcess()))
}

func newStackingFrom(sp *SharedProcess) *StackingProcess {
	s := &StackingProcess{SharedProcess: sp}
	s.table = &contextTable{p: sp.Process}

	// Route every shared-context mutation through the tracker.
	sp.ctxAdd = func(key string, value any) {
		s.track(NewDictChange(s.table, OpAdd, key, value))
	}
	sp.ctxSet = func(key string, value any) {
		s.track(NewDictChange(s.table, OpSet, key, value))
	}
	sp.ctxDelete = func(key string) {
		s.track(NewDictChange(s.table, OpDelete, key, nil))
	}

	baseOnHandle := sp.onHandleFn
	sp.onHandleFn = func(m *dispatch.Message, c *dispatch.Context) {
		baseOnHandle(m, c)
		s.regions = s.regions[:0]
	}

	baseTags := sp.tagsFn
	sp.tagsFn = func() dispatch.Tags {
		tags := baseTags()
		if len(s.regions) > 0 {
			tags.Add(TagTracking)
		}
		return tags
	}

	s.On(dispatch.PushContext, dispatch.NullaryFunc(s.doPushContext), dispatch.SpecString)
	s.On(dispatch.PopContext, dispatch.NullaryFunc(s.doPopContext), TagTracking, dispatch.SpecString)
	s.On(dispatch.ForgetContext, dispatch.NullaryFunc(s.doForgetContext), TagTracking, dispatch.SpecString)

	return s
}

// track records op in the innermost open region, or applies it directly
// when no region is open.
func (s *StackingProcess) track(op *DictChange) {
	if n := len(s.regions); n > 0 {
		s.regions[n-1].Add(op)
		return
	}
	op.Do()
}

// Tracking reports whether a speculative region is open.
func (s *StackingProcess) Tracking() bool { return len(s.regions) > 0 }

func (s *StackingProcess) doPushContext() any {
	s.Message().Pop()
	s.regions = append(s.regions, NewChangeGroup())
	return nil
}

func (s *StackingProcess) doPopContext() any {
	s.Message().Pop()
	n := len(s.regions)
	region := s.regions[n-1]
	s.regions = s.regions[:n-1]
	region.Undo()
	return nil
}

func (s *StackingProcess) doForgetContext() any {
	s.Message().Pop()
	s.regions = s.regions[:len(s.regions)-1]
	return nil
}
