package graph

import "github.com/graphtalk/graphtalk/dispatch"

// KeyCases is the state key under which a SelectiveNotion parks the
// alternatives it has not tried yet.
const KeyCases = "cases"

// SelectiveNotion is a ComplexNotion that treats its relations as
// competing alternatives. On a forward move it evaluates every case,
// keeps the best-ranked candidates, commits to the first one inside a
// speculative region, and on a later error pops that region and retries
// the next candidate. When every candidate is exhausted the error
// propagates; an optional default relation is used when nothing matched
// at all.
type SelectiveNotion struct {
	ComplexNotion
	defaultRel GraphEdge
}

// NewSelectiveNotion creates an empty selective notion.
func NewSelectiveNotion(name string, owner any) *SelectiveNotion {
	n := &SelectiveNotion{}
	n.initComplex(n, name, owner)

	// While mid-selection the plain forward reply is suppressed; retry
	// and finish take over based on stored state.
	n.canForward = n.canSelectForward
	n.forwardFn = n.selectForward
	n.relationFn = n.selectRelation

	n.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return n.canRetry(m, c)
	}), dispatch.ContextFunc(func(c *dispatch.Context) any {
		return n.doRetry(c)
	}))
	n.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return n.canFinish(m, c)
	}), dispatch.NullaryFunc(func() any {
		return n.finishReply()
	}))
	return n
}

// Default returns the fallback relation, nil when unset.
func (n *SelectiveNotion) Default() GraphEdge { return n.defaultRel }

// SetDefault installs rel as the fallback tried when no case matches.
// A relation that does not start at this notion is ignored; nil clears.
func (n *SelectiveNotion) SetDefault(rel GraphEdge) {
	if rel != nil && !dispatch.Equal(rel.Subject(), n.Self()) {
		return
	}
	n.defaultRel = rel
}

func (n *SelectiveNotion) canSelectForward(m *dispatch.Message, c *dispatch.Context) any {
	if dispatch.IsEmpty(c.Get(dispatch.KeyState)) {
		return IsForward(m)
	}
	return nil
}

func (n *SelectiveNotion) canRetry(m *dispatch.Message, c *dispatch.Context) any {
	return !dispatch.IsEmpty(c.Get(dispatch.KeyState)) &&
		dispatch.Equal(m.Head(), dispatch.Error)
}

func (n *SelectiveNotion) canFinish(m *dispatch.Message, c *dispatch.Context) any {
	return !dispatch.IsEmpty(c.Get(dispatch.KeyState)) && IsForward(m)
}

// selectForward ranks the cases. A single winner is committed directly;
// several winners open a speculative region with the losers parked in
// state. No winner and no default answers error.
func (n *SelectiveNotion) selectForward(m *dispatch.Message, c *dispatch.Context) any {
	reply := n.doForward(m, c)
	if _, multiple := reply.([]any); !multiple {
		return reply
	}

	cases := n.bestCases(m, c)
	if len(cases) == 0 {
		return dispatch.Error
	}

	first, rest := cases[0], cases[1:]
	if len(rest) == 0 {
		return first
	}
	return dispatch.Splice(
		dispatch.PushContext,
		map[string]any{dispatch.SetState: map[string]any{KeyCases: rest}},
		first,
		n.Self(),
	)
}

// bestCases dispatches the message to every non-default relation and
// keeps the results of the highest-ranked matches, in registration
// order. Relations that answered error or did not match are dropped.
func (n *SelectiveNotion) bestCases(m *dispatch.Message, c *dispatch.Context) []any {
	type candidate struct {
		result any
		rank   int
	}

	best := dispatch.NoRank
	var candidates []candidate
	for _, rel := range n.relations {
		if rel == n.defaultRel {
			continue
		}
		h, ok := rel.(dispatch.Handling)
		if !ok {
			continue
		}
		res := h.Handle(m, c)
		if res.Rank < 0 || dispatch.Equal(res.Result, dispatch.Error) {
			continue
		}
		if res.Rank > best {
			best = res.Rank
		}
		candidates = append(candidates, candidate{result: res.Result, rank: res.Rank})
	}

	var out []any
	for _, cand := range candidates {
		if cand.rank == best {
			out = append(out, cand.result)
		}
	}
	if len(out) == 0 && n.defaultRel != nil {
		out = []any{n.defaultRel}
	}
	return out
}

// doRetry rolls back the failed case and commits the next one, or
// finishes with the error still in flight when nothing is left.
func (n *SelectiveNotion) doRetry(c *dispatch.Context) any {
	state, _ := c.Get(dispatch.KeyState).(map[string]any)
	cases, _ := state[KeyCases].([]any)

	if len(cases) > 0 {
		first, rest := cases[0], cases[1:]
		return dispatch.Splice(
			dispatch.PopContext,
			map[string]any{dispatch.SetState: map[string]any{KeyCases: rest}},
			dispatch.PushContext,
			dispatch.Next,
			first,
			n.Self(),
		)
	}
	return n.finishReply()
}

// finishReply commits the speculative region and drops the parked
// state.
func (n *SelectiveNotion) finishReply() any {
	return []any{dispatch.ForgetContext, dispatch.ClearState}
}

// selectRelation keeps the default pointer consistent when relations
// detach.
func (n *SelectiveNotion) selectRelation(c *dispatch.Context) any {
	result := n.doRelation(c)
	if n.defaultRel != nil && indexOfEdge(n.relations, n.defaultRel) < 0 {
		n.defaultRel = nil
	}
	return result
}
