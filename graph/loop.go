package graph

import (
	"math"

	"github.com/graphtalk/graphtalk/dispatch"
)

// KeyIteration is the state key holding a loop's current iteration
// counter.
const KeyIteration = "i"

const unbounded = math.MaxInt

// LoopRelation repeats its object. The condition picks the flavor:
//
//   - n: exactly n iterations
//   - []any{lo, hi}: a flexible range; nil bounds mean 0 / unbounded
//   - "*", "?", "+": shorthand for {0,∞}, {0,1}, {1,∞}
//   - true: endless, until the object errors or breaks
//   - callable: custom; looping continues while the call answers a
//     truthy iteration value
//
// Flexible loops (ranges and wildcards) wrap every iteration in a
// speculative region so a failing iteration beyond the lower bound can
// be rolled back and the loop still succeed. Exact loops do not; any
// failure fails the loop. break and continue from inside the body are
// honored for every flavor.
type LoopRelation struct {
	NextRelation
}

// NewLoopRelation wires a repeating edge; condition may be nil, which
// leaves the relation passing through like a plain NextRelation.
func NewLoopRelation(subject, object, condition any, owner any) *LoopRelation {
	r := &LoopRelation{}
	r.initNext(r, subject, object, condition, false, owner)

	// An unconditional pass only applies when no loop condition is set.
	r.checkFn = func(m *dispatch.Message, c *dispatch.Context) (int, any) {
		if r.cond == dispatch.TrueCondition {
			return 0, true
		}
		return dispatch.NoRank, nil
	}

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return IsForward(m) && r.isGeneral() && !r.isLooping(c)
	}), dispatch.NullaryFunc(func() any {
		return r.iterationReply(1)
	}), string(dispatch.ModeValue))

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return IsForward(m) && r.isLooping(c)
	}), dispatch.ContextFunc(func(c *dispatch.Context) any {
		return r.nextIteration(c)
	}), string(dispatch.ModeValue))

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return dispatch.Equal(m.Head(), dispatch.Error) && r.isLooping(c)
	}), dispatch.ContextFunc(func(c *dispatch.Context) any {
		return r.onGeneralError(c)
	}), string(dispatch.ModeValue))

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return IsForward(m)
	}), dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return r.customIteration(m, c)
	}), string(dispatch.ModeFunction))

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return dispatch.Equal(m.Head(), dispatch.Error) && r.isLooping(c)
	}), []any{dispatch.ClearState}, string(dispatch.ModeFunction))

	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return dispatch.Equal(m.Head(), dispatch.Break) && r.isLooping(c)
	}), dispatch.NullaryFunc(func() any {
		return r.onBreak()
	}))
	r.On(dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return dispatch.Equal(m.Head(), dispatch.Continue) && r.isLooping(c)
	}), dispatch.ContextFunc(func(c *dispatch.Context) any {
		return r.onContinue(c)
	}))

	r.retag()
	return r
}

// SetCondition reclassifies the loop when its condition changes.
func (r *LoopRelation) SetCondition(condition any) {
	r.NextRelation.SetCondition(condition)
	r.retag()
}

// retag activates the event family matching the condition flavor:
// general loops are driven by a plain value, custom ones by a callable.
func (r *LoopRelation) retag() {
	switch {
	case r.isGeneral():
		r.SetTags(dispatch.NewTags(string(dispatch.ModeValue)))
	case r.isCustom():
		r.SetTags(dispatch.NewTags(string(dispatch.ModeFunction)))
	default:
		r.SetTags(dispatch.Tags{})
	}
}

func (r *LoopRelation) isWildcard() bool {
	s, ok := r.Condition().(string)
	return ok && (s == "*" || s == "?" || s == "+")
}

func (r *LoopRelation) isNumeric() bool {
	if _, ok := dispatch.AsInt(r.Condition()); ok {
		return true
	}
	bounds, ok := r.Condition().([]any)
	if !ok || len(bounds) != 2 {
		return false
	}
	for _, b := range bounds {
		if b == nil {
			continue
		}
		if _, ok := dispatch.AsInt(b); !ok {
			return false
		}
	}
	return true
}

func (r *LoopRelation) isEndless() bool { return r.Condition() == true }

func (r *LoopRelation) isCustom() bool {
	return r.cond != dispatch.TrueCondition && r.cond.Mode() == dispatch.ModeFunction
}

// isFlexible reports whether iterations run inside speculative regions.
func (r *LoopRelation) isFlexible() bool {
	if r.isWildcard() {
		return true
	}
	_, ranged := r.Condition().([]any)
	return ranged && r.isNumeric()
}

func (r *LoopRelation) isGeneral() bool {
	return r.isNumeric() || r.isWildcard() || r.isEndless()
}

func (r *LoopRelation) isLooping(c *dispatch.Context) bool {
	state, _ := c.Get(dispatch.KeyState).(map[string]any)
	_, ok := state[KeyIteration]
	return ok
}

// bounds resolves the condition to an iteration range.
func (r *LoopRelation) bounds() (lo, hi int) {
	if n, ok := dispatch.AsInt(r.Condition()); ok {
		return n, n
	}
	if pair, ok := r.Condition().([]any); ok && len(pair) == 2 {
		lo, hi = 0, unbounded
		if n, ok := dispatch.AsInt(pair[0]); ok && pair[0] != nil {
			lo = n
		}
		if n, ok := dispatch.AsInt(pair[1]); ok && pair[1] != nil {
			hi = n
		}
		return lo, hi
	}
	switch r.Condition() {
	case "*":
		return 0, unbounded
	case "?":
		return 0, 1
	case "+":
		return 1, unbounded
	}
	return unbounded, unbounded // endless
}

// iterationReply starts iteration i: store the counter, open a
// speculative region for flexible loops (closing the previous one from
// the second iteration on), then visit the object and come back.
func (r *LoopRelation) iterationReply(i int) []any {
	reply := []any{map[string]any{dispatch.SetState: map[string]any{KeyIteration: i}}}
	if r.isFlexible() {
		if i != 1 {
			reply = append([]any{dispatch.ForgetContext}, reply...)
		}
		reply = append(reply, dispatch.PushContext)
	}
	return append(reply, r.Object(), r.Self())
}

// nextIteration either goes around again or ends the loop cleanly.
func (r *LoopRelation) nextIteration(c *dispatch.Context) any {
	state, _ := c.Get(dispatch.KeyState).(map[string]any)
	i, _ := dispatch.AsInt(state[KeyIteration])
	if _, hi := r.bounds(); i < hi {
		return r.iterationReply(i + 1)
	}

	var reply []any
	if r.isFlexible() {
		reply = append(reply, dispatch.ForgetContext)
	}
	return append(reply, dispatch.ClearState)
}

// onGeneralError decides whether a failed iteration still satisfies the
// loop. Flexible loops past their lower bound roll the failed iteration
// back and succeed; anything else cleans up and lets the error travel.
func (r *LoopRelation) onGeneralError(c *dispatch.Context) any {
	state, _ := c.Get(dispatch.KeyState).(map[string]any)
	i, _ := dispatch.AsInt(state[KeyIteration])
	lo, hi := r.bounds()

	var reply []any
	if r.isFlexible() {
		if lo < i && i <= hi {
			reply = append(reply, dispatch.Next, dispatch.PopContext)
		} else {
			reply = append(reply, dispatch.ForgetContext)
		}
	}
	return append(reply, dispatch.ClearState)
}

// customIteration consults the condition callable. A truthy answer is
// stored as the iteration value and the body runs again; a falsy answer
// ends the loop (or fails it when it never ran).
func (r *LoopRelation) customIteration(m *dispatch.Message, c *dispatch.Context) any {
	verdict := r.cond.Call(m, c)
	if !dispatch.IsEmpty(verdict) {
		return []any{
			map[string]any{dispatch.SetState: map[string]any{KeyIteration: verdict}},
			r.Object(),
			r.Self(),
		}
	}
	if r.isLooping(c) {
		return []any{dispatch.ClearState}
	}
	return []any{false}
}

func (r *LoopRelation) onBreak() any {
	reply := []any{dispatch.Next}
	if r.isFlexible() {
		reply = append(reply, dispatch.ForgetContext)
	}
	return append(reply, dispatch.ClearState)
}

func (r *LoopRelation) onContinue(c *dispatch.Context) any {
	return dispatch.Splice(dispatch.Next, r.nextIteration(c))
}
