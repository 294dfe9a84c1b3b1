package graph

import "github.com/graphtalk/graphtalk/dispatch"

// NextRelation passes the walk from subject to object when moving
// forward, optionally gated by a condition. Without a condition it
// passes unconditionally at rank 0.
type NextRelation struct {
	Relation

	cond *dispatch.Condition
	fold bool

	// Seams overridden by ParsingRelation and LoopRelation.
	checkFn func(m *dispatch.Message, c *dispatch.Context) (int, any)
	replyFn func(m *dispatch.Message, c *dispatch.Context) any
}

// NewNextRelation wires subject to object. condition may be nil (always
// passes), a string/regex/number/bool/list pattern, or a callable.
func NewNextRelation(subject, object, condition any, ignoreCase bool, owner any) *NextRelation {
	r := &NextRelation{}
	r.initNext(r, subject, object, condition, ignoreCase, owner)
	return r
}

func (r *NextRelation) initNext(self any, subject, object, condition any, ignoreCase bool, owner any) {
	r.fold = ignoreCase
	r.checkFn = r.checkCondition
	r.replyFn = r.nextReply
	r.initRelation(self, subject, object, owner)

	if condition != nil {
		r.setConditionValue(condition)
	} else {
		r.cond = dispatch.TrueCondition
	}

	r.On(dispatch.RankFunc(r.canPass), dispatch.Func(func(m *dispatch.Message, c *dispatch.Context) any {
		return r.replyFn(m, c)
	}))
}

// Condition returns the raw condition value.
func (r *NextRelation) Condition() any { return r.cond.Value() }

// ConditionAccess returns the compiled condition.
func (r *NextRelation) ConditionAccess() *dispatch.Condition { return r.cond }

// SetCondition replaces the gating condition; nil restores the
// unconditional pass.
func (r *NextRelation) SetCondition(condition any) {
	if condition == nil {
		r.cond = dispatch.TrueCondition
		return
	}
	r.setConditionValue(condition)
}

func (r *NextRelation) setConditionValue(condition any) {
	if r.fold {
		r.cond = dispatch.NewFoldedCondition(condition)
	} else {
		r.cond = dispatch.NewCondition(condition)
	}
}

// canPass gates on direction first, then hands the verdict to the
// condition seam.
func (r *NextRelation) canPass(m *dispatch.Message, c *dispatch.Context) (int, any) {
	if !IsForward(m) {
		return dispatch.NoRank, nil
	}
	return r.checkFn(m, c)
}

func (r *NextRelation) checkCondition(m *dispatch.Message, c *dispatch.Context) (int, any) {
	return r.cond.Check(m, c)
}

func (r *NextRelation) nextReply(_ *dispatch.Message, _ *dispatch.Context) any {
	return r.Object()
}
