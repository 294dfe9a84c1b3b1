package dispatch

import (
	"regexp"

	"golang.org/x/text/cases"
)

// NoRank marks a failed match. Any rank >= 0 is a hit; higher wins.
const NoRank = -1

// Condition specs classify the pattern a condition was built from. The
// spec doubles as a tag name where handlers gate pairs on the shape of
// the incoming message head.
const (
	SpecNumber = "number"
	SpecList   = "list"
	SpecString = "string"
	SpecRegex  = "regex"
	SpecDict   = "dict"
	SpecBool   = "bool"
	SpecOther  = "other"
)

// Condition decides whether a message is interesting and how specific
// the match is. Check answers with a (rank, matched-value) pair; NoRank
// means no match.
//
// The check strategy is fixed at construction from the pattern's type:
//
//   - callable: the result decides (see checkFunction)
//   - string: case-sensitive (or folded) prefix of the head, rank =
//     pattern length
//   - *regexp.Regexp: match anchored at the head's start, rank = match
//     length
//   - number: equality with the head
//   - bool: identity with a bool head
//   - []any: sub-conditions, best rank wins, first sub-condition on ties
//   - anything else: equality with the head, rank = value length
type Condition struct {
	Access

	spec string
	tags Tags

	check func(m *Message, c *Context) (int, any)
	subs  []*Condition

	pattern string
	rank    int
	fold    bool
	re      *regexp.Regexp
}

// TrueCondition matches any message with rank 0. Relations without an
// explicit condition use it so that an unconditional pass still beats
// nothing but never outranks a real match.
var TrueCondition = newTrueCondition()

func newTrueCondition() *Condition {
	c := &Condition{Access: *NewAccess(true), spec: SpecBool, tags: Tags{}}
	c.check = func(*Message, *Context) (int, any) { return 0, true }
	return c
}

// NewCondition builds a case-sensitive condition from value.
func NewCondition(value any, tags ...string) *Condition {
	return buildCondition(value, false, tags...)
}

// NewFoldedCondition builds a condition whose string matching ignores
// case.
func NewFoldedCondition(value any, tags ...string) *Condition {
	return buildCondition(value, true, tags...)
}

func buildCondition(value any, fold bool, tags ...string) *Condition {
	if c, ok := value.(*Condition); ok {
		return c
	}
	c := &Condition{Access: *NewAccess(value), tags: NewTags(tags...)}
	c.setup(fold)
	return c
}

func (c *Condition) setup(fold bool) {
	if c.Mode() == ModeFunction {
		c.spec = SpecOther
		c.check = c.checkFunction
		return
	}
	switch v := c.Value().(type) {
	case int, int64, float64:
		c.spec = SpecNumber
		c.check = c.checkEquality
	case []any:
		c.spec = SpecList
		c.subs = make([]*Condition, 0, len(v))
		for _, item := range v {
			c.subs = append(c.subs, buildCondition(item, fold))
		}
		c.check = c.checkList
	case string:
		c.spec = SpecString
		c.rank = len(v)
		if fold {
			v = foldString(v)
		}
		c.pattern = v
		c.fold = fold
		c.check = c.checkString
	case *regexp.Regexp:
		c.spec = SpecRegex
		c.re = v
		c.check = c.checkRegex
	case map[string]any:
		c.spec = SpecDict
		c.check = c.checkEquality
	case bool:
		c.spec = SpecBool
		c.check = c.checkBool
	default:
		c.spec = SpecOther
		c.check = c.checkEquality
	}
}

// Check evaluates the condition against the conversation.
func (c *Condition) Check(m *Message, ctx *Context) (int, any) {
	return c.check(m, ctx)
}

// Tags returns the labels gating this condition.
func (c *Condition) Tags() Tags { return c.tags }

// Spec returns the pattern classification.
func (c *Condition) Spec() string { return c.spec }

// checkFunction runs the wrapped callable and grades its verdict:
//
//   - a RankFunc pair is used as-is
//   - falsy means no match
//   - true matches with rank 0
//   - a number n matches with rank n
//   - any other truthy value matches with rank 0 and is the found value
func (c *Condition) checkFunction(m *Message, ctx *Context) (int, any) {
	if rf, ok := asRankFunc(c.Value()); ok {
		return rf(m, ctx)
	}
	verdict := c.Call(m, ctx)
	if IsEmpty(verdict) {
		return NoRank, nil
	}
	if verdict == true {
		return 0, true
	}
	if n, ok := AsInt(verdict); ok {
		return n, verdict
	}
	return 0, verdict
}

func asRankFunc(v any) (RankFunc, bool) {
	switch f := v.(type) {
	case RankFunc:
		return f, true
	case func(*Message, *Context) (int, any):
		return f, true
	}
	return nil, false
}

func (c *Condition) checkString(m *Message, _ *Context) (int, any) {
	head, ok := m.Head().(string)
	if !ok || len(head) < c.rank {
		return NoRank, nil
	}
	prefix := head[:c.rank]
	if c.fold {
		prefix = foldString(prefix)
	}
	if prefix != c.pattern {
		return NoRank, nil
	}
	return c.rank, c.pattern
}

func (c *Condition) checkRegex(m *Message, _ *Context) (int, any) {
	head, ok := m.Head().(string)
	if !ok {
		return NoRank, nil
	}
	loc := c.re.FindStringIndex(head)
	if loc == nil || loc[0] != 0 {
		return NoRank, nil
	}
	return loc[1], head[:loc[1]]
}

func (c *Condition) checkBool(m *Message, _ *Context) (int, any) {
	head, ok := m.Head().(bool)
	if !ok || head != c.Value().(bool) {
		return NoRank, nil
	}
	return 0, head
}

func (c *Condition) checkEquality(m *Message, _ *Context) (int, any) {
	if m.IsEmpty() || !Equal(m.Head(), c.Value()) {
		return NoRank, nil
	}
	return Length(c.Value()), c.Value()
}

// checkList tries every sub-condition and keeps the best rank. Ties go
// to the earliest sub-condition, matching overall dispatch order.
func (c *Condition) checkList(m *Message, ctx *Context) (int, any) {
	best, found := NoRank, any(nil)
	for _, sub := range c.subs {
		if r, v := sub.Check(m, ctx); r > best {
			best, found = r, v
		}
	}
	return best, found
}

func foldString(s string) string {
	return cases.Fold().String(s)
}
