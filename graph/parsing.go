package graph

import "github.com/graphtalk/graphtalk/dispatch"

// ParsingRelation matches its condition against the remaining input
// text instead of the message. A successful match of n characters
// replies with a proceed command consuming n, followed by the object;
// a failed match on a non-optional relation answers with the error
// token through the unknown event.
type ParsingRelation struct {
	NextRelation

	// Optional suppresses the error reply when the condition does not
	// match, letting sibling relations try instead.
	Optional bool

	// CheckOnly matches without consuming text.
	CheckOnly bool
}

// NewParsingRelation wires subject to object gated by a text condition.
func NewParsingRelation(subject, object, condition any, ignoreCase bool, owner any) *ParsingRelation {
	r := &ParsingRelation{}
	r.initNext(r, subject, object, condition, ignoreCase, owner)
	r.checkFn = r.checkText
	r.replyFn = r.parseReply
	r.SetUnknown(dispatch.MessageFunc(r.onUnmatched))
	return r
}

// checkText fronts the message with the remaining text so string and
// regex conditions rank against the input itself.
func (r *ParsingRelation) checkText(m *dispatch.Message, c *dispatch.Context) (int, any) {
	probe := dispatch.NewMessage(c.Get(dispatch.KeyText))
	probe.Push(m.Items()...)
	return r.cond.Check(probe, c)
}

// parseReply consumes what the condition matched. The winning rank is
// read back from the dispatch context, where the handler published it.
func (r *ParsingRelation) parseReply(m *dispatch.Message, c *dispatch.Context) any {
	next := r.nextReply(m, c)
	rank, ok := dispatch.AsInt(c.Get(dispatch.KeyRank))
	if ok && rank != 0 && !r.CheckOnly {
		return []any{map[string]any{dispatch.Proceed: rank}, next}
	}
	return next
}

func (r *ParsingRelation) onUnmatched(m *dispatch.Message) any {
	if !r.Optional && IsForward(m) {
		return dispatch.Error
	}
	return nil
}
