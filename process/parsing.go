package process

import "github.com/graphtalk/graphtalk/dispatch"

// ParsingProcess drives text through a grammar graph. It consumes input
// via proceed commands, steers the walk with direction tokens (error,
// break, continue) and reshapes the final result: a walk that stops
// before the text is exhausted failed, whatever the last dispatch said.
type ParsingProcess struct {
	*StatefulProcess
}

// NewParsingProcess returns a fully layered parsing interpreter.
func NewParsingProcess() *ParsingProcess {
	pp := &ParsingProcess{
		StatefulProcess: newStatefulFrom(newStackingFrom(newSharedFrom(NewProcess()))),
	}

	baseOnHandle := pp.onHandleFn
	pp.onHandleFn = func(m *dispatch.Message, c *dispatch.Context) {
		baseOnHandle(m, c)
		pp.Query = dispatch.Next
		pp.ctxSet(dispatch.KeyParsedLength, 0)
		pp.ctxSet(dispatch.KeyLastParsed, "")
	}

	// Success means the whole text was consumed while still moving
	// forward; the rank slot reports how much was parsed either way.
	baseHandle := pp.HandleFunc()
	pp.SetHandleFunc(func(m *dispatch.Message, c *dispatch.Context) dispatch.HandleResult {
		res := baseHandle(m, c)
		result := res.Result
		if !pp.IsParsed() && !dispatch.Equal(result, dispatch.Stop) {
			result = false
		}
		return dispatch.HandleResult{Result: result, Rank: pp.ParsedLength(), Found: res.Found}
	})

	pp.On([]any{dispatch.Next, dispatch.Error, dispatch.Break, dispatch.Continue},
		dispatch.NullaryFunc(pp.doTurn), dispatch.SpecString)

	pp.On(dispatch.MessageFunc(pp.canProceed), dispatch.NullaryFunc(pp.doProceed),
		dispatch.SpecDict)

	return pp
}

// Parse runs text through root from scratch. ok is false when the walk
// failed or stopped short; parsed is the number of characters consumed.
func (pp *ParsingProcess) Parse(root dispatch.Abstract, text string, ctx *dispatch.Context) (ok bool, parsed int) {
	if ctx == nil {
		ctx = dispatch.NewContext()
	}
	ctx.Set(dispatch.KeyText, text)
	result, rank := pp.RunRanked(ctx, dispatch.New, root)
	return result != false, rank
}

// Text returns the unconsumed input.
func (pp *ParsingProcess) Text() string {
	s, _ := pp.ctx.Get(dispatch.KeyText).(string)
	return s
}

// ParsedLength returns the number of characters consumed so far.
func (pp *ParsingProcess) ParsedLength() int {
	n, _ := dispatch.AsInt(pp.ctx.Get(dispatch.KeyParsedLength))
	return n
}

// LastParsed returns the chunk consumed by the latest proceed.
func (pp *ParsingProcess) LastParsed() string {
	s, _ := pp.ctx.Get(dispatch.KeyLastParsed).(string)
	return s
}

// IsParsed reports whether the walk is forward-facing with no text
// left.
func (pp *ParsingProcess) IsParsed() bool {
	return pp.Query == dispatch.Next && pp.Text() == ""
}

// doTurn consumes a direction token. Backward turns wipe the pending
// message: whatever the walk had queued no longer applies once it is
// rewinding.
func (pp *ParsingProcess) doTurn() any {
	token, _ := pp.Message().Pop().(string)
	if dispatch.IsBackwardToken(token) {
		pp.Message().Clear()
	}
	pp.Query = token
	return nil
}

// canProceed accepts a proceed command only when enough text remains.
func (pp *ParsingProcess) canProceed(m *dispatch.Message) any {
	head, ok := m.Head().(map[string]any)
	if !ok {
		return false
	}
	distance, ok := dispatch.AsInt(head[dispatch.Proceed])
	if !ok {
		return false
	}
	return len(pp.Text()) >= distance
}

// doProceed consumes the requested span and advances the counters.
func (pp *ParsingProcess) doProceed() any {
	distance, _ := dispatch.AsInt(pp.popCommand(dispatch.Proceed))
	text := pp.Text()
	chunk := text[:distance]

	pp.ctxSet(dispatch.KeyText, text[distance:])
	pp.ctxSet(dispatch.KeyParsedLength, pp.ParsedLength()+distance)
	pp.ctxSet(dispatch.KeyLastParsed, chunk)
	return nil
}
