package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerPicksHighestRank(t *testing.T) {
	h := NewHandler()
	h.On("cat", "short")
	h.On("category", "long")

	res := h.Handle(NewMessage("category"), NewContext())
	require.Equal(t, 8, res.Rank)
	assert.Equal(t, "long", res.Result)
	assert.Equal(t, "long", res.Found)
}

func TestHandlerTieGoesToFirstRegistered(t *testing.T) {
	h := NewHandler()
	h.On("ab", "first")
	h.On("ab", "second")

	res := h.Handle(NewMessage("abc"), NewContext())
	assert.Equal(t, "first", res.Result)
}

func TestHandlerNoMatch(t *testing.T) {
	h := NewHandler()
	h.On("cat", "meow")

	res := h.Handle(NewMessage("dog"), NewContext())
	assert.Equal(t, NoHandle(), res)
}

func TestHandlerUnknownEvent(t *testing.T) {
	h := NewHandler()
	h.On("cat", "meow")
	h.SetUnknown(NullaryFunc(func() any { return "fallback" }))

	res := h.Handle(NewMessage("dog"), NewContext())
	assert.Equal(t, "fallback", res.Result)
	assert.Equal(t, NoRank, res.Rank)
}

func TestHandlerPublishesDispatchContext(t *testing.T) {
	h := NewHandler()
	var gotRank, gotCond, gotSender any
	h.On("cat", ContextFunc(func(c *Context) any {
		gotRank = c.Get(KeyRank)
		gotCond = c.Get(KeyCondition)
		gotSender = c.Get(KeySender)
		return OK
	}))

	ctx := NewContext()
	res := h.Handle(NewMessage("category"), ctx)
	require.Equal(t, OK, res.Result)
	assert.Equal(t, 3, gotRank)
	assert.Equal(t, "cat", gotCond)
	assert.Same(t, h, gotSender)
}

func TestHandlerKeepsCallerSender(t *testing.T) {
	h := NewHandler()
	h.On("x", OK)

	ctx := NewContext()
	ctx.Set(KeySender, "caller")
	h.Handle(NewMessage("x"), ctx)
	assert.Equal(t, "caller", ctx.Get(KeySender))
}

func TestHandlerTagGating(t *testing.T) {
	h := NewHandler()
	h.On("go", "plain")
	h.On("go!", "gated", "ready")

	// Without the tag only the untagged pair is active.
	res := h.Handle(NewMessage("go!"), NewContext())
	assert.Equal(t, "plain", res.Result)

	h.SetTags(NewTags("ready"))
	res = h.Handle(NewMessage("go!"), NewContext())
	assert.Equal(t, "gated", res.Result)
}

func TestHandlerUpdateRecomputesOnce(t *testing.T) {
	h := NewHandler()
	calls := 0
	h.SetUpdateTags(func() Tags {
		calls++
		return NewTags("a")
	})

	h.Update()
	h.Update()
	assert.Equal(t, 2, calls)
	assert.True(t, h.Tags().Has("a"))
}

func TestHandlerOff(t *testing.T) {
	h := NewHandler()
	h.On("cat", "meow")
	h.Off("cat", "meow")

	res := h.Handle(NewMessage("cat"), NewContext())
	assert.Equal(t, NoHandle(), res)
}

func TestHandlerOffAny(t *testing.T) {
	h := NewHandler()
	h.OnAny("always")
	h.On("cat", "meow")
	h.OffAny("always")

	res := h.Handle(NewMessage("dog"), NewContext())
	assert.Equal(t, NoHandle(), res)

	res = h.Handle(NewMessage("cat"), NewContext())
	assert.Equal(t, "meow", res.Result)
}

func TestHandlerOffEvent(t *testing.T) {
	h := NewHandler()
	h.On("cat", "meow")
	h.On("kitten", "meow")
	h.On("dog", "woof")
	h.OffEvent("meow")

	assert.Equal(t, NoHandle(), h.Handle(NewMessage("cat"), NewContext()))
	assert.Equal(t, NoHandle(), h.Handle(NewMessage("kitten"), NewContext()))
	assert.Equal(t, "woof", h.Handle(NewMessage("dog"), NewContext()).Result)
}

func TestHandlerAnswerRankedReply(t *testing.T) {
	h := NewHandler()
	h.On("cat", "meow")

	ctx := NewContext()
	ctx.Set(KeyAnswer, KeyRank)
	got := h.Answer(NewMessage("category"), ctx)
	require.IsType(t, Ranked{}, got)
	assert.Equal(t, Ranked{Result: "meow", Rank: 3}, got)
	assert.False(t, ctx.Has(KeyAnswer), "answer flag is consumed")

	// Plain reply once the flag is gone.
	got = h.Answer(NewMessage("category"), ctx)
	assert.Equal(t, "meow", got)
}

func TestEventHooks(t *testing.T) {
	t.Run("pre veto", func(t *testing.T) {
		e := NewEvent(NullaryFunc(func() any { return "main" }))
		e.SetPre(NullaryFunc(func() any { return "vetoed" }))

		result, source := e.Run(NewMessage(), NewContext())
		assert.Equal(t, "vetoed", result)
		assert.NotNil(t, source)
	})

	t.Run("post sees result", func(t *testing.T) {
		e := NewEvent(NullaryFunc(func() any { return "main" }))
		var seen any
		e.SetPost(ContextFunc(func(c *Context) any {
			seen = c.Get(KeyResult)
			return nil
		}))

		result, _ := e.Run(NewMessage(), NewContext())
		assert.Equal(t, "main", result)
		assert.Equal(t, "main", seen)
	})

	t.Run("post replace", func(t *testing.T) {
		e := NewEvent(NullaryFunc(func() any { return "main" }))
		e.SetPost(NullaryFunc(func() any { return "replaced" }))

		result, _ := e.Run(NewMessage(), NewContext())
		assert.Equal(t, "replaced", result)
	})
}
