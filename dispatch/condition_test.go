package dispatch

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionStringPrefix(t *testing.T) {
	cond := NewCondition("cat")

	rank, found := cond.Check(NewMessage("category"), NewContext())
	assert.Equal(t, 3, rank, "rank equals pattern length")
	assert.Equal(t, "cat", found)

	rank, _ = cond.Check(NewMessage("dog"), NewContext())
	assert.Equal(t, NoRank, rank)

	// Head shorter than the pattern can never match.
	rank, _ = cond.Check(NewMessage("ca"), NewContext())
	assert.Equal(t, NoRank, rank)
}

func TestConditionStringFold(t *testing.T) {
	cond := NewFoldedCondition("cat")

	rank, _ := cond.Check(NewMessage("CATEGORY"), NewContext())
	assert.Equal(t, 3, rank)

	strict := NewCondition("cat")
	rank, _ = strict.Check(NewMessage("CATEGORY"), NewContext())
	assert.Equal(t, NoRank, rank)
}

func TestConditionRegex(t *testing.T) {
	cond := NewCondition(regexp.MustCompile(`[a-z]+`))

	rank, found := cond.Check(NewMessage("abc123"), NewContext())
	assert.Equal(t, 3, rank, "rank equals matched length")
	assert.Equal(t, "abc", found)

	// Matches must anchor at the start of the head.
	rank, _ = cond.Check(NewMessage("123abc"), NewContext())
	assert.Equal(t, NoRank, rank)
}

func TestConditionList(t *testing.T) {
	cond := NewCondition([]any{"cat", "c", "category"})

	rank, found := cond.Check(NewMessage("category"), NewContext())
	assert.Equal(t, 8, rank, "longest sub-pattern wins")
	assert.Equal(t, "category", found)

	// Equal ranks resolve to the earliest sub-condition.
	tie := NewCondition([]any{"ca", "cb"})
	rank, found = tie.Check(NewMessage("cat"), NewContext())
	assert.Equal(t, 2, rank)
	assert.Equal(t, "ca", found)
}

func TestConditionFunction(t *testing.T) {
	t.Run("predicate", func(t *testing.T) {
		cond := NewCondition(MessageFunc(func(m *Message) any {
			return m.Head() == "hit"
		}))

		rank, found := cond.Check(NewMessage("hit"), NewContext())
		assert.Equal(t, 0, rank)
		assert.Equal(t, true, found)

		rank, _ = cond.Check(NewMessage("miss"), NewContext())
		assert.Equal(t, NoRank, rank)
	})

	t.Run("numeric verdict becomes rank", func(t *testing.T) {
		cond := NewCondition(NullaryFunc(func() any { return 7 }))

		rank, found := cond.Check(NewMessage("x"), NewContext())
		assert.Equal(t, 7, rank)
		assert.Equal(t, 7, found)
	})

	t.Run("rank pair used as-is", func(t *testing.T) {
		cond := NewCondition(RankFunc(func(*Message, *Context) (int, any) {
			return 42, "custom"
		}))

		rank, found := cond.Check(NewMessage(nil), NewContext())
		assert.Equal(t, 42, rank)
		assert.Equal(t, "custom", found)
	})
}

func TestConditionBoolAndEquality(t *testing.T) {
	boolean := NewCondition(true)
	rank, _ := boolean.Check(NewMessage(true), NewContext())
	assert.Equal(t, 0, rank)
	rank, _ = boolean.Check(NewMessage("true"), NewContext())
	assert.Equal(t, NoRank, rank)

	number := NewCondition(5)
	rank, found := number.Check(NewMessage(5), NewContext())
	assert.Equal(t, 0, rank)
	assert.Equal(t, 5, found)
}

func TestTrueCondition(t *testing.T) {
	rank, found := TrueCondition.Check(NewMessage(), NewContext())
	require.Equal(t, 0, rank)
	assert.Equal(t, true, found)
}
