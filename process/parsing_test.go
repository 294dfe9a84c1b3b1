package process

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphtalk/graphtalk/dispatch"
	"github.com/graphtalk/graphtalk/graph"
)

func TestParsingConsumesMatchedPrefix(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	done := graph.NewNotion("done", g)
	graph.NewParsingRelation(root, done, "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "ab", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed)
	assert.Equal(t, "ab", pp.LastParsed())
	assert.Equal(t, "", pp.Text())
}

func TestParsingFailsOnMismatch(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewParsingRelation(root, graph.NewNotion("done", g), "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "xy", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, parsed)
	assert.Equal(t, "xy", pp.Text(), "a mismatch consumes nothing")
}

func TestParsingLeftoverTextFails(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewParsingRelation(root, graph.NewNotion("done", g), "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "abx", nil)
	assert.False(t, ok, "unconsumed input means the walk fell short")
	assert.Equal(t, 2, parsed)
	assert.Equal(t, "x", pp.Text())
}

func TestParsingFoldsCase(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewParsingRelation(root, graph.NewNotion("done", g), "ab", true, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "AB", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed)
	assert.Equal(t, "AB", pp.LastParsed(), "the original spelling is what got consumed")
}

func TestParsingRegexCondition(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewParsingRelation(root, graph.NewNotion("done", g), regexp.MustCompile(`\d+`), false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "1234", nil)
	assert.True(t, ok)
	assert.Equal(t, 4, parsed)
}

func TestParsingOptionalRelationSkipsOnMismatch(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	opt := graph.NewParsingRelation(root, graph.NewNotion("skipped", g), "x", false, g)
	opt.Optional = true
	graph.NewParsingRelation(root, graph.NewNotion("done", g), "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "ab", nil)
	assert.True(t, ok, "an optional mismatch lets the next sibling run")
	assert.Equal(t, 2, parsed)
}

func TestParsingCheckOnlyLookahead(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	mid := graph.NewComplexNotion("mid", g)
	ahead := graph.NewParsingRelation(root, mid, "a", false, g)
	ahead.CheckOnly = true
	graph.NewParsingRelation(mid, graph.NewNotion("done", g), "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "ab", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed, "the lookahead matched without consuming")
}

// Two rank-tied alternatives; the first leads into a dead end, so the
// walk must roll its consumption back and let the second one finish.
func TestSelectiveRetryRollsBackAndSucceeds(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	sel := graph.NewSelectiveNotion("sel", g)
	graph.NewNextRelation(root, sel, nil, false, g)

	deadend := graph.NewComplexNotion("deadend", g)
	graph.NewParsingRelation(deadend, graph.NewNotion("never", g), "x", false, g)
	graph.NewParsingRelation(sel, deadend, "a", false, g)

	tail := graph.NewComplexNotion("tail", g)
	graph.NewParsingRelation(tail, graph.NewNotion("done", g), "b", false, g)
	graph.NewParsingRelation(sel, tail, "a", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "ab", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed)
	assert.Equal(t, "b", pp.LastParsed())
	assert.False(t, pp.Tracking(), "the committed case left no open region")
	assert.Nil(t, pp.State(sel), "the parked alternatives are gone")
}

func TestSelectiveHigherRankWinsOutright(t *testing.T) {
	g := graph.NewGraph(nil)
	sel := graph.NewSelectiveNotion("sel", g)
	var picked []string
	graph.NewParsingRelation(sel, graph.NewActionNotion("short", dispatch.NullaryFunc(func() any {
		picked = append(picked, "short")
		return nil
	}), g), "a", false, g)
	graph.NewParsingRelation(sel, graph.NewActionNotion("long", dispatch.NullaryFunc(func() any {
		picked = append(picked, "long")
		return nil
	}), g), "ab", false, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(sel, "ab", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed)
	assert.Equal(t, []string{"long"}, picked, "the longer match outranks, no speculation needed")
}

func TestSelectiveExhaustedCasesPropagateError(t *testing.T) {
	g := graph.NewGraph(nil)
	sel := graph.NewSelectiveNotion("sel", g)
	for _, name := range []string{"one", "two"} {
		dead := graph.NewComplexNotion(name, g)
		graph.NewParsingRelation(dead, graph.NewNotion("never", g), "x", false, g)
		graph.NewParsingRelation(sel, dead, "a", false, g)
	}

	pp := NewParsingProcess()
	ok, _ := pp.Parse(sel, "ab", nil)
	assert.False(t, ok)
	assert.False(t, pp.Tracking(), "failed speculation does not leak regions")
}

func TestSelectiveDefaultUsedWhenNothingMatches(t *testing.T) {
	g := graph.NewGraph(nil)
	sel := graph.NewSelectiveNotion("sel", g)
	graph.NewParsingRelation(sel, graph.NewNotion("never", g), "x", false, g)
	fallback := graph.NewParsingRelation(sel, graph.NewNotion("done", g), "ab", false, g)
	fallback.Optional = true
	sel.SetDefault(fallback)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(sel, "ab", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, parsed)
}

// loopBody wires body --"a"--> leaf so each iteration consumes one "a".
func loopBody(g *graph.Graph) *graph.ComplexNotion {
	body := graph.NewComplexNotion("body", g)
	graph.NewParsingRelation(body, graph.NewNotion("leaf", g), "a", false, g)
	return body
}

func TestLoopFlexibleRangeStopsAtFailure(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewLoopRelation(root, loopBody(g), []any{2, 3}, g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "aa", nil)
	assert.True(t, ok, "two iterations satisfy the lower bound")
	assert.Equal(t, 2, parsed)
	assert.False(t, pp.Tracking())
}

func TestLoopFlexibleRangeBelowLowerBoundFails(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewLoopRelation(root, loopBody(g), []any{2, 3}, g)

	pp := NewParsingProcess()
	ok, _ := pp.Parse(root, "a", nil)
	assert.False(t, ok)
}

func TestLoopExactCountFailurePropagates(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewLoopRelation(root, loopBody(g), 3, g)

	pp := NewParsingProcess()
	ok, _ := pp.Parse(root, "aa", nil)
	assert.False(t, ok, "an exact loop cannot fall short")
}

func TestLoopWildcardConsumesAll(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	graph.NewLoopRelation(root, loopBody(g), "*", g)

	pp := NewParsingProcess()
	ok, parsed := pp.Parse(root, "aaaa", nil)
	assert.True(t, ok)
	assert.Equal(t, 4, parsed)

	ok, parsed = pp.Parse(root, "", nil)
	assert.True(t, ok, "star accepts zero iterations")
	assert.Equal(t, 0, parsed)
}

func TestLoopBreakEndsEarly(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	visits := 0
	body := graph.NewActionNotion("body", dispatch.NullaryFunc(func() any {
		visits++
		if visits == 2 {
			return dispatch.Break
		}
		return nil
	}), g)
	graph.NewLoopRelation(root, body, true, g)

	pp := NewParsingProcess()
	ok, _ := pp.Parse(root, "", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, visits)
}

func TestLoopContinueSkipsToNextIteration(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	visits := 0
	body := graph.NewActionNotion("body", dispatch.NullaryFunc(func() any {
		visits++
		return dispatch.Continue
	}), g)
	graph.NewLoopRelation(root, body, 2, g)

	pp := NewParsingProcess()
	ok, _ := pp.Parse(root, "", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, visits, "continue still counts the iteration")
}

func TestLoopCustomCondition(t *testing.T) {
	g := graph.NewGraph(nil)
	root := graph.NewComplexNotion("root", g)
	visits := 0
	body := graph.NewActionNotion("body", dispatch.NullaryFunc(func() any {
		visits++
		return nil
	}), g)
	round := 0
	graph.NewLoopRelation(root, body, dispatch.NullaryFunc(func() any {
		round++
		if round <= 3 {
			return round
		}
		return nil
	}), g)

	pp := NewParsingProcess()
	ok, _ := pp.Parse(root, "", nil)
	assert.True(t, ok)
	assert.Equal(t, 3, visits)
}

func TestParsingTurnTokensSteerTheQuery(t *testing.T) {
	pp := NewParsingProcess()
	probe := graph.NewActionNotion("probe", dispatch.NullaryFunc(func() any {
		return dispatch.Error
	}), nil)

	ctx := dispatch.NewContext()
	ctx.Set(dispatch.KeyText, "")
	result := pp.Run(ctx, dispatch.New, probe, dispatch.OK)
	assert.Equal(t, false, result, "an error turn spoils an otherwise clean finish")
	assert.Equal(t, dispatch.Error, pp.Query)
}
