package dispatch

// HandleResult is the outcome of one dispatch: the winning event's
// result, the rank its condition matched with (NoRank when nothing
// matched), and the payload of the event that produced the result.
type HandleResult struct {
	Result any
	Rank   int
	Found  any
}

// NoHandle is the outcome when no condition matched and no unknown
// event is installed.
func NoHandle() HandleResult {
	return HandleResult{Result: false, Rank: NoRank}
}

// Ranked is the reply shape produced when the caller set
// Context[KeyAnswer] = KeyRank: the result together with its rank.
type Ranked struct {
	Result any
	Rank   int
}

// Handling is satisfied by everything that embeds a Handler. It exposes
// raw dispatch, which callers use when they need the full HandleResult
// rather than the Answer reply.
type Handling interface {
	Handle(m *Message, c *Context) HandleResult
}

type handlerPair struct {
	cond  *Condition
	event *Event
}

// Handler owns an ordered registry of (condition, event) pairs and runs
// the best match for each incoming message. Embedders identify
// themselves via Bind so that the sender published to the context is the
// outer object, not the embedded registry.
//
// Dispatch is deterministic: every active condition is evaluated, the
// highest rank wins, and ties go to the earliest registration.
type Handler struct {
	self any

	tags   Tags
	pairs  []handlerPair
	active []handlerPair

	unknown *Event

	updateTags func() Tags
	handleFn   func(*Message, *Context) HandleResult
}

// NewHandler returns a standalone handler bound to itself.
func NewHandler() *Handler {
	h := &Handler{}
	h.Bind(h)
	return h
}

// Bind initializes the handler for the embedding object self. Must be
// called before any registration.
func (h *Handler) Bind(self any) {
	h.self = self
	h.tags = Tags{}
	h.updateTags = func() Tags { return h.tags }
	h.handleFn = h.Handle
}

// Self returns the bound owner.
func (h *Handler) Self() any { return h.self }

// Tags returns the handler's current tag set.
func (h *Handler) Tags() Tags { return h.tags }

// SetTags replaces the tag set and refilters active pairs.
func (h *Handler) SetTags(tags Tags) {
	h.tags = tags
	h.refilter()
}

// SetUpdateTags installs the recomputation strategy used by Update.
func (h *Handler) SetUpdateTags(fn func() Tags) { h.updateTags = fn }

// Update recomputes tags once and refilters pairs only when the set
// actually changed. Processes call this once per dispatch step.
func (h *Handler) Update() {
	fresh := h.updateTags()
	if !fresh.Equal(h.tags) {
		h.tags = fresh
		h.refilter()
	}
}

// HandleFunc returns the current top-level dispatch strategy.
func (h *Handler) HandleFunc() func(*Message, *Context) HandleResult {
	return h.handleFn
}

// SetHandleFunc replaces the top-level dispatch strategy. Wrappers that
// reshape results (parsing success, for example) install themselves
// here.
func (h *Handler) SetHandleFunc(fn func(*Message, *Context) HandleResult) {
	h.handleFn = fn
}

// Unknown returns the fallback event, nil when unset.
func (h *Handler) Unknown() *Event { return h.unknown }

// SetUnknown installs the fallback event run when nothing matches.
func (h *Handler) SetUnknown(value any) {
	if value == nil {
		h.unknown = nil
		return
	}
	h.unknown = NewEvent(value)
}

// OnAccess registers a prepared (condition, event) pair.
func (h *Handler) OnAccess(cond *Condition, event *Event) {
	for _, p := range h.pairs {
		if p.cond == cond && p.event == event {
			return
		}
	}
	h.pairs = append(h.pairs, handlerPair{cond: cond, event: event})
	h.refilter()
}

// On registers event to run when cond matches. Raw values are wrapped;
// tags gate the pair on the handler's tag set.
func (h *Handler) On(cond any, event any, tags ...string) *Condition {
	c := NewCondition(cond, tags...)
	h.OnAccess(c, NewEvent(event))
	return c
}

// OnAny registers event under the always-matching condition.
func (h *Handler) OnAny(event any) {
	h.OnAccess(TrueCondition, NewEvent(event))
}

// OffAny removes every pair registered via OnAny.
func (h *Handler) OffAny(event any) {
	kept := h.pairs[:0]
	for _, p := range h.pairs {
		if p.cond == TrueCondition && Equal(p.event.Value(), event) {
			continue
		}
		kept = append(kept, p)
	}
	h.pairs = kept
	h.refilter()
}

// OffEvent removes every pair whose event was built from value, whatever
// its condition.
func (h *Handler) OffEvent(event any) {
	kept := h.pairs[:0]
	for _, p := range h.pairs {
		if Equal(p.event.Value(), event) {
			continue
		}
		kept = append(kept, p)
	}
	h.pairs = kept
	h.refilter()
}

// OffCondition removes every pair registered under cond.
func (h *Handler) OffCondition(cond *Condition) {
	kept := h.pairs[:0]
	for _, p := range h.pairs {
		if p.cond != cond {
			kept = append(kept, p)
		}
	}
	h.pairs = kept
	h.refilter()
}

// Off removes pairs whose condition and event were built from the given
// values. Only comparable values can be matched this way; pairs built
// from bare functions are removed via OffCondition.
func (h *Handler) Off(cond any, event any) {
	kept := h.pairs[:0]
	for _, p := range h.pairs {
		if Equal(p.cond.Value(), cond) && Equal(p.event.Value(), event) {
			continue
		}
		kept = append(kept, p)
	}
	h.pairs = kept
	h.refilter()
}

// Events returns the events registered under the condition built from
// value.
func (h *Handler) Events(cond any) []*Event {
	var out []*Event
	for _, p := range h.pairs {
		if Equal(p.cond.Value(), cond) {
			out = append(out, p.event)
		}
	}
	return out
}

// ClearEvents drops every registration.
func (h *Handler) ClearEvents() {
	h.pairs = nil
	h.active = nil
}

func (h *Handler) refilter() {
	h.active = h.active[:0]
	for _, p := range h.pairs {
		if p.cond.Tags().SubsetOf(h.tags) {
			h.active = append(h.active, p)
		}
	}
}

// Handle evaluates every active condition against the message, runs the
// event of the highest-ranked match and reports the outcome. The winning
// rank, matched value and event payload are published to the context
// before the event runs; the sender is published only when the caller
// has not named one.
func (h *Handler) Handle(m *Message, c *Context) HandleResult {
	if !c.Has(KeySender) {
		c.Set(KeySender, h.self)
	}

	bestRank, bestFound := NoRank, any(nil)
	var best *handlerPair
	for i := range h.active {
		p := &h.active[i]
		if r, found := p.cond.Check(m, c); r > bestRank {
			bestRank, bestFound, best = r, found, p
		}
	}

	if best != nil {
		c.Set(KeyRank, bestRank)
		c.Set(KeyCondition, bestFound)
		c.Set(KeyEvent, best.event.Value())
		result, source := best.event.Run(m, c)
		return HandleResult{Result: result, Rank: bestRank, Found: source}
	}

	if h.unknown != nil {
		result, source := h.unknown.Run(m, c)
		return HandleResult{Result: result, Rank: NoRank, Found: source}
	}

	return NoHandle()
}

// Answer runs the dispatch strategy and returns its result. When the
// caller set Context[KeyAnswer] = KeyRank the reply is a Ranked pair
// instead; the flag is consumed either way and applies only to this
// call.
func (h *Handler) Answer(m *Message, c *Context) any {
	if c == nil {
		c = NewContext()
	}
	mode, _ := c.Pop(KeyAnswer)
	res := h.handleFn(m, c)
	if mode == KeyRank {
		return Ranked{Result: res.Result, Rank: res.Rank}
	}
	return res.Result
}
