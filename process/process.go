package process

import "github.com/graphtalk/graphtalk/dispatch"

// Handler situation tags. Together with the condition-spec tags they
// let each process layer activate only the pairs that can possibly
// apply to the current message head.
const (
	TagMessage      = "message"
	TagEmptyMessage = "empty_message"
	TagCurrent      = "current"
	TagTracking     = "tracking"
	TagHasStates    = "has_states"
)

// frame is one level of the traversal stack: the element being visited,
// its prepared access, and the message pending at this level.
type frame struct {
	current any
	access  *dispatch.Access
	message *dispatch.Message
}

func newFrame() *frame {
	return &frame{message: dispatch.NewMessage()}
}

// setCurrent normalizes the visited element. Bare callables are wrapped
// in an Access so the frame's current is always comparable and can key
// the state table.
func (f *frame) setCurrent(v any) {
	switch t := v.(type) {
	case nil:
		f.current, f.access = nil, nil
	case dispatch.Abstract:
		f.current = t
		f.access = dispatch.AccessOf(t)
	default:
		a := dispatch.AccessOf(v)
		f.current = a
		f.access = a
	}
}

// StepInfo describes one dispatch step for observers.
type StepInfo struct {
	Seq     int
	Current any
	Head    any
	Result  any
}

// Process walks a graph by keeping a stack of frames and dispatching on
// the head of the top frame's message. Querying an element pushes it;
// an exhausted frame pops; list replies splice onto the message front.
// The walk ends at an explicit terminal ("ok", "stop", a bool) or when
// everything is consumed.
type Process struct {
	dispatch.Handler

	queue []*frame
	ctx   *dispatch.Context

	// Query is the token sent to elements; parsing walks steer it.
	Query string

	observer func(StepInfo)
	steps    int

	// Seams wrapped by the outer layers.
	onHandleFn func(m *dispatch.Message, c *dispatch.Context)
	queryFn    func() any
	tagsFn     func() dispatch.Tags
}

// NewProcess returns a base process ready to run.
func NewProcess() *Process {
	p := &Process{Query: dispatch.Next, ctx: dispatch.NewContext()}
	p.Bind(p)
	p.queue = []*frame{newFrame()}

	p.onHandleFn = p.onHandle
	p.queryFn = p.doQuery
	p.tagsFn = p.situationTags
	p.SetUpdateTags(func() dispatch.Tags { return p.tagsFn() })
	p.SetHandleFunc(p.handle)

	p.setupHandlers()
	return p
}

// Run sends a message to the process and returns the final result. A
// leading "new" token resets the walk and adopts ctx as the fresh
// shared context; otherwise the message and context merge into the
// walk in progress. A nil ctx gets a fresh context.
func (p *Process) Run(ctx *dispatch.Context, message ...any) any {
	return p.Answer(dispatch.NewMessage(message...), ctx)
}

// RunRanked is Run plus the rank of the final dispatch.
func (p *Process) RunRanked(ctx *dispatch.Context, message ...any) (any, int) {
	if ctx == nil {
		ctx = dispatch.NewContext()
	}
	ctx.Set(dispatch.KeyAnswer, dispatch.KeyRank)
	reply := p.Answer(dispatch.NewMessage(message...), ctx)
	ranked := reply.(dispatch.Ranked)
	return ranked.Result, ranked.Rank
}

// Context returns the shared context of the current walk.
func (p *Process) Context() *dispatch.Context { return p.ctx }

// Current returns the element under visit, nil between visits.
func (p *Process) Current() any { return p.top().current }

// Message returns the pending message of the top frame.
func (p *Process) Message() *dispatch.Message { return p.top().message }

// Depth returns the frame stack depth.
func (p *Process) Depth() int { return len(p.queue) }

// SetObserver installs a per-step callback, nil to remove. Observers
// see every dispatch of the main loop in order.
func (p *Process) SetObserver(fn func(StepInfo)) { p.observer = fn }

func (p *Process) top() *frame { return p.queue[len(p.queue)-1] }

// toQueue places a message (and optionally a new current) on the stack.
// An exhausted top frame is reused instead of stacking an empty shell.
func (p *Process) toQueue(current any, haveCurrent bool, message *dispatch.Message) {
	if p.Message().IsEmpty() {
		top := p.top()
		top.message = message
		if haveCurrent {
			top.setCurrent(current)
		}
		return
	}
	f := &frame{message: message}
	if haveCurrent {
		f.setCurrent(current)
	} else {
		f.current, f.access = p.top().current, p.top().access
	}
	p.queue = append(p.queue, f)
}

// insertMessage splices an event reply onto the front of the pending
// message. List replies contribute their items, everything else is a
// single item.
func (p *Process) insertMessage(result any) {
	items := dispatch.Splice(result)
	merged := dispatch.NewMessage(items...)
	merged.Push(p.Message().Items()...)
	p.top().message = merged
}

// onHandle folds an incoming top-level call into the walk. "new" drops
// every frame and adopts the caller's context; anything else stacks on
// top of whatever is in flight.
func (p *Process) onHandle(m *dispatch.Message, c *dispatch.Context) {
	if !m.IsEmpty() && dispatch.Equal(m.Head(), dispatch.New) {
		m.Pop()
		p.queue = []*frame{{message: m}}
		p.ctx = c
		return
	}
	p.toQueue(nil, false, m)
	p.ctx.Merge(c)
}

// handle is the main loop: update tags, dispatch on the current
// situation, act on the result. false breaks the walk as a failure;
// "ok"/"stop" finish it; nil and true carry on; any other result is
// spliced into the message for the next step.
func (p *Process) handle(m *dispatch.Message, c *dispatch.Context) dispatch.HandleResult {
	p.onHandleFn(m, c)
	p.steps = 0

	result := dispatch.NoHandle()
	for !p.Message().IsEmpty() || len(p.queue) > 1 {
		p.Update()
		result = p.Handle(p.Message(), p.ctx)
		p.steps++
		if p.observer != nil {
			p.observer(StepInfo{Seq: p.steps, Current: p.Current(), Head: p.Message().Head(), Result: result.Result})
		}

		r := result.Result
		if dispatch.Equal(r, dispatch.OK) || dispatch.Equal(r, dispatch.Stop) || r == false {
			break
		}
		if r == nil || r == true {
			continue
		}
		p.insertMessage(r)
	}
	return result
}

// situationTags classifies the current head and stack so only viable
// pairs dispatch. Recomputed once per step by Update.
func (p *Process) situationTags() dispatch.Tags {
	tags := dispatch.Tags{}
	msg := p.Message()
	if msg.IsEmpty() {
		tags.Add(TagEmptyMessage)
	} else {
		tags.Add(TagMessage)
		switch msg.Head().(type) {
		case string:
			tags.Add(dispatch.SpecString)
		case bool:
			tags.Add(dispatch.SpecBool)
		case map[string]any:
			tags.Add(dispatch.SpecDict)
		default:
			tags.Add(dispatch.SpecOther)
		}
	}
	if p.top().current != nil {
		tags.Add(TagCurrent)
	}
	return tags
}

func (p *Process) setupHandlers() {
	p.On([]any{dispatch.Stop, dispatch.OK}, dispatch.NullaryFunc(p.doFinish), dispatch.SpecString)
	p.On([]any{true, false}, dispatch.NullaryFunc(p.doFinish), dispatch.SpecBool)

	p.On(dispatch.Query, dispatch.NullaryFunc(func() any { return p.queryFn() }),
		dispatch.SpecString, TagCurrent)

	p.On(dispatch.NullaryFunc(p.canPushQueue), dispatch.NullaryFunc(p.doPushQueue),
		dispatch.SpecOther)
	p.On(dispatch.NullaryFunc(p.canPopQueue), dispatch.NullaryFunc(p.doPopQueue),
		TagEmptyMessage)
	p.On(dispatch.MessageFunc(func(m *dispatch.Message) any { return dispatch.IsEmpty(m.Head()) }),
		dispatch.NullaryFunc(p.doClearMessage), TagMessage)
}

// doQuery asks the current element which way to go. An empty answer
// means "nothing to add, keep walking".
func (p *Process) doQuery() any {
	p.Message().Pop()
	f := p.top()
	var result any
	if f.access != nil {
		result = f.access.Call(dispatch.NewMessage(p.Query), p.ctx)
	}
	if dispatch.IsEmpty(result) {
		return true
	}
	return result
}

func (p *Process) canPushQueue() any {
	return dispatch.IsCallable(p.Message().Head())
}

func (p *Process) doPushQueue() any {
	head := p.Message().Pop()
	p.toQueue(head, true, dispatch.NewMessage(dispatch.Query))
	return nil
}

func (p *Process) canPopQueue() any { return len(p.queue) > 1 }

func (p *Process) doPopQueue() any {
	p.queue = p.queue[:len(p.queue)-1]
	return nil
}

func (p *Process) doClearMessage() any {
	p.Message().Pop()
	return nil
}

func (p *Process) doFinish() any {
	return p.Message().Pop()
}
